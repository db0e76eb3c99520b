package formschema

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type Repository interface {
	// FindByCategoryID returns (nil, nil) when the category has no schema row.
	FindByCategoryID(ctx context.Context, categoryID string) (*model.FormSchema, error)
	// Upsert replaces the whole field list of the category's schema.
	Upsert(ctx context.Context, schema *model.FormSchema) error
	// ListCategoriesWithForms returns active categories with an active schema.
	ListCategoriesWithForms(ctx context.Context) ([]model.Category, error)
}
