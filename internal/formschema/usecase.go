package formschema

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type UseCase interface {
	// GetSchema fails with NOT_FOUND, NOT_LEAF_CATEGORY or SCHEMA_NOT_CONFIGURED.
	GetSchema(ctx context.Context, categoryCode string) (*dto.SchemaResponse, error)
	ReplaceSchema(ctx context.Context, categoryCode string, fields []model.FieldDefinition) (*dto.SchemaResponse, error)
	ListCategoriesWithForms(ctx context.Context) ([]dto.CategoryWithForm, error)
	ValidateSubmission(ctx context.Context, categoryCode string, payload map[string]interface{}) (map[string]interface{}, error)
}
