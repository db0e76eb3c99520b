package category

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// Repository lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByCode(ctx context.Context, code string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	// FindActiveChildren returns the active children of every given parent,
	// ordered by sort order then name.
	FindActiveChildren(ctx context.Context, parentIDs []string) ([]model.Category, error)
	// FindChildren returns every child of the given parents, active or not.
	FindChildren(ctx context.Context, parentIDs []string) ([]model.Category, error)
	HasActiveChildren(ctx context.Context, id string) (bool, error)
	// SubtreeHeight is the longest parent->child chain below id, 0 for a node
	// without children.
	SubtreeHeight(ctx context.Context, id string) (int, error)
	// Update writes c. When levelsChanged is set the levels of the whole
	// subtree are recomputed from c.Level in the same transaction.
	Update(ctx context.Context, c *model.Category, levelsChanged bool) error
	Deactivate(ctx context.Context, id string) error
}
