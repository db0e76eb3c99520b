package category

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// Navigator is the read-only view of the category tree used by the schema
// registry and the listing search.
type Navigator interface {
	// ResolveByCode fails with NOT_FOUND for unknown or inactive codes.
	ResolveByCode(ctx context.Context, code string) (*model.Category, error)
	GetAncestors(ctx context.Context, node *model.Category) ([]model.Category, error)
	GetDescendants(ctx context.Context, node *model.Category) ([]model.Category, error)
	GetAllDescendantIDs(ctx context.Context, node *model.Category) (map[string]struct{}, error)
	IsLeaf(ctx context.Context, node *model.Category) (bool, error)
	ListChildren(ctx context.Context, node *model.Category) ([]model.Category, error)
	LeafDescendants(ctx context.Context, node *model.Category) ([]model.Category, error)
	Breadcrumb(ctx context.Context, node *model.Category) ([]model.Breadcrumb, error)
	MaxDepth() int
}

type UseCase interface {
	Navigator

	ListRoots(ctx context.Context) ([]model.Category, error)
	ListCategoryDetails(ctx context.Context, limit, offset int) ([]model.Category, error)

	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeactivateCategory(ctx context.Context, code string) error
}
