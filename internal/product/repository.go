package product

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
)

type Repository interface {
	// Create writes the product, its location, specifications and images in
	// one transaction.
	Create(ctx context.Context, p *model.Product) error
	// FindByCode returns (nil, nil) for unknown or inactive products.
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Search(ctx context.Context, f *dto.SearchFilters) ([]model.ProductSummary, int, error)
	// ListForIndex pages through active products ordered by id, starting
	// after afterID.
	ListForIndex(ctx context.Context, afterID string, limit int) ([]model.Product, error)
}

// TextIndex is the optional free-text index over product names and
// descriptions.
type TextIndex interface {
	// IndexProduct returns once p is searchable.
	IndexProduct(ctx context.Context, p *model.Product) error
	IndexProducts(ctx context.Context, products []model.Product) error
	// MatchIDs returns the IDs of products whose name or description contains
	// term, case-insensitively. complete is false when the match set was
	// truncated.
	MatchIDs(ctx context.Context, term string) (ids []string, complete bool, err error)
}
