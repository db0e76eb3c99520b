package product

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
)

type UseCase interface {
	// Search fails fast on the first invalid parameter; an unknown category
	// code is INVALID_CATEGORY_CODE.
	Search(ctx context.Context, criteria *dto.SearchCriteria) (*dto.SearchResult, error)
	// CategoryProducts lists a category's products newest first.
	CategoryProducts(ctx context.Context, categoryCode string, limit, offset int) (*dto.SearchResult, error)
	GetProductDetails(ctx context.Context, code string) (*dto.ProductDetails, error)
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	// SyncTextIndex copies every active product into the text index. Free-text
	// searches use the database filter until a sync has completed.
	SyncTextIndex(ctx context.Context) error
}

// SearchCache stores serialised search pages.
type SearchCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key, eventID, eventType string, payload interface{}) error
}

// ViewTracker records that a user looked at a category.
type ViewTracker interface {
	TrackCategoryView(ctx context.Context, userID, categoryID string) error
}
