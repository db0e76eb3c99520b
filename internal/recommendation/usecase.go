package recommendation

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation/dto"
)

type UseCase interface {
	TrackCategoryView(ctx context.Context, userID, categoryID string) error
	RecommendedProducts(ctx context.Context, userID string, perCategory int) ([]dto.CategoryRecommendation, error)
}
