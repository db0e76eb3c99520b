package savedsearch

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/dto"
)

type UseCase interface {
	Create(ctx context.Context, userID string, input *dto.CreateSavedSearchInput) (*model.SavedSearch, error)
	List(ctx context.Context, userID string) ([]model.SavedSearch, error)
	Delete(ctx context.Context, userID, id string) error
}
