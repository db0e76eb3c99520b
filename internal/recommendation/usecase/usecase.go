package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	productDTO "github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recommendationUseCase struct {
	repo     recommendation.Repository
	products product.Repository
	logger   logger.ZapLogger
}

func NewRecommendationUseCase(repo recommendation.Repository, products product.Repository, log logger.ZapLogger) recommendation.UseCase {
	return &recommendationUseCase{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

func (uc *recommendationUseCase) TrackCategoryView(ctx context.Context, userID, categoryID string) error {
	view := &model.CategoryView{
		ID:         uuid.New().String(),
		UserID:     userID,
		CategoryID: categoryID,
		ViewedAt:   time.Now(),
	}
	if err := uc.repo.RecordView(ctx, view, dto.MaxTrackedCategories); err != nil {
		return fmt.Errorf("record view of %s by %s: %w", categoryID, userID, err)
	}
	uc.logger.Debug("category view tracked", zap.String("user_id", userID), zap.String("category_id", categoryID))
	return nil
}

// RecommendedProducts returns the newest products of each recently viewed
// category. Categories without products are left out.
func (uc *recommendationUseCase) RecommendedProducts(ctx context.Context, userID string, perCategory int) ([]dto.CategoryRecommendation, error) {
	out := []dto.CategoryRecommendation{}
	if userID == "" {
		return out, nil
	}

	categories, err := uc.repo.RecentCategories(ctx, userID, dto.MaxTrackedCategories)
	if err != nil {
		return nil, fmt.Errorf("recent categories of %s: %w", userID, err)
	}

	for _, c := range categories {
		products, _, err := uc.products.Search(ctx, &productDTO.SearchFilters{
			SearchCriteria: productDTO.SearchCriteria{Limit: perCategory, Sort: productDTO.SortNewestFirst},
			CategoryIDs:    []string{c.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("products of %s: %w", c.Code, err)
		}
		if len(products) == 0 {
			continue
		}
		out = append(out, dto.CategoryRecommendation{
			CategoryName:     c.Name,
			CategoryCode:     c.Code,
			CategoryImageURL: c.ImageURL,
			Products:         products,
		})
	}
	return out, nil
}
