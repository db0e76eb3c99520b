package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"go.uber.org/zap"
)

const (
	searchCachePrefix = "products:search:"
	defaultCacheTTL   = 5 * time.Minute
	indexBatchSize    = 500
)

type productUseCase struct {
	repo     product.Repository
	nav      category.Navigator
	schemas  formschema.Repository
	cache    product.SearchCache
	cacheTTL time.Duration
	index    product.TextIndex
	events   product.EventPublisher

	// The text index answers searches only after a full sync, with no
	// single-product write in flight or failed since that sync started.
	indexSynced   atomic.Bool
	indexPending  atomic.Int64
	indexFailures atomic.Int64

	views    product.ViewTracker
	logger   logger.ZapLogger
}

type Option func(*productUseCase)

func WithCache(c product.SearchCache, ttl time.Duration) Option {
	return func(uc *productUseCase) {
		uc.cache = c
		if ttl > 0 {
			uc.cacheTTL = ttl
		}
	}
}

func WithTextIndex(idx product.TextIndex) Option {
	return func(uc *productUseCase) { uc.index = idx }
}

func WithEvents(p product.EventPublisher) Option {
	return func(uc *productUseCase) { uc.events = p }
}

func WithViewTracker(t product.ViewTracker) Option {
	return func(uc *productUseCase) { uc.views = t }
}

func NewProductUseCase(repo product.Repository, nav category.Navigator, schemas formschema.Repository, log logger.ZapLogger, opts ...Option) product.UseCase {
	uc := &productUseCase{
		repo:     repo,
		nav:      nav,
		schemas:  schemas,
		cacheTTL: defaultCacheTTL,
		logger:   log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *productUseCase) Search(ctx context.Context, criteria *dto.SearchCriteria) (*dto.SearchResult, error) {
	filters := &dto.SearchFilters{SearchCriteria: *criteria}

	var crumbs []model.Breadcrumb
	if criteria.CategoryCode != "" {
		cat, err := uc.nav.ResolveByCode(ctx, criteria.CategoryCode)
		if err != nil {
			if apperror.IsCode(err, apperror.CodeNotFound) {
				return nil, apperror.New(apperror.CodeInvalidCategory, "Invalid category code")
			}
			return nil, err
		}
		if filters.CategoryIDs, err = uc.scope(ctx, cat); err != nil {
			return nil, err
		}
		if crumbs, err = uc.nav.Breadcrumb(ctx, cat); err != nil {
			return nil, err
		}
		uc.trackView(ctx, cat.ID)
	}

	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		var cached dto.SearchResult
		hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			uc.logger.Warn("search cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	if criteria.Search != "" && uc.textIndexUsable() {
		ids, complete, err := uc.index.MatchIDs(ctx, criteria.Search)
		switch {
		case err != nil:
			uc.logger.Error("text index search failed, falling back to DB", zap.Error(err))
		case !complete:
			uc.logger.Debug("text index match truncated, falling back to DB", zap.String("search", criteria.Search))
		default:
			filters.MatchedIDs = ids
			filters.TextMatched = true
		}
	}

	products, count, err := uc.repo.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if products == nil {
		products = []model.ProductSummary{}
	}

	result := &dto.SearchResult{
		Products:    products,
		TotalCount:  strconv.Itoa(count),
		Breadcrumbs: crumbs,
	}

	if cacheKey != "" && uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, cacheKey, result, uc.cacheTTL); err != nil {
			uc.logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// scope is the set of categories whose products a search covers: the node
// itself when it is a leaf, otherwise its leaf descendants. A non-leaf with no
// leaf descendants falls back to the node itself.
func (uc *productUseCase) scope(ctx context.Context, cat *model.Category) ([]string, error) {
	leaf, err := uc.nav.IsLeaf(ctx, cat)
	if err != nil {
		return nil, err
	}
	if leaf {
		return []string{cat.ID}, nil
	}

	leaves, err := uc.nav.LeafDescendants(ctx, cat)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		uc.logger.Warn("non-leaf category has no leaf descendants", zap.String("category_code", cat.Code))
		return []string{cat.ID}, nil
	}
	ids := make([]string, len(leaves))
	for i, l := range leaves {
		ids[i] = l.ID
	}
	return ids, nil
}

func (uc *productUseCase) CategoryProducts(ctx context.Context, categoryCode string, limit, offset int) (*dto.SearchResult, error) {
	if categoryCode == "" {
		return nil, apperror.New(apperror.CodeInvalidCategory, "Invalid category code")
	}
	if limit < 1 || limit > dto.MaxLimit {
		return nil, apperror.New(apperror.CodeInvalidLimit, "Invalid limit. Must be between 1 and %d", dto.MaxLimit)
	}
	if offset < 0 {
		return nil, apperror.New(apperror.CodeInvalidOffset, "Invalid offset. Must be >= 0")
	}
	return uc.Search(ctx, &dto.SearchCriteria{
		CategoryCode: categoryCode,
		Limit:        limit,
		Offset:       offset,
		Sort:         dto.SortNewestFirst,
	})
}

func (uc *productUseCase) GetProductDetails(ctx context.Context, code string) (*dto.ProductDetails, error) {
	p, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", code, err)
	}
	if p == nil {
		return nil, apperror.NotFound("Product not found")
	}

	var crumbs []model.Breadcrumb
	if p.Category != nil {
		crumbs = []model.Breadcrumb{p.Category.Breadcrumb()}
		if cat, err := uc.nav.ResolveByCode(ctx, p.Category.Code); err == nil {
			if crumbs, err = uc.nav.Breadcrumb(ctx, cat); err != nil {
				return nil, err
			}
		} else if !apperror.IsCode(err, apperror.CodeNotFound) {
			return nil, err
		}
	}

	uc.trackView(ctx, p.CategoryID)
	return dto.NewProductDetails(p, crumbs), nil
}

// trackView records the caller's category view. Tracking never fails the
// request it rides on.
func (uc *productUseCase) trackView(ctx context.Context, categoryID string) {
	userID := auth.GetUserID(ctx)
	if uc.views == nil || userID == "" {
		return
	}
	if err := uc.views.TrackCategoryView(ctx, userID, categoryID); err != nil {
		uc.logger.Warn("failed to track category view",
			zap.String("user_id", userID),
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.SearchFilters) (string, error) {
	data, err := json.Marshal(struct {
		*dto.SearchCriteria
		CategoryIDs []string `json:"category_ids"`
	}{&filters.SearchCriteria, filters.CategoryIDs})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", searchCachePrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateSearchCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	n, err := uc.cache.DeletePrefix(ctx, searchCachePrefix)
	if err != nil {
		uc.logger.Warn("failed to invalidate search cache", zap.Error(err))
		return
	}
	uc.logger.Debug("search cache invalidated", zap.Int("keys", n))
}

func (uc *productUseCase) textIndexUsable() bool {
	return uc.index != nil && uc.indexSynced.Load() && uc.indexPending.Load() == 0
}

func (uc *productUseCase) SyncTextIndex(ctx context.Context) error {
	if uc.index == nil {
		return nil
	}
	failures := uc.indexFailures.Load()

	total := 0
	after := ""
	for {
		batch, err := uc.repo.ListForIndex(ctx, after, indexBatchSize)
		if err != nil {
			return fmt.Errorf("list products for index: %w", err)
		}
		if err := uc.index.IndexProducts(ctx, batch); err != nil {
			return fmt.Errorf("index products: %w", err)
		}
		total += len(batch)
		if len(batch) < indexBatchSize {
			break
		}
		after = batch[len(batch)-1].ID
	}

	if uc.indexFailures.Load() != failures {
		return errors.New("a product failed to index during the sync")
	}
	uc.indexSynced.Store(true)
	uc.logger.Info("product text index synced", zap.Int("products", total))
	return nil
}
