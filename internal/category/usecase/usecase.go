package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxDepth = 5

type categoryUseCase struct {
	repo     category.Repository
	maxDepth int
	logger   logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, maxDepth int, log logger.ZapLogger) category.UseCase {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &categoryUseCase{
		repo:     repo,
		maxDepth: maxDepth,
		logger:   log,
	}
}

func (uc *categoryUseCase) ListRoots(ctx context.Context) ([]model.Category, error) {
	root := ""
	active := true
	cats, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{ParentID: &root, IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("list roots: %w", err)
	}
	return cats, nil
}

func (uc *categoryUseCase) ListCategoryDetails(ctx context.Context, limit, offset int) ([]model.Category, error) {
	if limit < 1 || limit > 100 {
		return nil, apperror.New(apperror.CodeInvalidLimit, "Invalid limit. Must be between 1 and 100")
	}
	if offset < 0 {
		return nil, apperror.New(apperror.CodeInvalidOffset, "Invalid offset. Must be >= 0")
	}

	active := true
	cats, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{
		IsActive: &active,
		OrderBy:  "tree",
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list category details: %w", err)
	}
	return cats, nil
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, apperror.Validation(map[string]string{"category_code": "Category code is required"})
	}
	if name == "" {
		name = code
	}

	existing, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", code, err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.CodeConflict, "category %s already exists", code)
	}

	var parentID *string
	level := 0
	if parentCode := strings.TrimSpace(input.ParentCode); parentCode != "" {
		parent, err := uc.ResolveByCode(ctx, parentCode)
		if err != nil {
			return nil, err
		}
		if parent.Level+1 >= uc.maxDepth {
			return nil, uc.depthExceeded(code)
		}
		parentID = &parent.ID
		level = parent.Level + 1
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        name,
		Code:        code,
		ParentID:    parentID,
		Level:       level,
		SortOrder:   input.SortOrder,
		IsActive:    true,
		ImageURL:    input.ImageURL,
		Description: input.Description,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category %s: %w", code, err)
	}

	uc.logger.Info("category created", zap.String("code", code), zap.Int("level", level))
	return cat, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByCode(ctx, input.Code)
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", input.Code, err)
	}
	if cat == nil {
		return nil, apperror.NotFound("category %s not found", input.Code)
	}

	if input.Name != nil {
		cat.Name = strings.TrimSpace(*input.Name)
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	if input.ImageURL != nil {
		cat.ImageURL = input.ImageURL
	}
	if input.Description != nil {
		cat.Description = input.Description
	}

	levelsChanged := false
	if input.ParentCode != nil {
		levelsChanged, err = uc.reparent(ctx, cat, strings.TrimSpace(*input.ParentCode))
		if err != nil {
			return nil, err
		}
	}

	cat.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, cat, levelsChanged); err != nil {
		return nil, fmt.Errorf("update category %s: %w", cat.Code, err)
	}

	if levelsChanged {
		uc.logger.Info("category moved",
			zap.String("code", cat.Code),
			zap.Int("level", cat.Level),
		)
	}
	return cat, nil
}

// reparent points cat at parentCode ("" = root) and reports whether levels of
// the subtree must be recomputed.
func (uc *categoryUseCase) reparent(ctx context.Context, cat *model.Category, parentCode string) (bool, error) {
	var newParent *model.Category
	if parentCode != "" {
		p, err := uc.ResolveByCode(ctx, parentCode)
		if err != nil {
			return false, err
		}
		newParent = p
	}

	switch {
	case newParent == nil && cat.ParentID == nil:
		return false, nil
	case newParent != nil && cat.ParentID != nil && *cat.ParentID == newParent.ID:
		return false, nil
	}

	newLevel := 0
	if newParent != nil {
		if newParent.ID == cat.ID {
			return false, apperror.InvalidArgument("category %s cannot be its own parent", cat.Code)
		}
		ancestors, err := uc.GetAncestors(ctx, newParent)
		if err != nil {
			return false, err
		}
		for _, a := range ancestors {
			if a.ID == cat.ID {
				return false, apperror.InvalidArgument("moving %s under %s would create a cycle", cat.Code, newParent.Code)
			}
		}
		newLevel = newParent.Level + 1
	}

	height, err := uc.repo.SubtreeHeight(ctx, cat.ID)
	if err != nil {
		return false, fmt.Errorf("subtree height of %s: %w", cat.Code, err)
	}
	if newLevel+height >= uc.maxDepth {
		return false, uc.depthExceeded(cat.Code)
	}

	if newParent != nil {
		cat.ParentID = &newParent.ID
		cat.ParentCode = &newParent.Code
		cat.ParentName = &newParent.Name
	} else {
		cat.ParentID = nil
		cat.ParentCode = nil
		cat.ParentName = nil
	}
	cat.Level = newLevel
	return true, nil
}

func (uc *categoryUseCase) DeactivateCategory(ctx context.Context, code string) error {
	cat, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("find category %s: %w", code, err)
	}
	if cat == nil {
		return apperror.NotFound("category %s not found", code)
	}
	if !cat.IsActive {
		return nil
	}
	if err := uc.repo.Deactivate(ctx, cat.ID); err != nil {
		return fmt.Errorf("deactivate category %s: %w", code, err)
	}
	uc.logger.Info("category deactivated", zap.String("code", code))
	return nil
}

func (uc *categoryUseCase) depthExceeded(code string) error {
	return apperror.New(apperror.CodeMaxDepthExceeded,
		"category %s would exceed the maximum depth of %d levels", code, uc.maxDepth)
}
