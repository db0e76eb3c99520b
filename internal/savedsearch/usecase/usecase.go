package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/savedsearch"
	"github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type savedSearchUseCase struct {
	repo   savedsearch.Repository
	logger logger.ZapLogger
}

func NewSavedSearchUseCase(repo savedsearch.Repository, log logger.ZapLogger) savedsearch.UseCase {
	return &savedSearchUseCase{repo: repo, logger: log}
}

func (uc *savedSearchUseCase) Create(ctx context.Context, userID string, input *dto.CreateSavedSearchInput) (*model.SavedSearch, error) {
	if userID == "" {
		return nil, apperror.New(apperror.CodeUnauthorized, "authentication required")
	}

	errs := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) > dto.MaxNameLength {
		errs["name"] = fmt.Sprintf("Name must be at most %d characters", dto.MaxNameLength)
	}
	code := strings.TrimSpace(input.CategoryCode)
	if utf8.RuneCountInString(code) > dto.MaxCategoryCodeLength {
		errs["category_code"] = fmt.Sprintf("Category code must be at most %d characters", dto.MaxCategoryCodeLength)
	}
	criteria, ok := normalizeParams(input.QueryParams)
	if !ok {
		errs["query_params"] = "Query params must be an object"
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	s := &model.SavedSearch{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      optional(name),
		Criteria:  criteria,
		CreatedAt: time.Now(),
	}
	s.CategoryCode = optional(code)

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	uc.logger.Info("saved search created", zap.String("user_id", userID), zap.String("id", s.ID))
	return s, nil
}

func (uc *savedSearchUseCase) List(ctx context.Context, userID string) ([]model.SavedSearch, error) {
	if userID == "" {
		return nil, apperror.New(apperror.CodeUnauthorized, "authentication required")
	}
	searches, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return searches, nil
}

// Delete reports NOT_FOUND both for unknown ids and for searches owned by
// someone else.
func (uc *savedSearchUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperror.New(apperror.CodeUnauthorized, "authentication required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("Saved search not found")
	}

	deleted, err := uc.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete saved search %s: %w", id, err)
	}
	if !deleted {
		return apperror.NotFound("Saved search not found")
	}
	return nil
}

// normalizeParams treats a missing or null value as an empty object.
func normalizeParams(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}"), true
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
