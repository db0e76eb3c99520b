package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/validator"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type formSchemaUseCase struct {
	repo   formschema.Repository
	nav    category.Navigator
	logger logger.ZapLogger
}

func NewFormSchemaUseCase(repo formschema.Repository, nav category.Navigator, log logger.ZapLogger) formschema.UseCase {
	return &formSchemaUseCase{
		repo:   repo,
		nav:    nav,
		logger: log,
	}
}

func (uc *formSchemaUseCase) GetSchema(ctx context.Context, categoryCode string) (*dto.SchemaResponse, error) {
	cat, err := uc.nav.ResolveByCode(ctx, categoryCode)
	if err != nil {
		return nil, err
	}

	leaf, err := uc.nav.IsLeaf(ctx, cat)
	if err != nil {
		return nil, err
	}
	if !leaf {
		return nil, apperror.NotLeafCategory(cat.Code)
	}

	schema, err := uc.repo.FindByCategoryID(ctx, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("find schema of %s: %w", cat.Code, err)
	}
	if schema == nil || !schema.IsActive {
		return nil, apperror.SchemaNotConfigured(cat.Code)
	}
	return dto.NewSchemaResponse(cat, schema), nil
}

func (uc *formSchemaUseCase) ReplaceSchema(ctx context.Context, categoryCode string, fields []model.FieldDefinition) (*dto.SchemaResponse, error) {
	cat, err := uc.nav.ResolveByCode(ctx, categoryCode)
	if err != nil {
		return nil, err
	}

	normalized, err := NormalizeFields(fields)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	schema := &model.FormSchema{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID: cat.ID,
		IsActive:   true,
		Fields:     normalized,
	}
	if err := uc.repo.Upsert(ctx, schema); err != nil {
		return nil, fmt.Errorf("replace schema of %s: %w", cat.Code, err)
	}

	uc.logger.Info("form schema replaced",
		zap.String("category_code", cat.Code),
		zap.Int("fields", len(normalized)),
	)
	return dto.NewSchemaResponse(cat, schema), nil
}

// NormalizeFields checks names and types and stable-sorts by order, so ties
// keep their submitted position.
func NormalizeFields(fields []model.FieldDefinition) (model.FieldList, error) {
	errs := map[string]string{}
	seen := make(map[string]struct{}, len(fields))
	out := make(model.FieldList, 0, len(fields))

	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		key := fmt.Sprintf("fields[%d]", i)
		switch {
		case f.Name == "":
			errs[key] = "field name is required"
			continue
		case !f.Type.Valid():
			errs[key] = fmt.Sprintf("unknown field type %q", f.Type)
			continue
		}
		if _, dup := seen[f.Name]; dup {
			errs[key] = fmt.Sprintf("duplicate field name %q", f.Name)
			continue
		}
		seen[f.Name] = struct{}{}
		if f.Label == "" {
			f.Label = f.Name
		}
		out = append(out, f)
	}

	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (uc *formSchemaUseCase) ListCategoriesWithForms(ctx context.Context) ([]dto.CategoryWithForm, error) {
	cats, err := uc.repo.ListCategoriesWithForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories with forms: %w", err)
	}
	out := make([]dto.CategoryWithForm, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryWithForm{
			Code:        c.Code,
			Name:        c.Name,
			Description: c.Description,
			ImageURL:    c.ImageURL,
			HasForm:     true,
		})
	}
	return out, nil
}

func (uc *formSchemaUseCase) ValidateSubmission(ctx context.Context, categoryCode string, payload map[string]interface{}) (map[string]interface{}, error) {
	schema, err := uc.GetSchema(ctx, categoryCode)
	if err != nil {
		return nil, err
	}
	return validator.Validate(schema.Fields, payload)
}
