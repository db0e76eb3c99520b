package usecase

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/validator"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventProductListed = "ProductListed"

const (
	codeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSuffixLen  = 6
	maxCodeRetries = 10
)

type ProductListedEvent struct {
	ProductID    string `json:"product_id"`
	ProductCode  string `json:"product_code"`
	CategoryID   string `json:"category_id"`
	CategoryCode string `json:"category_code"`
	SellerID     string `json:"seller_id"`
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if _, err := uuid.Parse(input.SellerID); err != nil {
		return nil, apperror.New(apperror.CodeForbidden, "a seller account is required to list products")
	}

	availability := model.Availability(strings.TrimSpace(input.Availability))
	if availability == "" {
		availability = model.InStock
	}
	if !availability.Valid() {
		return nil, apperror.New(apperror.CodeInvalidEnum,
			"Invalid availability. Must be one of %s, %s, %s", model.InStock, model.OutOfStock, model.LimitedStock)
	}

	errs := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs["name"] = "Name is required"
	}
	if input.Price != nil && input.Price.IsNegative() {
		errs["price"] = "Price must be at least 0"
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	cat, err := uc.nav.ResolveByCode(ctx, strings.TrimSpace(input.CategoryCode))
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

	specs, err := uc.specifications(ctx, cat, input.ExtraInfo)
	if err != nil {
		return nil, err
	}

	code, err := uc.uniqueCode(ctx, cat.Code)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Code:         code,
		Description:  strings.TrimSpace(input.Description),
		CategoryID:   cat.ID,
		SellerID:     input.SellerID,
		Tag:          strings.TrimSpace(input.Tag),
		Currency:     currency,
		Availability: availability,
		IsActive:     true,
		Specs:        specs,
		Category:     cat,
	}
	if input.Price != nil {
		p.Price.Decimal = *input.Price
		p.Price.Valid = true
	}
	if loc := input.Location; loc != nil && strings.TrimSpace(loc.State) != "" {
		p.Location = &model.Location{
			State:    strings.TrimSpace(loc.State),
			District: strings.TrimSpace(loc.District),
		}
	}
	for i, url := range input.ImageURLs {
		if url = strings.TrimSpace(url); url == "" {
			continue
		}
		p.Images = append(p.Images, model.ProductImage{ID: uuid.New().String(), ImageURL: url, SortOrder: i})
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	uc.logger.Info("product created",
		zap.String("code", p.Code),
		zap.String("category_code", cat.Code),
		zap.String("seller_id", p.SellerID),
	)

	uc.invalidateSearchCache(ctx)
	if uc.index != nil {
		uc.indexPending.Add(1)
		go uc.syncToIndex(context.Background(), p)
	}
	go uc.publishListed(context.Background(), p, cat.Code)

	return p, nil
}

// specifications derives spec rows from extra_info. When the category has an
// active schema the submission is validated and cleaned values replace the raw
// ones; keys outside the schema are kept as submitted.
func (uc *productUseCase) specifications(ctx context.Context, cat *model.Category, extra map[string]interface{}) ([]model.ProductSpec, error) {
	values := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		values[k] = v
	}

	schema, err := uc.schemas.FindByCategoryID(ctx, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("find schema of %s: %w", cat.Code, err)
	}
	if schema != nil && schema.IsActive {
		cleaned, err := validator.Validate(schema.Fields, extra)
		if err != nil {
			return nil, err
		}
		for k, v := range cleaned {
			values[k] = v
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	specs := make([]model.ProductSpec, 0, len(keys))
	for _, k := range keys {
		s, ok := specValue(values[k])
		if !ok {
			continue
		}
		specs = append(specs, model.ProductSpec{ID: uuid.New().String(), Key: k, Value: s})
	}
	return specs, nil
}

// specValue renders a submitted value for storage; nil and "" are dropped.
func specValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(data), true
}

func (uc *productUseCase) uniqueCode(ctx context.Context, categoryCode string) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code, err := newProductCode(categoryCode)
		if err != nil {
			return "", err
		}
		exists, err := uc.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check product code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free product code for %s after %d attempts", categoryCode, maxCodeRetries)
}

// newProductCode returns <CATEGORY>-PROD-XXXXXX with an upper-case
// alphanumeric suffix.
func newProductCode(categoryCode string) (string, error) {
	suffix := make([]byte, codeSuffixLen)
	base := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return categoryCode + "-PROD-" + string(suffix), nil
}

// syncToIndex writes p to the text index. A failure takes the index out of
// service until the next full sync.
func (uc *productUseCase) syncToIndex(ctx context.Context, p *model.Product) {
	defer uc.indexPending.Add(-1)
	if err := uc.index.IndexProduct(ctx, p); err != nil {
		uc.indexFailures.Add(1)
		uc.indexSynced.Store(false)
		uc.logger.Error("failed to index product, text search falls back to DB until the next sync",
			zap.String("code", p.Code), zap.Error(err))
	}
}

func (uc *productUseCase) publishListed(ctx context.Context, p *model.Product, categoryCode string) {
	if uc.events == nil {
		return
	}
	event := ProductListedEvent{
		ProductID:    p.ID,
		ProductCode:  p.Code,
		CategoryID:   p.CategoryID,
		CategoryCode: categoryCode,
		SellerID:     p.SellerID,
	}
	if err := uc.events.Publish(ctx, p.CategoryID, uuid.New().String(), EventProductListed, event); err != nil {
		uc.logger.Error("failed to publish product event", zap.String("code", p.Code), zap.Error(err))
	}
}
