package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/middleware"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	criteria *dto.SearchCriteria
	code     string
	limit    int
	offset   int
	input    *dto.CreateProductInput
}

func (s *stubUseCase) Search(_ context.Context, c *dto.SearchCriteria) (*dto.SearchResult, error) {
	s.criteria = c
	res := &dto.SearchResult{Products: []model.ProductSummary{}, TotalCount: "0"}
	if c.CategoryCode != "" {
		res.Breadcrumbs = []model.Breadcrumb{{Name: c.CategoryCode, Code: c.CategoryCode}}
	}
	return res, nil
}

func (s *stubUseCase) CategoryProducts(_ context.Context, code string, limit, offset int) (*dto.SearchResult, error) {
	s.code, s.limit, s.offset = code, limit, offset
	return &dto.SearchResult{Products: []model.ProductSummary{}, TotalCount: "0"}, nil
}

func (s *stubUseCase) GetProductDetails(_ context.Context, code string) (*dto.ProductDetails, error) {
	if code != "CNC-PROD-AAAAAA" {
		return nil, apperror.NotFound("Product not found")
	}
	return dto.NewProductDetails(&model.Product{Code: code, Specs: []model.ProductSpec{{Key: "year", Value: "2019"}}}, nil), nil
}

func (s *stubUseCase) CreateProduct(_ context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	s.input = in
	return &model.Product{Code: in.CategoryCode + "-PROD-ABC123", Name: in.Name}, nil
}

func (s *stubUseCase) SyncTextIndex(context.Context) error { return nil }

func router(h *ProductHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Identity)
	r.Post("/search", h.Search)
	r.Get("/category_products", h.CategoryProducts)
	r.Get("/products/{code}", h.Get)
	r.Post("/seller/products", h.Create)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return httptest.NewRequest(method, path, &buf)
}

func TestSearchBreadcrumbKey(t *testing.T) {
	uc := &stubUseCase{}
	r := router(NewProductHandler(uc, logger.NewNop()))

	w, body := do(t, r, jsonRequest(t, http.MethodPost, "/search", map[string]interface{}{"category_code": "CNC", "limit": 5}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "breadcrumbs")
	assert.Equal(t, "0", body["total_count"])
	assert.Equal(t, 5, uc.criteria.Limit)

	w, body = do(t, r, httptest.NewRequest(http.MethodPost, "/search", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, body, "breadcrumbs")
	assert.Equal(t, []interface{}{}, body["products_details"])
}

func TestSearchRejectsInvalidCriteria(t *testing.T) {
	r := router(NewProductHandler(&stubUseCase{}, logger.NewNop()))

	w, body := do(t, r, jsonRequest(t, http.MethodPost, "/search", map[string]interface{}{"limit": 500}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_LIMIT", body["res_status"])

	w, body = do(t, r, jsonRequest(t, http.MethodPost, "/search", map[string]interface{}{"min_price": 10, "max_price": 5}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RANGE", body["res_status"])
}

func TestCategoryProductsQuery(t *testing.T) {
	uc := &stubUseCase{}
	r := router(NewProductHandler(uc, logger.NewNop()))

	w, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/category_products?category_code=CNC&limit=20&offset=40", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CNC", uc.code)
	assert.Equal(t, 20, uc.limit)
	assert.Equal(t, 40, uc.offset)

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/category_products?category_code=CNC&offset=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OFFSET", body["res_status"])
}

func TestGetProduct(t *testing.T) {
	r := router(NewProductHandler(&stubUseCase{}, logger.NewNop()))

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/products/CNC-PROD-AAAAAA", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"year": "2019"}, body["product_specifications"])

	w, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/products/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTakesSellerFromIdentity(t *testing.T) {
	uc := &stubUseCase{}
	r := router(NewProductHandler(uc, logger.NewNop()))

	req := jsonRequest(t, http.MethodPost, "/seller/products", map[string]interface{}{
		"category_code": "CNC",
		"name":          "Lathe",
		"price":         "1200.00",
		"extra_info":    map[string]interface{}{"year": 2019},
	})
	req.Header.Set(auth.HeaderUserID, "u1")
	req.Header.Set(auth.HeaderSellerID, "s1")
	req.Header.Set(auth.HeaderRole, "seller")

	w, body := do(t, r, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CNC-PROD-ABC123", body["product_code"])
	assert.Equal(t, "s1", uc.input.SellerID)
	assert.Equal(t, "1200", uc.input.Price.String())
	assert.Equal(t, json.Number("2019"), uc.input.ExtraInfo["year"])
}
