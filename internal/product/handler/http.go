package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

// POST /api/marketplace/product_listings/search
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	raw := map[string]interface{}{}
	if r.ContentLength != 0 {
		if err := response.DecodeJSON(r, &raw); err != nil {
			response.Error(w, r, h.logger, err)
			return
		}
	}

	criteria, err := dto.ParseSearchCriteria(raw)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	result, err := h.uc.Search(r.Context(), criteria)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, result)
}

// GET /api/marketplace/category_products?category_code=&limit=&offset=
func (h *ProductHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), dto.DefaultLimit)
	if err != nil {
		response.Error(w, r, h.logger, apperror.New(apperror.CodeInvalidLimit, "Invalid limit"))
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		response.Error(w, r, h.logger, apperror.New(apperror.CodeInvalidOffset, "Invalid offset"))
		return
	}

	result, err := h.uc.CategoryProducts(r.Context(), q.Get("category_code"), limit, offset)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, result)
}

// GET /api/marketplace/products/{code}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.uc.GetProductDetails(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, details)
}

// POST /api/seller-portal/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	input.SellerID = auth.GetUser(r.Context()).SellerID

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Created(w, map[string]interface{}{
		"product_code": p.Code,
		"product":      dto.NewProductDetails(p, nil),
	})
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
