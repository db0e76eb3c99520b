package handler

import (
	"context"
	"net/http"

	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: log}
}

// GET /api/marketplace/categories
func (h *CategoryHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.uc.ListRoots(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"categories": dto.NewCategoryResponses(roots)})
}

// GET /api/marketplace/categories/{code}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	body, err := categoryDetail(r.Context(), h.uc, chi.URLParam(r, "code"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, body)
}

// GET /api/marketplace/categories/{code}/children
func (h *CategoryHandler) Children(w http.ResponseWriter, r *http.Request) {
	body, err := childrenOf(r.Context(), h.uc, chi.URLParam(r, "code"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, body)
}

// POST /api/admin/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Created(w, map[string]interface{}{"category": dto.NewCategoryResponse(cat)})
}

// PUT /api/admin/categories/{code}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateCategoryInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	input.Code = chi.URLParam(r, "code")

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"category": dto.NewCategoryResponse(cat)})
}

// DELETE /api/admin/categories/{code}
func (h *CategoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeactivateCategory(r.Context(), chi.URLParam(r, "code")); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryDetailResponse struct {
	Category   dto.CategoryResponse `json:"category"`
	Breadcrumb []model.Breadcrumb   `json:"breadcrumb"`
}

func categoryDetail(ctx context.Context, uc category.Navigator, code string) (*categoryDetailResponse, error) {
	cat, err := uc.ResolveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	leaf, err := uc.IsLeaf(ctx, cat)
	if err != nil {
		return nil, err
	}
	crumbs, err := uc.Breadcrumb(ctx, cat)
	if err != nil {
		return nil, err
	}

	resp := dto.NewCategoryResponse(cat)
	resp.IsLeaf = &leaf
	return &categoryDetailResponse{Category: resp, Breadcrumb: crumbs}, nil
}

func childrenOf(ctx context.Context, uc category.Navigator, code string) (*dto.ChildrenResponse, error) {
	cat, err := uc.ResolveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	children, err := uc.ListChildren(ctx, cat)
	if err != nil {
		return nil, err
	}
	crumbs, err := uc.Breadcrumb(ctx, cat)
	if err != nil {
		return nil, err
	}

	out := &dto.ChildrenResponse{
		Category:   dto.NewCategoryResponse(cat),
		Children:   make([]dto.CategoryResponse, 0, len(children)),
		Breadcrumb: crumbs,
	}
	for i := range children {
		leaf, err := uc.IsLeaf(ctx, &children[i])
		if err != nil {
			return nil, err
		}
		resp := dto.NewCategoryResponse(&children[i])
		resp.IsLeaf = &leaf
		out.Children = append(out.Children, resp)
	}
	return out, nil
}
