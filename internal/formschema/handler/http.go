package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/go-chi/chi/v5"
)

type FormSchemaHandler struct {
	uc     formschema.UseCase
	logger logger.ZapLogger
}

func NewFormSchemaHandler(uc formschema.UseCase, log logger.ZapLogger) *FormSchemaHandler {
	return &FormSchemaHandler{uc: uc, logger: log}
}

// GET /api/seller-portal/categories/with-forms
func (h *FormSchemaHandler) ListWithForms(w http.ResponseWriter, r *http.Request) {
	cats, err := h.uc.ListCategoriesWithForms(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"categories": cats})
}

// GET /api/seller-portal/form/{code}
func (h *FormSchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	schema, err := h.uc.GetSchema(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"form_schema": schema})
}

// POST /api/seller-portal/form/{code}/validate
func (h *FormSchemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var input dto.ValidateInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	cleaned, err := h.uc.ValidateSubmission(r.Context(), chi.URLParam(r, "code"), input.Data)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"valid": true, "data": cleaned})
}

// PUT /api/admin/categories/{code}/schema
func (h *FormSchemaHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var input dto.ReplaceSchemaInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	schema, err := h.uc.ReplaceSchema(r.Context(), chi.URLParam(r, "code"), input.Fields)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"form_schema": schema})
}
