package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/fekuna/omnipos-marketplace-service/internal/savedsearch"
	"github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/dto"
	"github.com/go-chi/chi/v5"
)

type SavedSearchHandler struct {
	uc     savedsearch.UseCase
	logger logger.ZapLogger
}

func NewSavedSearchHandler(uc savedsearch.UseCase, log logger.ZapLogger) *SavedSearchHandler {
	return &SavedSearchHandler{uc: uc, logger: log}
}

// GET /api/marketplace/saved_searches
func (h *SavedSearchHandler) List(w http.ResponseWriter, r *http.Request) {
	searches, err := h.uc.List(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{"saved_searches": searches})
}

// POST /api/marketplace/saved_searches
func (h *SavedSearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateSavedSearchInput
	if err := response.DecodeJSON(r, &input); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	s, err := h.uc.Create(r.Context(), auth.GetUserID(r.Context()), &input)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Created(w, s)
}

// DELETE /api/marketplace/saved_searches/{id}
func (h *SavedSearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), auth.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
