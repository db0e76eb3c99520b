package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	categoryDTO "github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation/dto"
	"go.uber.org/zap"
)

const defaultDetailsLimit = 10

type RecommendationHandler struct {
	categories category.UseCase
	uc         recommendation.UseCase
	logger     logger.ZapLogger
}

func NewRecommendationHandler(categories category.UseCase, uc recommendation.UseCase, log logger.ZapLogger) *RecommendationHandler {
	return &RecommendationHandler{categories: categories, uc: uc, logger: log}
}

// GET /api/marketplace/categories_details?limit=&offset=
//
// Anonymous callers get an empty recommended_products list. A failure to build
// recommendations does not fail the listing.
func (h *RecommendationHandler) CategoriesDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), defaultDetailsLimit)
	if err != nil {
		response.Error(w, r, h.logger, apperror.New(apperror.CodeInvalidLimit, "Invalid limit"))
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		response.Error(w, r, h.logger, apperror.New(apperror.CodeInvalidOffset, "Invalid offset"))
		return
	}

	cats, err := h.categories.ListCategoryDetails(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	recs := []dto.CategoryRecommendation{}
	if userID := auth.GetUserID(r.Context()); userID != "" {
		got, err := h.uc.RecommendedProducts(r.Context(), userID, dto.ProductsPerCategory)
		if err != nil {
			h.logger.Error("Failed to build recommendations", zap.String("user_id", userID), zap.Error(err))
		} else {
			recs = got
		}
	}

	response.OK(w, dto.CategoriesDetailsResponse{
		CategoriesDetails:   categoryDTO.NewCategoryResponses(cats),
		RecommendedProducts: recs,
	})
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
