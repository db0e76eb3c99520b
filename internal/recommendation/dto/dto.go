package dto

import (
	categoryDTO "github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

const (
	EventCategoryViewed = "CategoryViewed"
	// MaxTrackedCategories is how many recently viewed categories a user keeps.
	MaxTrackedCategories = 3
	ProductsPerCategory  = 3
)

type CategoryRecommendation struct {
	CategoryName     string                 `json:"category_name"`
	CategoryCode     string                 `json:"category_code"`
	CategoryImageURL *string                `json:"category_image_url"`
	Products         []model.ProductSummary `json:"products"`
}

type CategoryViewedPayload struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"category_id"`
}

type CategoriesDetailsResponse struct {
	CategoriesDetails   []categoryDTO.CategoryResponse `json:"categories_details"`
	RecommendedProducts []CategoryRecommendation       `json:"recommended_products"`
}
