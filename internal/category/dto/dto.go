package dto

import "github.com/fekuna/omnipos-marketplace-service/internal/model"

type CategoryFilters struct {
	ParentID *string // Nil means ignore, Empty string means root categories
	IsActive *bool
	OrderBy  string // "tree" orders by level first
	Limit    int
	Offset   int
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"category_code"`
	Description *string `json:"description"`
	Level       int     `json:"level"`
	ParentCode  *string `json:"parent_category"`
	ParentName  *string `json:"parent_category_name"`
	Order       int     `json:"order"`
	ImageURL    *string `json:"image_url"`
	IsActive    bool    `json:"is_active"`
	IsLeaf      *bool   `json:"is_leaf,omitempty"`
}

func NewCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		Level:       c.Level,
		ParentCode:  c.ParentCode,
		ParentName:  c.ParentName,
		Order:       c.SortOrder,
		ImageURL:    c.ImageURL,
		IsActive:    c.IsActive,
	}
}

func NewCategoryResponses(cats []model.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cats))
	for i := range cats {
		out[i] = NewCategoryResponse(&cats[i])
	}
	return out
}

// ChildrenResponse is a drill-down step of the seller portal.
type ChildrenResponse struct {
	Category   CategoryResponse   `json:"category"`
	Children   []CategoryResponse `json:"children"`
	Breadcrumb []model.Breadcrumb `json:"breadcrumb"`
}
