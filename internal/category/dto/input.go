package dto

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Code        string  `json:"category_code"`
	ParentCode  string  `json:"parent_category"`
	SortOrder   int     `json:"order"`
	ImageURL    *string `json:"image_url"`
	Description *string `json:"description"`
}

// UpdateCategoryInput patches a category. Nil fields are left unchanged; an
// empty ParentCode moves the category to the root.
type UpdateCategoryInput struct {
	Code        string  `json:"-"`
	Name        *string `json:"name"`
	ParentCode  *string `json:"parent_category"`
	SortOrder   *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
	ImageURL    *string `json:"image_url"`
	Description *string `json:"description"`
}
