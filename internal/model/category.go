package model

// Category is a node of the catalog tree. Children are found by reverse lookup
// on ParentID; Children is only populated for tree-shaped responses.
type Category struct {
	BaseModel
	Name        string     `db:"name" json:"name"`
	Code        string     `db:"code" json:"category_code"`
	ParentID    *string    `db:"parent_id" json:"parent_id"`
	Level       int        `db:"level" json:"level"`
	SortOrder   int        `db:"sort_order" json:"order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	ImageURL    *string    `db:"image_url" json:"image_url"`
	Description *string    `db:"description" json:"description"`
	ParentCode  *string    `db:"parent_code" json:"parent_category"`
	ParentName  *string    `db:"parent_name" json:"parent_category_name"`
	Children    []Category `db:"-" json:"children,omitempty"`
}

// Breadcrumb is one step of a root-first category path.
type Breadcrumb struct {
	Name string `json:"name"`
	Code string `json:"category_code"`
}

func (c *Category) Breadcrumb() Breadcrumb {
	return Breadcrumb{Name: c.Name, Code: c.Code}
}
