package dto

import "encoding/json"

const (
	MaxNameLength         = 255
	MaxCategoryCodeLength = 50
)

// CreateSavedSearchInput mirrors the search request body. QueryParams must be
// a JSON object when present.
type CreateSavedSearchInput struct {
	Name         string          `json:"name"`
	CategoryCode string          `json:"category_code"`
	QueryParams  json.RawMessage `json:"query_params"`
}
