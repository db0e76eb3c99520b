package dto

import (
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// SearchFilters is what the repository queries: the validated criteria plus
// the resolved category scope and, when a text index answered the free-text
// part, the matching product IDs.
type SearchFilters struct {
	SearchCriteria
	CategoryIDs []string
	MatchedIDs  []string
	// TextMatched reports that MatchedIDs replaces the substring filter on
	// name and description.
	TextMatched bool
}

type SearchResult struct {
	Products    []model.ProductSummary `json:"products_details"`
	TotalCount  string                 `json:"total_count"`
	Breadcrumbs []model.Breadcrumb     `json:"breadcrumbs,omitempty"`
}

type ProductDetails struct {
	model.Product
	CategoryCode   string             `json:"category_code"`
	Specifications map[string]string  `json:"product_specifications"`
	ImageURLs      []string           `json:"image_urls"`
	Breadcrumbs    []model.Breadcrumb `json:"breadcrumbs"`
}

func NewProductDetails(p *model.Product, crumbs []model.Breadcrumb) *ProductDetails {
	out := &ProductDetails{
		Product:        *p,
		Specifications: make(map[string]string, len(p.Specs)),
		ImageURLs:      make([]string, 0, len(p.Images)),
		Breadcrumbs:    crumbs,
	}
	if p.Category != nil {
		out.CategoryCode = p.Category.Code
	}
	for _, s := range p.Specs {
		out.Specifications[s.Key] = s.Value
	}
	for _, img := range p.Images {
		out.ImageURLs = append(out.ImageURLs, img.ImageURL)
	}
	out.Specs, out.Images = nil, nil
	return out
}
