package dto

import "github.com/shopspring/decimal"

type LocationInput struct {
	State    string `json:"state"`
	District string `json:"district"`
}

type CreateProductInput struct {
	// SellerID comes from the caller's identity, never the body.
	SellerID     string                 `json:"-"`
	CategoryCode string                 `json:"category_code"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        *decimal.Decimal       `json:"price"`
	Currency     string                 `json:"currency"`
	Tag          string                 `json:"tag"`
	Availability string                 `json:"availability"`
	ExtraInfo    map[string]interface{} `json:"extra_info"`
	ImageURLs    []string               `json:"image_urls"`
	Location     *LocationInput         `json:"location"`
}
