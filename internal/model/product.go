package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Availability string

const (
	InStock      Availability = "In Stock"
	OutOfStock   Availability = "Out of Stock"
	LimitedStock Availability = "Limited Stock"
)

func (a Availability) Valid() bool {
	switch a {
	case InStock, OutOfStock, LimitedStock:
		return true
	}
	return false
}

const DefaultCurrency = "INR"

type Product struct {
	BaseModel
	Name         string              `db:"name" json:"name"`
	Code         string              `db:"code" json:"product_code"`
	Description  string              `db:"description" json:"description"`
	CategoryID   string              `db:"category_id" json:"category_id"`
	SellerID     string              `db:"seller_id" json:"seller_id"`
	LocationID   *string             `db:"location_id" json:"location_id"`
	Tag          string              `db:"tag" json:"tag"`
	Price        decimal.NullDecimal `db:"price" json:"price"`
	Currency     string              `db:"currency" json:"currency"`
	Availability Availability        `db:"availability" json:"availability"`
	IsActive     bool                `db:"is_active" json:"is_active"`
	Specs        []ProductSpec       `db:"-" json:"specifications,omitempty"`
	Images       []ProductImage      `db:"-" json:"images,omitempty"`
	Location     *Location           `db:"-" json:"location,omitempty"`
	Category     *Category           `db:"-" json:"category,omitempty"`
}

type ProductSpec struct {
	ID        string `db:"id" json:"-"`
	ProductID string `db:"product_id" json:"-"`
	Key       string `db:"key" json:"key"`
	Value     string `db:"value" json:"value"`
}

type ProductImage struct {
	ID        string `db:"id" json:"-"`
	ProductID string `db:"product_id" json:"-"`
	ImageURL  string `db:"image_url" json:"image_url"`
	SortOrder int    `db:"sort_order" json:"order"`
}

type Location struct {
	ID       string `db:"id" json:"-"`
	State    string `db:"state" json:"state"`
	District string `db:"district" json:"district"`
}

// ProductSummary is the search row shape: product columns joined with the
// category code and location names. Specifications and ImageURLs are filled
// for the returned page only.
type ProductSummary struct {
	ID             string              `db:"id" json:"id"`
	Name           string              `db:"name" json:"name"`
	Code           string              `db:"code" json:"product_code"`
	Description    string              `db:"description" json:"description"`
	CategoryCode   string              `db:"category_code" json:"category_code"`
	SellerID       string              `db:"seller_id" json:"seller_id"`
	Tag            string              `db:"tag" json:"tag"`
	Price          decimal.NullDecimal `db:"price" json:"price"`
	Currency       string              `db:"currency" json:"currency"`
	Availability   Availability        `db:"availability" json:"availability"`
	State          *string             `db:"state" json:"state"`
	District       *string             `db:"district" json:"district"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	Specifications map[string]string   `db:"-" json:"product_specifications"`
	ImageURLs      []string            `db:"-" json:"image_urls"`
}
