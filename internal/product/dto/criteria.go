package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type SortOrder string

const (
	SortNewestFirst SortOrder = "newest_first"
	SortPriceAsc    SortOrder = "price_asc"
	SortPriceDesc   SortOrder = "price_desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortNewestFirst, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// SearchCriteria is a validated listing search. Zero values mean "no filter".
type SearchCriteria struct {
	CategoryCode   string           `json:"category_code,omitempty"`
	Limit          int              `json:"limit"`
	Offset         int              `json:"offset"`
	Sort           SortOrder        `json:"sort"`
	MinPrice       *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice       *decimal.Decimal `json:"max_price,omitempty"`
	Condition      string           `json:"condition,omitempty"`
	YearFrom       *int             `json:"year_from,omitempty"`
	YearTo         *int             `json:"year_to,omitempty"`
	State          string           `json:"state,omitempty"`
	District       string           `json:"district,omitempty"`
	LocationSearch string           `json:"location_search,omitempty"`
	Search         string           `json:"search,omitempty"`
}

// ParseSearchCriteria validates raw request parameters and stops at the first
// failure, checked in the order limit, offset, sort, min_price, max_price,
// price range, year_from, year_to, year range. Category codes are resolved
// later by the use case.
func ParseSearchCriteria(raw map[string]interface{}) (*SearchCriteria, error) {
	c := &SearchCriteria{Limit: DefaultLimit, Sort: SortNewestFirst}

	if v, ok := present(raw, "limit"); ok {
		n, err := toInt(v)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidLimit, "Invalid limit")
		}
		c.Limit = n
	}
	if c.Limit < 1 || c.Limit > MaxLimit {
		return nil, apperror.New(apperror.CodeInvalidLimit, "Invalid limit. Must be between 1 and %d", MaxLimit)
	}

	if v, ok := present(raw, "offset"); ok {
		n, err := toInt(v)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidOffset, "Invalid offset")
		}
		c.Offset = n
	}
	if c.Offset < 0 {
		return nil, apperror.New(apperror.CodeInvalidOffset, "Invalid offset. Must be >= 0")
	}

	if v, ok := present(raw, "sort"); ok {
		s, _ := v.(string)
		c.Sort = SortOrder(s)
		if !c.Sort.Valid() {
			return nil, apperror.New(apperror.CodeInvalidEnum,
				"Invalid sort. Must be one of %s, %s, %s", SortNewestFirst, SortPriceAsc, SortPriceDesc)
		}
	}

	var err error
	if c.MinPrice, err = priceParam(raw, "min_price"); err != nil {
		return nil, err
	}
	if c.MaxPrice, err = priceParam(raw, "max_price"); err != nil {
		return nil, err
	}
	if c.MinPrice != nil && c.MaxPrice != nil && c.MinPrice.GreaterThan(*c.MaxPrice) {
		return nil, apperror.New(apperror.CodeInvalidRange, "min_price must be <= max_price")
	}

	if c.YearFrom, err = yearParam(raw, "year_from"); err != nil {
		return nil, err
	}
	if c.YearTo, err = yearParam(raw, "year_to"); err != nil {
		return nil, err
	}
	if c.YearFrom != nil && c.YearTo != nil && *c.YearFrom > *c.YearTo {
		return nil, apperror.New(apperror.CodeInvalidRange, "year_from must be <= year_to")
	}

	c.CategoryCode = stringParam(raw, "category_code")
	c.Condition = stringParam(raw, "condition")
	c.State = stringParam(raw, "state")
	c.District = stringParam(raw, "district")
	c.LocationSearch = stringParam(raw, "location_search")
	c.Search = stringParam(raw, "search")
	return c, nil
}

// present treats JSON null like an absent key.
func present(raw map[string]interface{}, key string) (interface{}, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func stringParam(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func priceParam(raw map[string]interface{}, key string) (*decimal.Decimal, error) {
	v, ok := present(raw, key)
	if !ok {
		return nil, nil
	}
	d, err := toDecimal(v)
	if err != nil || d.IsNegative() {
		return nil, apperror.InvalidArgument("Invalid %s", key)
	}
	return &d, nil
}

func yearParam(raw map[string]interface{}, key string) (*int, error) {
	v, ok := present(raw, key)
	if !ok {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil || n < 0 {
		return nil, apperror.InvalidArgument("Invalid %s", key)
	}
	return &n, nil
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("%v is not an integer", t)
		}
		return int(t), nil
	case json.Number:
		return strconv.Atoi(t.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	}
	return decimal.Decimal{}, fmt.Errorf("unsupported type %T", v)
}
