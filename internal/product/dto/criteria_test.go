package dto

import (
	"encoding/json"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchCriteriaDefaults(t *testing.T) {
	c, err := ParseSearchCriteria(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, c.Limit)
	assert.Equal(t, 0, c.Offset)
	assert.Equal(t, SortNewestFirst, c.Sort)
	assert.Nil(t, c.MinPrice)
	assert.Nil(t, c.YearFrom)
}

func TestParseSearchCriteriaValues(t *testing.T) {
	c, err := ParseSearchCriteria(map[string]interface{}{
		"limit":           json.Number("25"),
		"offset":          "5",
		"sort":            "price_desc",
		"min_price":       "99.50",
		"max_price":       json.Number("1000"),
		"year_from":       2010.0,
		"year_to":         nil,
		"category_code":   " CNC ",
		"condition":       "Used",
		"state":           "Kerala",
		"location_search": "  koch ",
		"search":          42,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, c.Limit)
	assert.Equal(t, 5, c.Offset)
	assert.Equal(t, SortPriceDesc, c.Sort)
	assert.Equal(t, "99.5", c.MinPrice.String())
	assert.Equal(t, "1000", c.MaxPrice.String())
	require.NotNil(t, c.YearFrom)
	assert.Equal(t, 2010, *c.YearFrom)
	assert.Nil(t, c.YearTo)
	assert.Equal(t, "CNC", c.CategoryCode)
	assert.Equal(t, "koch", c.LocationSearch)
	assert.Equal(t, "", c.Search, "non-string search terms are ignored")
}

func TestParseSearchCriteriaFirstFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		code apperror.Code
	}{
		{"limit zero", map[string]interface{}{"limit": 0}, apperror.CodeInvalidLimit},
		{"limit too big", map[string]interface{}{"limit": 101}, apperror.CodeInvalidLimit},
		{"limit not a number", map[string]interface{}{"limit": "ten"}, apperror.CodeInvalidLimit},
		{"limit fractional", map[string]interface{}{"limit": 2.5}, apperror.CodeInvalidLimit},
		{"limit before offset", map[string]interface{}{"limit": 0, "offset": -1}, apperror.CodeInvalidLimit},
		{"negative offset", map[string]interface{}{"offset": -1}, apperror.CodeInvalidOffset},
		{"offset before sort", map[string]interface{}{"offset": -1, "sort": "oldest"}, apperror.CodeInvalidOffset},
		{"bad sort", map[string]interface{}{"sort": "oldest"}, apperror.CodeInvalidEnum},
		{"sort before price", map[string]interface{}{"sort": 1, "min_price": "x"}, apperror.CodeInvalidEnum},
		{"bad min price", map[string]interface{}{"min_price": "x"}, apperror.CodeInvalidArgument},
		{"negative max price", map[string]interface{}{"max_price": -1}, apperror.CodeInvalidArgument},
		{"price range", map[string]interface{}{"min_price": 300, "max_price": 100}, apperror.CodeInvalidRange},
		{"price range before year", map[string]interface{}{"min_price": 300, "max_price": 100, "year_from": "x"}, apperror.CodeInvalidRange},
		{"bad year", map[string]interface{}{"year_to": "recent"}, apperror.CodeInvalidArgument},
		{"year range", map[string]interface{}{"year_from": 2020, "year_to": 2010}, apperror.CodeInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSearchCriteria(tt.raw)
			require.Error(t, err)
			e, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestEqualBoundsAreAllowed(t *testing.T) {
	_, err := ParseSearchCriteria(map[string]interface{}{
		"min_price": 100, "max_price": "100.00", "year_from": 2015, "year_to": 2015,
	})
	assert.NoError(t, err)
}
