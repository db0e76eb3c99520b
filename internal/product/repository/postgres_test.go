package repository

import (
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptrInt(i int) *int { return &i }

func TestBuildSearchQuery(t *testing.T) {
	minPrice := decimal.NewFromInt(150)

	tests := []struct {
		name     string
		filters  dto.SearchFilters
		contains []string
		absent   []string
		argKeys  []string
	}{
		{
			name:     "no filters",
			filters:  dto.SearchFilters{},
			contains: []string{"WHERE p.is_active = TRUE"},
			absent:   []string{"category_id", "ILIKE", "EXISTS"},
		},
		{
			name:     "category scope and price",
			filters:  dto.SearchFilters{CategoryIDs: []string{"a", "b"}, SearchCriteria: dto.SearchCriteria{MinPrice: &minPrice}},
			contains: []string{"p.category_id IN (:category_ids)", "p.price >= :min_price"},
			argKeys:  []string{"category_ids", "min_price"},
		},
		{
			name:     "condition",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{Condition: "Used"}},
			contains: []string{"cs.key = :condition_key", "cs.value = :condition"},
			argKeys:  []string{"condition", "condition_key"},
		},
		{
			name:     "year lower bound only",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{YearFrom: ptrInt(2010)}},
			contains: []string{"ys.key = :year_key", ">= :year_from", "CAST(TRIM(ys.value) AS INTEGER)"},
			absent:   []string{":year_to"},
			argKeys:  []string{"year_from", "year_key"},
		},
		{
			name:     "location",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{State: "Kerala", District: "Kochi", LocationSearch: "ko"}},
			contains: []string{"LOWER(l.state) = LOWER(:state)", "LOWER(l.district) = LOWER(:district)", "l.district ILIKE :location_search"},
			argKeys:  []string{"district", "location_search", "state"},
		},
		{
			name:     "text in database",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{Search: "lathe"}},
			contains: []string{"(p.name ILIKE :search OR p.description ILIKE :search)"},
			argKeys:  []string{"search"},
		},
		{
			name:     "text from index",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{Search: "lathe"}, TextMatched: true, MatchedIDs: []string{"x"}},
			contains: []string{"p.id IN (:matched_ids)"},
			absent:   []string{"ILIKE"},
			argKeys:  []string{"matched_ids"},
		},
		{
			name:     "index matched nothing",
			filters:  dto.SearchFilters{SearchCriteria: dto.SearchCriteria{Search: "lathe"}, TextMatched: true},
			contains: []string{"AND FALSE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildSearchQuery(&tt.filters)
			for _, frag := range tt.contains {
				assert.Contains(t, where, frag)
			}
			for _, frag := range tt.absent {
				assert.NotContains(t, where, frag)
			}
			keys := make([]string, 0, len(args))
			for k := range args {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.argKeys, keys)
		})
	}
}

func TestSearchPatternsAreEscaped(t *testing.T) {
	_, args := buildSearchQuery(&dto.SearchFilters{SearchCriteria: dto.SearchCriteria{Search: `50%_off\`}})
	assert.Equal(t, `%50\%\_off\\%`, args["search"])
}

func TestOrderByAlwaysBreaksTies(t *testing.T) {
	for _, s := range []dto.SortOrder{dto.SortNewestFirst, dto.SortPriceAsc, dto.SortPriceDesc} {
		assert.True(t, strings.HasSuffix(orderBy(s), "p.id"), s)
	}
	assert.True(t, strings.HasPrefix(orderBy(dto.SortPriceAsc), "p.price ASC"))
	assert.True(t, strings.HasPrefix(orderBy(dto.SortPriceDesc), "p.price DESC"))
}

func TestTextQueryEscapesWildcards(t *testing.T) {
	q := textQuery(`a*b?`)
	should := q["query"].(map[string]interface{})["bool"].(map[string]interface{})["should"].([]interface{})
	clause := should[0].(map[string]interface{})["wildcard"].(map[string]interface{})["name.raw"].(map[string]interface{})
	assert.Equal(t, `*a\*b\?*`, clause["value"])
	assert.Equal(t, true, clause["case_insensitive"])
}
