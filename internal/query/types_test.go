package query_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/destinations/internal/query"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{1, 10, 1, 10},
		{0, 0, 1, 1},
		{-5, -5, 1, 1},
		{1001, 101, 1000, 100},
		{1000, 100, 1000, 100},
	}
	for _, tt := range tests {
		page, size := query.Clamp(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "paris", query.SanitizeSearch("  paris  "))
	assert.Equal(t, "scriptalert(1)/script", query.SanitizeSearch(`<script>alert(1)</script>`))
	assert.Equal(t, "Quebec", query.SanitizeSearch(`"Quebec"&'`))
	assert.Equal(t, "", query.SanitizeSearch(" <> "))

	long := strings.Repeat("á", 150)
	assert.Equal(t, strings.Repeat("á", 100), query.SanitizeSearch(long))
}

func TestParseSortBy(t *testing.T) {
	assert.Equal(t, query.SortName, query.ParseSortBy("nome"))
	assert.Equal(t, query.SortName, query.ParseSortBy("NAME"))
	assert.Equal(t, query.SortPopulation, query.ParseSortBy("população"))
	assert.Equal(t, query.SortPopularity, query.ParseSortBy(""))
	assert.Equal(t, query.SortPopularity, query.ParseSortBy("bogus"))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	res := query.Paginate(items, 3, 3)
	assert.Equal(t, []int{7}, res.Items)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 7, res.TotalItems)

	res = query.Paginate([]int{}, 1, 10)
	assert.Equal(t, []int{}, res.Items)
	assert.Equal(t, 0, res.TotalPages)
}
