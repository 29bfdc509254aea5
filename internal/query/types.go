package query

import (
	"strings"
	"unicode/utf8"

	"github.com/neexbeast/destinations/internal/destination"
)

const (
	MaxPage        = 1000
	MaxPageSize    = 100
	maxSearchRunes = 100
)

// SortBy selects the result ordering.
type SortBy string

const (
	SortPopularity SortBy = "popularity"
	SortName       SortBy = "name"
	SortPopulation SortBy = "population"
)

// ParseSortBy accepts the English names and the pt-BR labels used by the UI.
// Unknown values select popularity.
func ParseSortBy(s string) SortBy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "nome":
		return SortName
	case "population", "populacao", "população":
		return SortPopulation
	default:
		return SortPopularity
	}
}

// FilterSpec restricts results. Zero-valued fields do not filter; all set
// fields must match.
type FilterSpec struct {
	// Region matches, case-insensitively, the localized or English region,
	// subregion, or country name.
	Region        string
	PriceTier     destination.PriceTier
	Climate       destination.Climate
	PopulationMin *int
	PopulationMax *int
	Activities    []destination.Activity
	SortBy        SortBy
}

// PageRequest asks for one page of destinations.
type PageRequest struct {
	Page    int
	Size    int
	Search  string
	Filters FilterSpec
	// UserID, when set, tags the user's favorites in the result.
	UserID string
}

// PageResult is one page of a filtered, sorted collection.
type PageResult[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
}

// Clamp returns page and size forced into their valid ranges.
func Clamp(page, size int) (int, int) {
	return min(max(page, 1), MaxPage), min(max(size, 1), MaxPageSize)
}

// SanitizeSearch strips markup-sensitive characters, trims and caps the term.
func SanitizeSearch(term string) string {
	term = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\'', '"', '&':
			return -1
		}
		return r
	}, term)
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) > maxSearchRunes {
		term = strings.TrimSpace(string([]rune(term)[:maxSearchRunes]))
	}
	return term
}

// Paginate slices items into the requested page. page and size must already be clamped.
func Paginate[T any](items []T, page, size int) PageResult[T] {
	total := len(items)
	res := PageResult[T]{
		Items:       []T{},
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		return res
	}
	end := min(start+size, total)
	res.Items = items[start:end]
	return res
}
