package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/neexbeast/destinations/internal/destination"
)

// sort orders dests in place. All orderings are stable so equal keys keep
// candidate order.
func (p *Processor) sort(dests []destination.Destination, by SortBy) {
	switch by {
	case SortName:
		// Collators are not safe for concurrent use.
		col := collate.New(language.Make(p.enricher.Locale()), collate.IgnoreCase)
		sort.SliceStable(dests, func(i, j int) bool {
			return col.CompareString(dests[i].Name, dests[j].Name) < 0
		})
	case SortPopulation:
		sort.SliceStable(dests, func(i, j int) bool {
			return dests[i].Population > dests[j].Population
		})
	default:
		scores := make(map[int]float64, len(dests))
		for _, d := range dests {
			scores[d.ID] = p.scorer.Score(d)
		}
		sort.SliceStable(dests, func(i, j int) bool {
			return scores[dests[i].ID] > scores[dests[j].ID]
		})
	}
}
