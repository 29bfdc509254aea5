package query

import (
	"strings"

	"github.com/neexbeast/destinations/internal/destination"
)

func (p *Processor) filter(dests []destination.Destination, f FilterSpec) []destination.Destination {
	var regions map[string]bool
	region := strings.ToLower(strings.TrimSpace(f.Region))
	if region != "" {
		regions = make(map[string]bool)
		for _, r := range p.enricher.RegionsMatching(region) {
			regions[strings.ToLower(r)] = true
		}
	}

	out := make([]destination.Destination, 0, len(dests))
	for _, d := range dests {
		if region != "" && !matchesRegion(d, region, regions) {
			continue
		}
		if f.PriceTier != "" && d.PriceTier != f.PriceTier {
			continue
		}
		if f.Climate != "" && d.Climate != f.Climate {
			continue
		}
		if f.PopulationMin != nil && d.Population < *f.PopulationMin {
			continue
		}
		if f.PopulationMax != nil && d.Population > *f.PopulationMax {
			continue
		}
		if !d.HasActivities(f.Activities) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// matchesRegion reports whether term appears in any region-like field of d,
// or whether d's English region or subregion is one of the expanded aliases.
func matchesRegion(d destination.Destination, term string, expanded map[string]bool) bool {
	for _, s := range []string{d.Region, d.Subregion, d.Country.Region, d.Country.Subregion, d.CountryName, d.Country.Name, d.Country.OfficialName} {
		if s != "" && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return expanded[strings.ToLower(d.Country.Region)] || expanded[strings.ToLower(d.Country.Subregion)]
}
