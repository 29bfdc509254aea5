package destination

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/neexbeast/destinations/internal/dataset"
)

// Enricher derives Destinations from raw city and country records.
// Enrich is a pure function of its inputs and the Tables.
type Enricher struct {
	tables  Tables
	locale  string
	regions map[string]string
}

// NewEnricher returns an Enricher that localizes region names for locale.
func NewEnricher(locale string, tables Tables) *Enricher {
	if tables.Climate.TemperateAbove > tables.Climate.ColdAbove {
		tables.Climate.TemperateAbove, tables.Climate.ColdAbove = tables.Climate.ColdAbove, tables.Climate.TemperateAbove
	}
	return &Enricher{
		tables:  tables,
		locale:  locale,
		regions: tables.RegionNames[locale],
	}
}

// Locale returns the display locale.
func (e *Enricher) Locale() string { return e.locale }

// Enrich builds the Destination for city in country.
func (e *Enricher) Enrich(city dataset.City, country dataset.Country) Destination {
	lat := float64(city.Latitude)
	capital := city.IsCapitalOf(country)
	climate := e.Climate(lat)

	return Destination{
		ID:          city.ID,
		Name:        city.Name,
		CountryName: country.Name,
		Region:      e.TranslateRegion(country.Region),
		Subregion:   e.TranslateRegion(country.Subregion),
		State:       city.StateName,
		Population:  e.Population(city, country),
		Latitude:    lat,
		Longitude:   float64(city.Longitude),
		Country: CountryInfo{
			ID:           country.ID,
			Name:         country.LocalizedName(e.locale),
			OfficialName: country.Name,
			ISO2:         strings.ToUpper(country.ISO2),
			Capital:      country.Capital,
			Region:       country.Region,
			Subregion:    country.Subregion,
			Currency: Currency{
				Code:   country.Currency,
				Name:   country.CurrencyName,
				Symbol: country.CurrencySymbol,
			},
			FlagURL: e.FlagURL(country.ISO2),
		},
		PriceTier:  e.PriceTier(country),
		Climate:    climate,
		Activities: activities(climate, capital),
		IsCapital:  capital,
	}
}

// TranslateRegion localizes an English region name; unmapped names pass through.
func (e *Enricher) TranslateRegion(region string) string {
	if t, ok := e.regions[region]; ok {
		return t
	}
	return region
}

// RegionsMatching returns the English region names whose English or localized
// form contains term, plus any regions the term is an alias for.
func (e *Enricher) RegionsMatching(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(r string) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	for en, local := range e.regions {
		if strings.Contains(strings.ToLower(en), term) || strings.Contains(strings.ToLower(local), term) {
			add(en)
		}
	}
	for _, r := range e.tables.RegionAliases[term] {
		add(r)
	}
	return out
}

// Population returns the curated population for well-known cities, otherwise
// a stable estimate within the range for the country's region.
func (e *Enricher) Population(city dataset.City, country dataset.Country) int {
	if p, ok := e.tables.KnownPopulation[strings.ToLower(strings.TrimSpace(city.Name))]; ok {
		return p
	}

	ranges := e.tables.CityRanges
	if city.IsCapitalOf(country) {
		ranges = e.tables.CapitalRanges
	}
	r, ok := ranges.ByRegion[country.Subregion]
	if !ok {
		r, ok = ranges.ByRegion[country.Region]
	}
	if !ok {
		r = ranges.Default
	}

	span := r.Max - r.Min
	if span <= 0 {
		return max(r.Min, 0)
	}
	return r.Min + int(nameHash(city.Name)%uint64(span))
}

func nameHash(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return h.Sum64()
}

// PriceTier classifies the country by region, then by subregion.
func (e *Enricher) PriceTier(country dataset.Country) PriceTier {
	for _, r := range []string{country.Region, country.Subregion} {
		if e.tables.HighCostRegions[r] {
			return PriceHigh
		}
		if e.tables.LowCostRegions[r] {
			return PriceLow
		}
	}
	return PriceMedium
}

// Climate classifies a latitude. Every latitude maps to exactly one climate.
func (e *Enricher) Climate(lat float64) Climate {
	abs := math.Abs(lat)
	switch {
	case abs > e.tables.Climate.ColdAbove:
		return ClimateCold
	case abs > e.tables.Climate.TemperateAbove:
		return ClimateTemperate
	default:
		return ClimateHot
	}
}

// FlagURL builds the flag image URL for an ISO2 code.
func (e *Enricher) FlagURL(iso2 string) string {
	if iso2 == "" {
		return ""
	}
	return fmt.Sprintf(e.tables.FlagURLTemplate, strings.ToLower(iso2))
}

func activities(c Climate, capital bool) []Activity {
	out := []Activity{ActivityCity}
	switch c {
	case ClimateHot:
		out = append(out, ActivityBeach)
	case ClimateCold:
		out = append(out, ActivitySnow)
	}
	if capital {
		out = append(out, ActivityCulture)
	}
	return out
}
