package destination

import (
	"sort"
	"strings"
)

// PopulationBonus awards Bonus to destinations with more than Above inhabitants.
type PopulationBonus struct {
	Above int
	Bonus float64
}

// ScoreTables holds the popularity weights.
type ScoreTables struct {
	// RegionBase is keyed by English subregion or region; subregion wins.
	RegionBase   map[string]float64
	DefaultBase  float64
	TierBonus    map[PriceTier]float64
	ClimateBonus map[Climate]float64
	FamousCities []string
	FamousBonus  float64
	// PopulationBonuses is not cumulative: only the highest matching breakpoint applies.
	PopulationBonuses []PopulationBonus
}

// DefaultScoreTables returns the built-in popularity weights.
func DefaultScoreTables() ScoreTables {
	return ScoreTables{
		RegionBase: map[string]float64{
			"Western Europe":            30,
			"Southern Europe":           28,
			"Northern America":          27,
			"Eastern Asia":              25,
			"Northern Europe":           24,
			"Australia and New Zealand": 23,
			"South-Eastern Asia":        22,
			"Caribbean":                 21,
			"South America":             20,
			"Western Asia":              19,
			"Eastern Europe":            18,
			"Central America":           17,
			"Northern Africa":           16,
			"Southern Asia":             15,
			"Europe":                    25,
			"Asia":                      18,
			"Americas":                  18,
			"Oceania":                   18,
			"Africa":                    12,
		},
		DefaultBase:  10,
		TierBonus:    map[PriceTier]float64{PriceHigh: 15, PriceMedium: 10, PriceLow: 5},
		ClimateBonus: map[Climate]float64{ClimateHot: 10, ClimateTemperate: 8, ClimateCold: 5},
		FamousCities: []string{
			"paris", "london", "new york", "tokyo", "rome", "barcelona", "dubai",
			"rio de janeiro", "amsterdam", "sydney", "istanbul", "bangkok",
			"singapore", "los angeles", "lisbon", "prague", "venice", "cancun",
			"buenos aires", "kyoto",
		},
		FamousBonus: 50,
		PopulationBonuses: []PopulationBonus{
			{Above: 10_000_000, Bonus: 20},
			{Above: 5_000_000, Bonus: 15},
			{Above: 1_000_000, Bonus: 10},
			{Above: 500_000, Bonus: 5},
		},
	}
}

// Scorer computes popularity scores. Higher is more popular.
type Scorer struct {
	t ScoreTables
}

func NewScorer(t ScoreTables) *Scorer {
	t.FamousCities = lowerAll(t.FamousCities)
	bonuses := append([]PopulationBonus(nil), t.PopulationBonuses...)
	sort.SliceStable(bonuses, func(i, j int) bool { return bonuses[i].Above > bonuses[j].Above })
	t.PopulationBonuses = bonuses
	return &Scorer{t: t}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Score returns the popularity of d.
func (s *Scorer) Score(d Destination) float64 {
	score, ok := s.t.RegionBase[d.Country.Subregion]
	if !ok {
		score, ok = s.t.RegionBase[d.Country.Region]
	}
	if !ok {
		score = s.t.DefaultBase
	}

	score += s.t.TierBonus[d.PriceTier]
	score += s.t.ClimateBonus[d.Climate]

	name := strings.ToLower(d.Name)
	for _, famous := range s.t.FamousCities {
		if famous != "" && strings.Contains(name, famous) {
			score += s.t.FamousBonus
			break
		}
	}

	for _, b := range s.t.PopulationBonuses {
		if d.Population > b.Above {
			score += b.Bonus
			break
		}
	}

	return score
}

// Stars rates d from 1 to 5 by population.
func Stars(d Destination) int {
	switch {
	case d.Population > 10_000_000:
		return 5
	case d.Population > 5_000_000:
		return 4
	case d.Population > 2_000_000:
		return 3
	case d.Population > 1_000_000:
		return 2
	default:
		return 1
	}
}
