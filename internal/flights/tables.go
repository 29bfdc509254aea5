package flights

// DistanceTier prices routes up to MaxKm.
type DistanceTier struct {
	MaxKm float64
	Price float64
}

// FallbackGroup is a set of city-name fragments used when a place has no coordinates.
type FallbackGroup string

const (
	GroupBrazil       FallbackGroup = "brazil"
	GroupEurope       FallbackGroup = "europe"
	GroupNorthAmerica FallbackGroup = "north_america"
	GroupAsia         FallbackGroup = "asia"
	GroupOceania      FallbackGroup = "oceania"
)

// FallbackTables drive the name-heuristic estimate.
type FallbackTables struct {
	// Groups lists name fragments per group. Groups are tried in Order.
	Groups map[FallbackGroup][]string
	Order  []FallbackGroup
	// Home is the group whose flights to and from other groups are priced by PairPrice.
	Home FallbackGroup
	// PairPrice is the base price between Home and another group; Home to Home
	// is the domestic price.
	PairPrice map[FallbackGroup]float64
	// HomeOther prices Home to a city in no group.
	HomeOther float64
	// Generic prices every route not touching Home.
	Generic float64
}

// Tables holds the pricing model constants.
type Tables struct {
	// RegionFactors are cost multipliers per pricing region.
	RegionFactors map[string]float64
	// CountryRegions maps country names to pricing regions.
	CountryRegions map[string]string
	DefaultRegion  string
	DistanceTiers  []DistanceTier
	// ExtraPer1000Km extends the last tier linearly.
	ExtraPer1000Km float64
	// SeasonFactors is indexed by month, January first.
	SeasonFactors [12]float64
	// PopularRoutes is keyed by "origin-destination" and applies in both directions.
	PopularRoutes    map[string]float64
	Variance         float64
	FallbackVariance float64
	Fallback         FallbackTables

	DealOrigins []string
	// DiscountFactors are indexed by route competitiveness: 0 for premium
	// routes, 1 for regular, 2 for high-competition routes.
	DiscountFactors [3]float64
	DealCount       int
}

// DefaultTables returns the built-in pricing model.
func DefaultTables() Tables {
	return Tables{
		RegionFactors: map[string]float64{
			"Brazil":        1.0,
			"South America": 1.2,
			"North America": 1.8,
			"Europe":        2.0,
			"Asia":          2.3,
			"Africa":        2.2,
			"Oceania":       2.5,
		},
		CountryRegions: map[string]string{
			"Brazil":         "Brazil",
			"Argentina":      "South America",
			"Chile":          "South America",
			"Colombia":       "South America",
			"Peru":           "South America",
			"Uruguay":        "South America",
			"Bolivia":        "South America",
			"Ecuador":        "South America",
			"Paraguay":       "South America",
			"Venezuela":      "South America",
			"United States":  "North America",
			"Canada":         "North America",
			"Mexico":         "North America",
			"Cuba":           "North America",
			"United Kingdom": "Europe",
			"France":         "Europe",
			"Germany":        "Europe",
			"Italy":          "Europe",
			"Spain":          "Europe",
			"Portugal":       "Europe",
			"Netherlands":    "Europe",
			"Belgium":        "Europe",
			"Switzerland":    "Europe",
			"Austria":        "Europe",
			"Ireland":        "Europe",
			"Greece":         "Europe",
			"Japan":          "Asia",
			"China":          "Asia",
			"South Korea":    "Asia",
			"India":          "Asia",
			"Thailand":       "Asia",
			"Vietnam":        "Asia",
			"Singapore":      "Asia",
			"Malaysia":       "Asia",
			"Indonesia":      "Asia",
			"Philippines":    "Asia",
			"South Africa":   "Africa",
			"Egypt":          "Africa",
			"Morocco":        "Africa",
			"Kenya":          "Africa",
			"Nigeria":        "Africa",
			"Australia":      "Oceania",
			"New Zealand":    "Oceania",
		},
		DefaultRegion: "South America",
		DistanceTiers: []DistanceTier{
			{MaxKm: 500, Price: 150},
			{MaxKm: 1000, Price: 250},
			{MaxKm: 2000, Price: 400},
			{MaxKm: 5000, Price: 700},
			{MaxKm: 10000, Price: 1100},
			{MaxKm: 15000, Price: 1500},
			{MaxKm: 20000, Price: 2000},
		},
		ExtraPer1000Km: 100,
		SeasonFactors:  [12]float64{1.2, 1.3, 1.0, 0.9, 0.85, 0.9, 1.1, 0.9, 0.85, 0.9, 1.0, 1.3},
		PopularRoutes: map[string]float64{
			"São Paulo-Rio de Janeiro": 0.9,
			"São Paulo-Brasília":       0.95,
			"São Paulo-Recife":         1.0,
			"Rio de Janeiro-Brasília":  0.95,
			"Rio de Janeiro-Salvador":  0.9,
			"São Paulo-Buenos Aires":   1.0,
			"São Paulo-Santiago":       1.0,
			"São Paulo-New York":       1.05,
			"Rio de Janeiro-Paris":     1.05,
			"São Paulo-London":         1.05,
			"São Paulo-Miami":          1.0,
			"São Paulo-Orlando":        0.95,
			"São Paulo-Lisbon":         1.0,
			"São Paulo-Madrid":         1.0,
			"São Paulo-Frankfurt":      1.05,
		},
		Variance:         0.05,
		FallbackVariance: 0.10,
		Fallback: FallbackTables{
			Groups: map[FallbackGroup][]string{
				GroupBrazil: {
					"São Paulo", "Rio", "Brasília", "Salvador", "Fortaleza", "Belo Horizonte",
					"Manaus", "Curitiba", "Recife", "Porto Alegre", "Belém", "Goiânia",
					"Guarulhos", "Campinas", "São Luís", "Natal",
				},
				GroupEurope: {
					"London", "Paris", "Berlin", "Madrid", "Rome", "Amsterdam", "Barcelona",
					"Lisbon", "Vienna", "Athens", "Dublin", "Brussels", "Prague",
				},
				GroupNorthAmerica: {
					"New York", "Los Angeles", "Chicago", "Toronto", "Miami", "Vancouver",
					"San Francisco", "Las Vegas", "Orlando", "Washington", "Boston", "Seattle",
					"Atlanta", "Dallas", "Houston", "Denver",
				},
				GroupAsia: {
					"Tokyo", "Seoul", "Beijing", "Shanghai", "Hong Kong", "Singapore",
					"Bangkok", "Delhi", "Mumbai", "Dubai", "Tel Aviv", "Doha",
				},
				GroupOceania: {
					"Sydney", "Melbourne", "Auckland", "Brisbane", "Perth", "Adelaide",
					"Wellington", "Queenstown",
				},
			},
			Order: []FallbackGroup{GroupEurope, GroupNorthAmerica, GroupAsia, GroupOceania},
			Home:  GroupBrazil,
			PairPrice: map[FallbackGroup]float64{
				GroupBrazil:       250,
				GroupEurope:       1200,
				GroupNorthAmerica: 800,
				GroupAsia:         1800,
				GroupOceania:      2000,
			},
			HomeOther: 600,
			Generic:   800,
		},
		DealOrigins: []string{
			"São Paulo", "Rio de Janeiro", "Brasília", "Belo Horizonte", "Salvador",
			"Fortaleza", "Recife", "Porto Alegre", "Curitiba",
		},
		DiscountFactors: [3]float64{0.85, 0.8, 0.75},
		DealCount:       3,
	}
}
