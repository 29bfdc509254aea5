package destination

// PopulationRange is a half-open [Min, Max) estimate range.
type PopulationRange struct {
	Min int
	Max int
}

// RegionRanges maps a region or subregion name to estimate ranges, with a
// fallback for unlisted regions.
type RegionRanges struct {
	ByRegion map[string]PopulationRange
	Default  PopulationRange
}

// ClimateBands are the absolute-latitude thresholds. Latitudes above ColdAbove
// are cold, above TemperateAbove temperate, everything else hot.
type ClimateBands struct {
	ColdAbove      float64
	TemperateAbove float64
}

// Tables holds the lookup data used by the Enricher.
type Tables struct {
	// RegionNames maps locale -> English region -> localized region.
	RegionNames map[string]map[string]string
	// RegionAliases maps a search word to the English regions it covers.
	RegionAliases map[string][]string
	// KnownPopulation is keyed by lower-case city name.
	KnownPopulation map[string]int
	CapitalRanges   RegionRanges
	CityRanges      RegionRanges
	HighCostRegions map[string]bool
	LowCostRegions  map[string]bool
	Climate         ClimateBands
	FlagURLTemplate string
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var ptBRRegions = map[string]string{
	"Europe":                    "Europa",
	"Asia":                      "Ásia",
	"Africa":                    "África",
	"Americas":                  "Américas",
	"North America":             "América do Norte",
	"South America":             "América do Sul",
	"Central America":           "América Central",
	"Oceania":                   "Oceania",
	"Antarctica":                "Antártida",
	"Polar":                     "Polar",
	"Western Europe":            "Europa Ocidental",
	"Eastern Europe":            "Europa Oriental",
	"Southern Europe":           "Europa Meridional",
	"Northern Europe":           "Europa Setentrional",
	"Western Asia":              "Ásia Ocidental",
	"Eastern Asia":              "Ásia Oriental",
	"Southern Asia":             "Ásia Meridional",
	"South-Eastern Asia":        "Sudeste Asiático",
	"Central Asia":              "Ásia Central",
	"Northern Africa":           "África Setentrional",
	"Western Africa":            "África Ocidental",
	"Eastern Africa":            "África Oriental",
	"Southern Africa":           "África Meridional",
	"Middle Africa":             "África Central",
	"Northern America":          "América do Norte",
	"Caribbean":                 "Caribe",
	"Melanesia":                 "Melanésia",
	"Micronesia":                "Micronésia",
	"Polynesia":                 "Polinésia",
	"Australia and New Zealand": "Austrália e Nova Zelândia",
}

var (
	europeRegions  = []string{"Europe", "Western Europe", "Eastern Europe", "Southern Europe", "Northern Europe"}
	asiaRegions    = []string{"Asia", "Western Asia", "Eastern Asia", "Southern Asia", "South-Eastern Asia", "Central Asia"}
	africaRegions  = []string{"Africa", "Northern Africa", "Western Africa", "Eastern Africa", "Southern Africa", "Middle Africa"}
	americaRegions = []string{"Americas", "North America", "South America", "Central America", "Northern America", "Caribbean"}
)

// DefaultTables returns the built-in lookup data.
func DefaultTables() Tables {
	return Tables{
		RegionNames: map[string]map[string]string{
			"pt-BR": ptBRRegions,
			"pt":    ptBRRegions,
		},
		RegionAliases: map[string][]string{
			"europa":  europeRegions,
			"europe":  europeRegions,
			"asia":    asiaRegions,
			"ásia":    asiaRegions,
			"africa":  africaRegions,
			"áfrica":  africaRegions,
			"america": americaRegions,
			"américa": americaRegions,
		},
		KnownPopulation: map[string]int{
			"tokyo":          37435191,
			"delhi":          29399141,
			"shanghai":       26317104,
			"são paulo":      22043028,
			"mexico city":    21671908,
			"cairo":          20484965,
			"mumbai":         20185064,
			"beijing":        20035455,
			"dhaka":          19578421,
			"osaka":          19222665,
			"new york":       18823000,
			"karachi":        15400000,
			"buenos aires":   15180000,
			"chongqing":      15003000,
			"istanbul":       15029231,
			"kolkata":        14850000,
			"manila":         13482462,
			"lagos":          13463000,
			"rio de janeiro": 13293000,
			"tianjin":        13215000,
			"london":         9648110,
			"paris":          2161000,
			"berlin":         3748148,
			"madrid":         3223334,
			"rome":           2872800,
			"kiev":           2952301,
			"bucharest":      2155240,
			"hamburg":        1899160,
			"warsaw":         1790658,
			"vienna":         1911191,
			"barcelona":      1620343,
			"munich":         1484226,
			"milan":          1378689,
			"prague":         1318982,
			"sofia":          1242568,
			"budapest":       1759407,
			"stockholm":      975551,
			"amsterdam":      873555,
			"lisbon":         544851,
			"dublin":         554554,
			"brussels":       1208542,
			"copenhagen":     602481,
			"helsinki":       648042,
			"oslo":           697010,
			"zurich":         415367,
			"geneva":         201818,
			"athens":         664046,
			"toronto":        2930000,
			"montreal":       1704694,
			"vancouver":      631486,
			"sydney":         5312163,
			"melbourne":      5078193,
			"perth":          2059484,
			"auckland":       1695200,
			"tel aviv":       460613,
			"dubai":          3331420,
			"singapore":      5850342,
			"hong kong":      7482500,
			"kuala lumpur":   1768000,
			"bangkok":        10156000,
			"jakarta":        10562088,
			"seoul":          9720846,
			"bangalore":      12326532,
			"chennai":        10971108,
			"hyderabad":      10004000,
			"pune":           7541946,
			"ahmedabad":      7700000,
			"surat":          6081322,
			"jaipur":         3073350,
			"lucknow":        3245000,
			"kanpur":         3162000,
			"nagpur":         2497777,
			"indore":         2434000,
			"thane":          2078281,
			"bhopal":         2368145,
			"visakhapatnam":  2358412,
			"pimpri":         1729359,
			"patna":          2049156,
		},
		CapitalRanges: RegionRanges{
			ByRegion: map[string]PopulationRange{
				"Western Europe":   {Min: 1_000_000, Max: 4_000_000},
				"Northern America": {Min: 1_000_000, Max: 4_000_000},
				"Eastern Asia":     {Min: 5_000_000, Max: 20_000_000},
				"Southern Asia":    {Min: 5_000_000, Max: 20_000_000},
				"South America":    {Min: 2_000_000, Max: 10_000_000},
				"Eastern Europe":   {Min: 2_000_000, Max: 10_000_000},
			},
			Default: PopulationRange{Min: 500_000, Max: 2_500_000},
		},
		CityRanges: RegionRanges{
			ByRegion: map[string]PopulationRange{
				"Western Europe":   {Min: 100_000, Max: 1_100_000},
				"Northern America": {Min: 100_000, Max: 1_100_000},
				"Eastern Asia":     {Min: 500_000, Max: 5_500_000},
				"Southern Asia":    {Min: 500_000, Max: 5_500_000},
			},
			Default: PopulationRange{Min: 50_000, Max: 550_000},
		},
		HighCostRegions: set("Western Europe", "Northern America", "Oceania", "Australia and New Zealand"),
		LowCostRegions:  set("South-Eastern Asia", "South America", "Eastern Europe", "Central America"),
		Climate:         ClimateBands{ColdAbove: 50, TemperateAbove: 30},
		FlagURLTemplate: "https://flagcdn.com/w320/%s.png",
	}
}
