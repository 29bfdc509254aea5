package flights

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/neexbeast/destinations/internal/cache"
	"github.com/neexbeast/destinations/internal/dataset"
	"github.com/neexbeast/destinations/internal/metrics"
)

const (
	// PlaceTTL is how long resolved place names stay cached.
	PlaceTTL = 24 * time.Hour
	// PriceTTL is how long coordinate-based quotes stay cached.
	PriceTTL = 6 * time.Hour
)

// CityFinder resolves place names. Satisfied by *dataset.Loader.
type CityFinder interface {
	SearchCitiesByName(ctx context.Context, term string, limit int) ([]dataset.City, error)
	FindCountryByID(ctx context.Context, id int) (*dataset.Country, error)
}

// RandSource supplies uniform values in [0, 1) for display variance.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Place is a resolved place name. Found is false when the name could not be
// resolved to coordinates.
type Place struct {
	Found     bool    `json:"found"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	Subregion string  `json:"subregion"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Quote is a deterministic pre-variance price.
type Quote struct {
	Price    float64 `json:"price"`
	Fallback bool    `json:"fallback"`
}

// Options configures an Estimator. Zero values select defaults.
type Options struct {
	Tables *Tables
	Rand   RandSource
	Now    func() time.Time
	Places cache.Store[Place]
	Prices cache.Store[Quote]
	Logger *slog.Logger
}

// Estimator estimates round-trip prices between named places.
type Estimator struct {
	finder CityFinder
	t      Tables
	routes map[string]float64
	rand   RandSource
	now    func() time.Time
	places cache.Store[Place]
	prices cache.Store[Quote]
	log    *slog.Logger
}

// NewEstimator constructs an Estimator resolving names through finder.
func NewEstimator(finder CityFinder, opts Options) *Estimator {
	e := &Estimator{
		finder: finder,
		t:      DefaultTables(),
		rand:   opts.Rand,
		now:    opts.Now,
		places: opts.Places,
		prices: opts.Prices,
		log:    opts.Logger,
	}
	if opts.Tables != nil {
		e.t = *opts.Tables
	}
	if e.rand == nil {
		e.rand = globalRand{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.places == nil {
		e.places = cache.NewMemory[Place](cache.MemoryOptions{Name: "places", DefaultTTL: PlaceTTL})
	}
	if e.prices == nil {
		e.prices = cache.NewMemory[Quote](cache.MemoryOptions{Name: "prices", DefaultTTL: PriceTTL})
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	e.routes = make(map[string]float64, len(e.t.PopularRoutes))
	for k, v := range e.t.PopularRoutes {
		e.routes[normalize(k)] = v
	}
	return e
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Estimate returns a positive round-trip price for origin to destination,
// with display variance applied. It never fails.
func (e *Estimator) Estimate(ctx context.Context, origin, destination string) int {
	return e.Price(e.Quote(ctx, origin, destination))
}

// Price applies display variance to q. Fallback quotes vary more.
func (e *Estimator) Price(q Quote) int {
	variance := e.t.Variance
	if q.Fallback {
		variance = e.t.FallbackVariance
	}
	return e.vary(q.Price, variance)
}

// Quote returns the deterministic pre-variance price for the current month.
// Coordinate-based quotes are cached per (origin, destination, month).
func (e *Estimator) Quote(ctx context.Context, origin, destination string) Quote {
	month := int(e.now().Month()) - 1
	key := fmt.Sprintf("%s|%s|%d", normalize(origin), normalize(destination), month)
	if q, ok := e.prices.Get(ctx, key); ok {
		return q
	}

	o := e.Resolve(ctx, origin)
	d := e.Resolve(ctx, destination)
	if !o.Found || !d.Found {
		metrics.EstimationFallbacks.Inc()
		e.log.Debug("flight estimate fell back to name heuristic",
			"origin", origin, "destination", destination,
			"origin_found", o.Found, "destination_found", d.Found)
		return Quote{Price: e.t.Fallback.basePrice(origin, destination), Fallback: true}
	}

	dist := Distance(o.Latitude, o.Longitude, d.Latitude, d.Longitude)
	price := e.distancePrice(dist) *
		e.RegionFactor(o, d) *
		e.RouteFactor(origin, destination) *
		e.seasonFactor(month)

	q := Quote{Price: math.Max(math.Round(price), 1)}
	e.prices.Set(ctx, key, q, PriceTTL)
	return q
}

// Resolve maps a place name to coordinates through the dataset. Names of the
// form "City, Country" are matched against the country too.
func (e *Estimator) Resolve(ctx context.Context, name string) Place {
	key := normalize(name)
	if key == "" {
		return Place{}
	}
	if p, ok := e.places.Get(ctx, key); ok {
		return p
	}

	p, err := e.resolve(ctx, name)
	if err != nil {
		e.log.Warn("resolving place failed", "name", name, "err", err)
		return Place{}
	}
	e.places.Set(ctx, key, p, PlaceTTL)
	return p
}

var placePrefixes = func() []string {
	var out []string
	for _, p := range []string{"região metropolitana", "microrregião", "município", "cidade"} {
		for _, a := range []string{"de", "da", "do"} {
			out = append(out, p+" "+a+" ")
		}
	}
	return append(out, "grande ")
}()

// normalizePlace strips administrative prefixes such as "Região
// Metropolitana de" or "Grande" that geocoders put in front of city names.
func normalizePlace(name string) string {
	name = strings.TrimSpace(name)
	for _, p := range placePrefixes {
		if len(name) > len(p) && strings.EqualFold(name[:len(p)], p) {
			return strings.TrimSpace(name[len(p):])
		}
	}
	return name
}

func (e *Estimator) resolve(ctx context.Context, name string) (Place, error) {
	city, countryHint, _ := strings.Cut(name, ",")
	city = strings.TrimSpace(city)
	countryHint = strings.TrimSpace(countryHint)

	terms := []string{normalizePlace(city)}
	if terms[0] != city {
		terms = append(terms, city)
	}
	for _, term := range terms {
		p, err := e.match(ctx, term, countryHint)
		if err != nil || p.Found {
			return p, err
		}
	}
	return Place{}, nil
}

func (e *Estimator) match(ctx context.Context, city, countryHint string) (Place, error) {
	matches, err := e.finder.SearchCitiesByName(ctx, city, 50)
	if err != nil {
		return Place{}, fmt.Errorf("searching cities for %s: %w", city, err)
	}

	var best *Place
	for _, c := range matches {
		if !strings.EqualFold(c.Name, city) {
			break
		}
		country, err := e.finder.FindCountryByID(ctx, c.CountryID)
		if err != nil {
			return Place{}, fmt.Errorf("finding country %d: %w", c.CountryID, err)
		}
		if country == nil {
			continue
		}
		if countryHint != "" && !matchesCountry(*country, countryHint) {
			continue
		}

		p := Place{
			Found:     true,
			Name:      c.Name,
			Country:   country.Name,
			Region:    country.Region,
			Subregion: country.Subregion,
			Latitude:  float64(c.Latitude),
			Longitude: float64(c.Longitude),
		}
		if c.IsCapitalOf(*country) {
			return p, nil
		}
		if best == nil {
			best = &p
		}
	}
	if best == nil {
		return Place{}, nil
	}
	return *best, nil
}

func matchesCountry(c dataset.Country, hint string) bool {
	return strings.EqualFold(c.Name, hint) ||
		strings.EqualFold(c.ISO2, hint) ||
		strings.EqualFold(c.ISO3, hint)
}

func (e *Estimator) distancePrice(km float64) float64 {
	tiers := e.t.DistanceTiers
	for _, tier := range tiers {
		if km <= tier.MaxKm {
			return tier.Price
		}
	}
	if len(tiers) == 0 {
		return e.t.ExtraPer1000Km * km / 1000
	}
	last := tiers[len(tiers)-1]
	return last.Price + (km-last.MaxKm)/1000*e.t.ExtraPer1000Km
}

// PricingRegion maps a place to a pricing region: the country table first,
// then the dataset region.
func (e *Estimator) PricingRegion(p Place) string {
	if r, ok := e.t.CountryRegions[p.Country]; ok {
		return r
	}
	switch p.Region {
	case "Europe", "Asia", "Africa", "Oceania":
		return p.Region
	case "Americas":
		if p.Subregion == "South America" {
			return "South America"
		}
		if p.Subregion != "" {
			return "North America"
		}
	}
	return e.t.DefaultRegion
}

// RegionFactor averages the origin and destination region multipliers.
func (e *Estimator) RegionFactor(o, d Place) float64 {
	return (e.regionMultiplier(e.PricingRegion(o)) + e.regionMultiplier(e.PricingRegion(d))) / 2
}

func (e *Estimator) regionMultiplier(region string) float64 {
	if f, ok := e.t.RegionFactors[region]; ok {
		return f
	}
	return 1
}

// RouteFactor is the known-route adjustment, tried in both directions.
func (e *Estimator) RouteFactor(origin, destination string) float64 {
	o, d := normalize(origin), normalize(destination)
	if f, ok := e.routes[o+"-"+d]; ok {
		return f
	}
	if f, ok := e.routes[d+"-"+o]; ok {
		return f
	}
	return 1
}

func (e *Estimator) seasonFactor(month int) float64 {
	if f := e.t.SeasonFactors[month%12]; f > 0 {
		return f
	}
	return 1
}

func (e *Estimator) vary(price, fraction float64) int {
	r := e.rand.Float64()
	v := math.Round(price * (1 + (r*2-1)*fraction))
	if v < 1 {
		return 1
	}
	return int(v)
}

// ClearCache drops cached places and quotes.
func (e *Estimator) ClearCache(ctx context.Context) {
	e.places.Clear(ctx)
	e.prices.Clear(ctx)
}
