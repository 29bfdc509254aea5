package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/destinations/internal/cache"
	"github.com/neexbeast/destinations/internal/dataset"
	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/metrics"
)

const (
	defaultMaxCandidates = 500
	defaultWorkers       = 8
	defaultCountryLimit  = 50
	enrichTTL            = time.Hour
)

// DatasetSource provides the reference records.
type DatasetSource interface {
	Countries(ctx context.Context) ([]dataset.Country, error)
	Cities(ctx context.Context) ([]dataset.City, error)
	FindCountryByCode(ctx context.Context, code string) (*dataset.Country, error)
	CitiesByCountry(ctx context.Context, code string, limit int) ([]dataset.City, error)
}

// FavoriteLookup reports which destination ids a user has marked.
type FavoriteLookup interface {
	FavoriteIDs(ctx context.Context, userID string) (map[int]bool, error)
}

type Options struct {
	Cache           cache.Store[destination.Destination]
	Favorites       FavoriteLookup
	Scorer          *destination.Scorer
	MaxCandidates   int
	Workers         int
	NotableCities   []string
	CountryPriority map[string]int
	Logger          *slog.Logger
}

// Processor answers paginated destination queries.
type Processor struct {
	data            DatasetSource
	enricher        *destination.Enricher
	scorer          *destination.Scorer
	cache           cache.Store[destination.Destination]
	favorites       FavoriteLookup
	maxCandidates   int
	workers         int
	notable         map[string]bool
	countryPriority map[string]int
	log             *slog.Logger
}

func NewProcessor(data DatasetSource, enricher *destination.Enricher, opts Options) *Processor {
	p := &Processor{
		data:            data,
		enricher:        enricher,
		scorer:          opts.Scorer,
		cache:           opts.Cache,
		favorites:       opts.Favorites,
		maxCandidates:   opts.MaxCandidates,
		workers:         opts.Workers,
		countryPriority: opts.CountryPriority,
		log:             opts.Logger,
	}
	if p.scorer == nil {
		p.scorer = destination.NewScorer(destination.DefaultScoreTables())
	}
	if p.cache == nil {
		p.cache = cache.NewMemory[destination.Destination](cache.MemoryOptions{Name: "destinations", DefaultTTL: enrichTTL})
	}
	if p.maxCandidates <= 0 {
		p.maxCandidates = defaultMaxCandidates
	}
	if p.workers <= 0 {
		p.workers = defaultWorkers
	}
	if p.countryPriority == nil {
		p.countryPriority = defaultCountryPriority
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	notable := opts.NotableCities
	if notable == nil {
		notable = defaultNotableCities
	}
	p.notable = make(map[string]bool, len(notable))
	for _, n := range notable {
		p.notable[strings.ToLower(n)] = true
	}
	return p
}

// GetPage runs the query pipeline: candidates, enrichment, filters, sort,
// pagination and favorite tagging. When reference data is unavailable it
// returns an empty page together with the error.
func (p *Processor) GetPage(ctx context.Context, req PageRequest) (PageResult[destination.Destination], error) {
	page, size := Clamp(req.Page, req.Size)
	term := SanitizeSearch(req.Search)

	cands, err := p.candidates(ctx, term)
	if err != nil {
		metrics.DatasetFailures.Inc()
		p.log.Error("dataset unavailable", "error", err)
		return Paginate([]destination.Destination{}, page, size), fmt.Errorf("gathering candidates: %w", err)
	}

	dests, err := p.enrichAll(ctx, cands)
	if err != nil {
		return Paginate([]destination.Destination{}, page, size), fmt.Errorf("enriching candidates: %w", err)
	}

	dests = p.filter(dests, req.Filters)
	p.sort(dests, req.Filters.SortBy)

	res := Paginate(dests, page, size)
	res.Items = p.tagFavorites(ctx, req.UserID, res.Items)
	return res, nil
}

// Find returns the enriched destination best matching an exact city name,
// or nil when no city has that name.
func (p *Processor) Find(ctx context.Context, name, userID string) (*destination.Destination, error) {
	name = SanitizeSearch(name)
	if name == "" {
		return nil, nil
	}
	countries, err := p.data.Countries(ctx)
	if err != nil {
		metrics.DatasetFailures.Inc()
		return nil, fmt.Errorf("loading countries: %w", err)
	}
	cities, err := p.data.Cities(ctx)
	if err != nil {
		metrics.DatasetFailures.Inc()
		return nil, fmt.Errorf("loading cities: %w", err)
	}

	c, ok := p.lookupCandidate(name, cities, countryIndex(countries))
	if !ok {
		return nil, nil
	}
	d := p.enrich(ctx, c)
	tagged := p.tagFavorites(ctx, userID, []destination.Destination{d})
	return &tagged[0], nil
}

// ByCountry returns up to limit destinations of the country with the given
// ISO2 or ISO3 code, most popular first. An unknown country yields nil, nil.
func (p *Processor) ByCountry(ctx context.Context, code, userID string, limit int) ([]destination.Destination, error) {
	if limit <= 0 {
		limit = defaultCountryLimit
	}
	country, err := p.data.FindCountryByCode(ctx, code)
	if err != nil {
		metrics.DatasetFailures.Inc()
		return nil, fmt.Errorf("finding country %s: %w", code, err)
	}
	if country == nil {
		return nil, nil
	}
	cities, err := p.data.CitiesByCountry(ctx, country.ISO2, p.maxCandidates)
	if err != nil {
		metrics.DatasetFailures.Inc()
		return nil, fmt.Errorf("loading cities of %s: %w", country.ISO2, err)
	}

	cands := make([]candidate, len(cities))
	for i, c := range cities {
		cands[i] = candidate{city: c, country: *country}
	}
	dests, err := p.enrichAll(ctx, cands)
	if err != nil {
		return nil, fmt.Errorf("enriching cities of %s: %w", country.ISO2, err)
	}

	p.sort(dests, SortPopularity)
	if len(dests) > limit {
		dests = dests[:limit]
	}
	return p.tagFavorites(ctx, userID, dests), nil
}

// ClearCache drops all enriched destinations.
func (p *Processor) ClearCache(ctx context.Context) {
	p.cache.Clear(ctx)
}

func (p *Processor) candidates(ctx context.Context, term string) ([]candidate, error) {
	countries, err := p.data.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading countries: %w", err)
	}
	cities, err := p.data.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cities: %w", err)
	}

	byID := countryIndex(countries)
	if term != "" {
		return p.searchCandidates(term, cities, byID), nil
	}
	return p.defaultCandidates(cities, byID), nil
}

func enrichKey(c candidate) string {
	return fmt.Sprintf("%d-%d", c.city.ID, c.country.ID)
}

func (p *Processor) enrich(ctx context.Context, c candidate) destination.Destination {
	key := enrichKey(c)
	if d, ok := p.cache.Get(ctx, key); ok {
		return d
	}
	d := p.enricher.Enrich(c.city, c.country)
	p.cache.Set(ctx, key, d, 0)
	return d
}

// enrichAll enriches candidates concurrently, preserving candidate order.
func (p *Processor) enrichAll(ctx context.Context, cands []candidate) ([]destination.Destination, error) {
	out := make([]destination.Destination, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, c := range cands {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic enriching %s: %v", c.city.Name, r)
				}
			}()
			out[i] = p.enrich(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) tagFavorites(ctx context.Context, userID string, items []destination.Destination) []destination.Destination {
	if userID == "" || p.favorites == nil || len(items) == 0 {
		return items
	}
	ids, err := p.favorites.FavoriteIDs(ctx, userID)
	if err != nil {
		p.log.Warn("favorites lookup failed", "user_id", userID, "error", err)
		return items
	}
	tagged := make([]destination.Destination, len(items))
	for i, d := range items {
		tagged[i] = d.WithFavorite(ids[d.ID])
	}
	return tagged
}
