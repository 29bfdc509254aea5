// Package discovery is the facade the HTTP layer talks to. It ties the query
// processor, the flight estimator and the image fetcher together.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/flights"
	"github.com/neexbeast/destinations/internal/query"
)

const (
	// Currency of every estimate.
	Currency = "BRL"
	// BRLPerUSD converts the estimator's USD fares to Currency.
	BRLPerUSD = 5
)

// Clearer is any cache the service can flush.
type Clearer interface {
	ClearCache(ctx context.Context)
}

// FlightEstimate is a priced route with a booking search link.
type FlightEstimate struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Price       int    `json:"price"`
	Currency    string `json:"currency"`
	Estimated   bool   `json:"estimated"`
	BookingURL  string `json:"booking_url"`
}

// Service exposes the destination discovery operations.
type Service struct {
	processor *query.Processor
	estimator *flights.Estimator
	images    *destination.ImageFetcher
	extra     []Clearer
	log       *slog.Logger
}

// New builds a Service. extra caches are flushed together with the built-in ones.
func New(processor *query.Processor, estimator *flights.Estimator, images *destination.ImageFetcher, log *slog.Logger, extra ...Clearer) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		processor: processor,
		estimator: estimator,
		images:    images,
		extra:     extra,
		log:       log,
	}
}

// GetPage returns one page of destinations.
func (s *Service) GetPage(ctx context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
	res, err := s.processor.GetPage(ctx, req)
	if err != nil {
		return res, fmt.Errorf("getting destinations page: %w", err)
	}
	return res, nil
}

// EstimateFlightPrice returns the estimated fare from origin to destination, in BRL.
func (s *Service) EstimateFlightPrice(ctx context.Context, origin, dest string) int {
	return s.estimator.Estimate(ctx, origin, dest) * BRLPerUSD
}

// EstimateFlight prices a route and attaches a booking search link.
func (s *Service) EstimateFlight(ctx context.Context, p flights.SearchParams) FlightEstimate {
	q := s.estimator.Quote(ctx, p.Origin, p.Destination)
	if p.Currency == "" {
		p.Currency = Currency
	}
	return FlightEstimate{
		Origin:      p.Origin,
		Destination: p.Destination,
		Price:       s.estimator.Price(q) * BRLPerUSD,
		Currency:    Currency,
		Estimated:   q.Fallback,
		BookingURL:  flights.SearchURL(p),
	}
}

// GetFlightDeals returns the three cheapest deals to dest, priced in BRL.
func (s *Service) GetFlightDeals(ctx context.Context, dest string) []flights.Deal {
	deals := s.estimator.Deals(ctx, dest)
	for i := range deals {
		deals[i].Price *= BRLPerUSD
	}
	return deals
}

// FindDestination returns a single destination with photos, or nil when no
// city has that name.
func (s *Service) FindDestination(ctx context.Context, name, userID string) (*destination.Details, error) {
	d, err := s.processor.Find(ctx, name, userID)
	if err != nil {
		return nil, fmt.Errorf("finding destination %s: %w", name, err)
	}
	if d == nil {
		return nil, nil
	}
	return &destination.Details{
		Destination: *d,
		Rating:      destination.Stars(*d),
		Images:      s.images.FetchDestination(ctx, *d),
	}, nil
}

// CountryDestinations lists the most popular destinations of a country, or
// returns nil when the code matches no country.
func (s *Service) CountryDestinations(ctx context.Context, code, userID string, limit int) ([]destination.Destination, error) {
	dests, err := s.processor.ByCountry(ctx, code, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing destinations of %s: %w", code, err)
	}
	return dests, nil
}

// Images fetches photos for several destinations at once.
func (s *Service) Images(ctx context.Context, names []string) map[string][]destination.Image {
	uniq := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		uniq = append(uniq, n)
	}
	return s.images.FetchAll(ctx, uniq)
}

// ClearCache flushes every cache. Calling it repeatedly is harmless.
func (s *Service) ClearCache(ctx context.Context) {
	s.processor.ClearCache(ctx)
	s.estimator.ClearCache(ctx)
	s.images.ClearCache(ctx)
	for _, c := range s.extra {
		c.ClearCache(ctx)
	}
	s.log.Info("caches cleared", "stores", 3+len(s.extra))
}
