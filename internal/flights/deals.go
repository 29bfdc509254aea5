package flights

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const dealWorkers = 4

// Deal is a discounted fare from Origin.
type Deal struct {
	Price  int    `json:"price"`
	Origin string `json:"origin"`
}

// Deals estimates fares to destination from the configured origins, applies a
// route-popularity discount and returns the cheapest, ascending by price.
func (e *Estimator) Deals(ctx context.Context, destination string) []Deal {
	origins := make([]string, 0, len(e.t.DealOrigins))
	for _, o := range e.t.DealOrigins {
		if !strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(destination)) {
			origins = append(origins, o)
		}
	}

	results := make([]*Deal, len(origins))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(dealWorkers)

	for i, origin := range origins {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("deal estimate panicked", "origin", origin, "destination", destination, "recover", r)
				}
			}()
			price := e.Estimate(gCtx, origin, destination)
			discount := e.discount(e.RouteFactor(origin, destination))
			results[i] = &Deal{
				Price:  int(math.Max(math.Round(float64(price)*discount), 1)),
				Origin: origin,
			}
			return nil
		})
	}
	_ = g.Wait()

	deals := make([]Deal, 0, len(results))
	for _, d := range results {
		if d != nil {
			deals = append(deals, *d)
		}
	}
	sort.SliceStable(deals, func(i, j int) bool { return deals[i].Price < deals[j].Price })

	n := e.t.DealCount
	if n <= 0 {
		n = 3
	}
	if len(deals) > n {
		deals = deals[:n]
	}
	return deals
}

func (e *Estimator) discount(routeFactor float64) float64 {
	switch {
	case routeFactor <= 0.95:
		return e.t.DiscountFactors[2]
	case routeFactor <= 1.0:
		return e.t.DiscountFactors[1]
	default:
		return e.t.DiscountFactors[0]
	}
}

// SearchParams describes a flight search link.
type SearchParams struct {
	Origin      string
	Destination string
	Departure   time.Time
	Return      time.Time
	Adults      int
	Currency    string
}

const googleFlightsURL = "https://www.google.com/travel/flights"

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SearchURL builds a Google Flights search link.
func SearchURL(p SearchParams) string {
	parts := []string{
		"q=flights+from+" + encodeComponent(p.Origin) + "+to+" + encodeComponent(p.Destination),
	}
	if !p.Departure.IsZero() {
		parts = append(parts, "tfs="+p.Departure.Format(time.DateOnly))
		if !p.Return.IsZero() {
			parts = append(parts, "tfd="+p.Return.Format(time.DateOnly))
		}
	}
	if p.Adults > 1 {
		parts = append(parts, "tbs=pt:"+strconv.Itoa(p.Adults))
	}
	if p.Currency != "" {
		parts = append(parts, "curr="+encodeComponent(p.Currency))
	}
	return googleFlightsURL + "?" + strings.Join(parts, "&")
}
