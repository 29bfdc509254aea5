package destination

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/destinations/internal/cache"
	"github.com/neexbeast/destinations/internal/metrics"
)

const (
	// ImageTTL is how long provider photos stay cached.
	ImageTTL = 24 * time.Hour
	// LocalImageTTL is how long the local fallback stays cached before the
	// provider is tried again.
	LocalImageTTL = time.Hour

	imagesPerCity   = 3
	fetchAllWorkers = 4
)

// imageSearcher is the interface satisfied by PexelsClient.
type imageSearcher interface {
	Search(ctx context.Context, city string, count int) ([]Image, error)
}

// ImageFetcher looks up destination photos, caching results for 24h.
// Without an API key, or when the provider fails or finds nothing, it
// serves LocalImages instead and caches those for an hour.
type ImageFetcher struct {
	search imageSearcher
	cache  cache.Store[[]Image]
	log    *slog.Logger
}

// NewImageFetcher constructs an ImageFetcher backed by Pexels. An empty
// apiKey yields a fetcher that only serves local images.
func NewImageFetcher(apiKey string, store cache.Store[[]Image], log *slog.Logger) *ImageFetcher {
	var s imageSearcher
	if apiKey != "" {
		s = NewPexelsClient(apiKey)
	}
	return NewImageFetcherWithClient(s, store, log)
}

// NewImageFetcherWithClient constructs an ImageFetcher with an injectable client (used in tests).
func NewImageFetcherWithClient(s imageSearcher, store cache.Store[[]Image], log *slog.Logger) *ImageFetcher {
	if store == nil {
		store = cache.NewMemory[[]Image](cache.MemoryOptions{Name: "images", DefaultTTL: ImageTTL})
	}
	if log == nil {
		log = slog.Default()
	}
	return &ImageFetcher{search: s, cache: store, log: log}
}

func imageKey(city string) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(strings.TrimSpace(city)), imagesPerCity)
}

func localKey(city, flagURL string) string {
	return imageKey(city) + ":local:" + flagURL
}

// Fetch returns photos of city. It never returns an empty slice for a
// non-blank city.
func (f *ImageFetcher) Fetch(ctx context.Context, city string) []Image {
	return f.fetch(ctx, city, "", "")
}

// FetchDestination is Fetch for d's name, with d's country flag added to the
// local fallback.
func (f *ImageFetcher) FetchDestination(ctx context.Context, d Destination) []Image {
	return f.fetch(ctx, d.Name, d.CountryName, d.Country.FlagURL)
}

func (f *ImageFetcher) fetch(ctx context.Context, city, country, flagURL string) []Image {
	city = strings.TrimSpace(city)
	if city == "" {
		return []Image{}
	}

	key := imageKey(city)
	if imgs, ok := f.cache.Get(ctx, key); ok {
		return imgs
	}
	local := localKey(city, flagURL)
	if imgs, ok := f.cache.Get(ctx, local); ok {
		return imgs
	}

	if f.search != nil {
		imgs, err := f.search.Search(ctx, city, imagesPerCity)
		metrics.ObserveExternal("pexels", err)
		switch {
		case err != nil:
			f.log.Warn("image lookup failed, using local images", "city", city, "err", err)
		case len(imgs) > 0:
			f.cache.Set(ctx, key, imgs, ImageTTL)
			return imgs
		}
	}

	imgs := LocalImages(city, country, flagURL)
	f.cache.Set(ctx, local, imgs, LocalImageTTL)
	return imgs
}

// FetchAll fetches photos for several cities in parallel.
// The result has an entry for every requested city.
func (f *ImageFetcher) FetchAll(ctx context.Context, cities []string) map[string][]Image {
	out := make(map[string][]Image, len(cities))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchAllWorkers)

	for _, city := range cities {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					f.log.Error("image fetch panicked", "city", city, "recover", r)
					mu.Lock()
					out[city] = LocalImages(city, "", "")
					mu.Unlock()
				}
			}()
			imgs := f.Fetch(gCtx, city)
			mu.Lock()
			out[city] = imgs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// ClearCache drops all cached photos.
func (f *ImageFetcher) ClearCache(ctx context.Context) {
	f.cache.Clear(ctx)
}
