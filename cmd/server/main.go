package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/destinations/internal/api"
	"github.com/neexbeast/destinations/internal/cache"
	"github.com/neexbeast/destinations/internal/config"
	"github.com/neexbeast/destinations/internal/dataset"
	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/discovery"
	"github.com/neexbeast/destinations/internal/flights"
	"github.com/neexbeast/destinations/internal/metrics"
	"github.com/neexbeast/destinations/internal/query"
	"github.com/neexbeast/destinations/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	// Reference data loads in the background; queries wait for it.
	loader := dataset.NewFromDir(cfg.Data.Dir)
	go warmDataset(loader, cfg.Data.LoadTimeout, log)

	// Connect to Redis when configured; fall back to in-process caches.
	var redisClient *redis.Client
	var redisPinger api.Pinger
	if cfg.Cache.Backend == config.CacheRedis {
		redisClient, err = cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, using memory cache", "err", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			redisPinger = &redisPingerAdapter{client: redisClient}
		}
	}
	stores := storeFactory{redis: redisClient, maxEntries: cfg.Cache.MaxEntries, log: log}

	// Connect to PostgreSQL when favorites are enabled.
	var favRepo api.FavoritesRepo
	var favLookup query.FavoriteLookup
	var dbPinger api.Pinger
	if cfg.FavoritesEnabled() {
		pool, err := storage.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		applied, err := storage.RunMigrations(ctx, pool, os.DirFS(cfg.Storage.MigrationsDir))
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied", "files", applied)

		repo := storage.NewRepository(pool)
		favRepo, favLookup = repo, repo
		dbPinger = &pgxPoolPinger{pool: pool}
	}

	// Wire dependencies.
	enricher := destination.NewEnricher(cfg.Data.Locale, destination.DefaultTables())
	processor := query.NewProcessor(loader, enricher, query.Options{
		Cache:         newStore[destination.Destination](stores, "destinations", cfg.Cache.TTL),
		Favorites:     favLookup,
		MaxCandidates: cfg.Data.MaxCandidates,
		Logger:        log,
	})
	estimator := flights.NewEstimator(loader, flights.Options{
		Places: newStore[flights.Place](stores, "places", flights.PlaceTTL),
		Prices: newStore[flights.Quote](stores, "prices", flights.PriceTTL),
		Logger: log,
	})
	images := destination.NewImageFetcher(cfg.Images.PexelsAPIKey, newStore[[]destination.Image](stores, "images", destination.ImageTTL), log)
	svc := discovery.New(processor, estimator, images, log)
	handlers := api.NewHandlers(svc, favRepo, log)

	router := api.NewRouter(handlers, api.RouterConfig{
		Token:             cfg.Server.BearerToken,
		DB:                dbPinger,
		Redis:             redisPinger,
		Metrics:           metrics.Handler(metrics.NewRegistry()),
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Server.Port, "cache", cfg.Cache.Backend, "favorites", cfg.FavoritesEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

func warmDataset(loader *dataset.Loader, timeout time.Duration, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	countries, err := loader.Countries(ctx)
	if err != nil {
		log.Error("dataset unavailable", "err", err)
		return
	}
	cities, err := loader.Cities(ctx)
	if err != nil {
		log.Error("dataset unavailable", "err", err)
		return
	}
	log.Info("dataset loaded", "countries", len(countries), "cities", len(cities), "took", time.Since(start))
}

// storeFactory builds caches on Redis when a client is present, in memory otherwise.
type storeFactory struct {
	redis      *redis.Client
	maxEntries int
	log        *slog.Logger
}

func newStore[T any](f storeFactory, name string, ttl time.Duration) cache.Store[T] {
	if f.redis != nil {
		return cache.NewRedis[T](f.redis, name, ttl, f.log)
	}
	return cache.NewMemory[T](cache.MemoryOptions{Name: name, MaxEntries: f.maxEntries, DefaultTTL: ttl})
}

// pgxPoolPinger adapts pgxpool.Pool to the api.Pinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.Pinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var (
	_ api.DiscoveryService = (*discovery.Service)(nil)
	_ api.FavoritesRepo    = (*storage.Repository)(nil)
	_ query.FavoriteLookup = (*storage.Repository)(nil)
	_ query.DatasetSource  = (*dataset.Loader)(nil)
	_ flights.CityFinder   = (*dataset.Loader)(nil)
)
