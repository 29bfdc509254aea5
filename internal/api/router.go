package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RouterConfig carries the collaborators of NewRouter beyond the handlers.
type RouterConfig struct {
	Token   string
	DB      Pinger
	Redis   Pinger
	Metrics http.Handler
	// RequestsPerMinute per client IP; zero means 60.
	RequestsPerMinute int
}

// NewRouter builds and returns the Chi router with all routes configured.
// Read routes and health are public; cache and favorites routes require
// bearer auth. Public routes only honour ?user= for authenticated callers.
func NewRouter(handlers *Handlers, cfg RouterConfig, log *slog.Logger) *chi.Mux {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 60
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(limit, time.Minute))
		r.Use(IdentifyBearer(cfg.Token))

		r.Get("/health", HealthHandlerFunc(cfg.DB, cfg.Redis, log))

		r.Get("/destinations", handlers.ListDestinations)
		r.Get("/destinations/{name}", handlers.GetDestination)
		r.Get("/countries/{code}/cities", handlers.CountryCities)
		r.Get("/flights/estimate", handlers.EstimateFlight)
		r.Get("/flights/deals/{destination}", handlers.FlightDeals)
		r.Get("/images", handlers.Images)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.Token))
			r.Delete("/cache", handlers.ClearCache)
			r.Get("/users/{userID}/favorites", handlers.ListFavorites)
			r.Post("/users/{userID}/favorites", handlers.AddFavorite)
			r.Get("/users/{userID}/favorites/{destinationID}", handlers.GetFavorite)
			r.Delete("/users/{userID}/favorites/{destinationID}", handlers.RemoveFavorite)
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
