package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/destinations/internal/dataset"
	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/flights"
	"github.com/neexbeast/destinations/internal/query"
)

const (
	defaultPageSize  = 20
	maxCountryCities = 100
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc       DiscoveryService
	favorites FavoritesRepo
	log       *slog.Logger
}

// NewHandlers constructs Handlers. favorites may be nil when no database is
// configured; the favorites routes then answer 503.
func NewHandlers(svc DiscoveryService, favorites FavoritesRepo, log *slog.Logger) *Handlers {
	return &Handlers{
		svc:       svc,
		favorites: favorites,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestUser is the ?user= value of an authenticated request. Anonymous
// callers cannot read someone else's favorites.
func requestUser(r *http.Request) string {
	if !Authenticated(r.Context()) {
		return ""
	}
	return r.URL.Query().Get("user")
}

// parsePageRequest reads the listing query string. Page and size are
// clamped later; only malformed filters are rejected.
func parsePageRequest(r *http.Request) (query.PageRequest, error) {
	v := r.URL.Query()
	req := query.PageRequest{
		Page:   1,
		Size:   defaultPageSize,
		Search: v.Get("q"),
		UserID: requestUser(r),
	}
	if s := v.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			req.Page = n
		}
	}
	if s := v.Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			req.Size = n
		}
	}

	f := query.FilterSpec{
		Region: v.Get("region"),
		SortBy: query.ParseSortBy(v.Get("sort")),
	}
	if s := v.Get("price"); s != "" {
		tier, ok := destination.ParsePriceTier(s)
		if !ok {
			return req, fmt.Errorf("unknown price tier %q", s)
		}
		f.PriceTier = tier
	}
	if s := v.Get("climate"); s != "" {
		c, ok := destination.ParseClimate(s)
		if !ok {
			return req, fmt.Errorf("unknown climate %q", s)
		}
		f.Climate = c
	}
	for _, bound := range []struct {
		key string
		dst **int
	}{{"pop_min", &f.PopulationMin}, {"pop_max", &f.PopulationMax}} {
		s := v.Get(bound.key)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("invalid %s %q", bound.key, s)
		}
		*bound.dst = &n
	}
	if s := v.Get("activities"); s != "" {
		for _, part := range strings.Split(s, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			a, ok := destination.ParseActivity(part)
			if !ok {
				return req, fmt.Errorf("unknown activity %q", part)
			}
			f.Activities = append(f.Activities, a)
		}
	}
	req.Filters = f
	return req, nil
}

// ListDestinations handles GET /api/v1/destinations.
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.GetPage(r.Context(), req)
	if err != nil {
		if errors.Is(err, dataset.ErrDataUnavailable) {
			h.log.Error("destinations page degraded", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, page)
			return
		}
		h.log.Error("get page failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetDestination handles GET /api/v1/destinations/{name}.
func (h *Handlers) GetDestination(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	d, err := h.svc.FindDestination(r.Context(), name, requestUser(r))
	if err != nil {
		h.log.Error("find destination failed", "name", name, "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "destination lookup unavailable")
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "destination not found")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// CountryCities handles GET /api/v1/countries/{code}/cities.
func (h *Handlers) CountryCities(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxCountryCities {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxCountryCities))
			return
		}
		limit = n
	}

	dests, err := h.svc.CountryDestinations(r.Context(), code, requestUser(r), limit)
	if err != nil {
		h.log.Error("country destinations failed", "code", code, "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "destination lookup unavailable")
		return
	}
	if dests == nil {
		writeError(w, http.StatusNotFound, "country not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"country_code": strings.ToUpper(code),
		"items":        dests,
	})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// EstimateFlight handles GET /api/v1/flights/estimate.
func (h *Handlers) EstimateFlight(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	p := flights.SearchParams{
		Origin:      strings.TrimSpace(v.Get("origin")),
		Destination: strings.TrimSpace(v.Get("destination")),
		Currency:    v.Get("currency"),
	}
	if p.Origin == "" || p.Destination == "" {
		writeError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}

	var err error
	if p.Departure, err = parseDate(v.Get("departure")); err != nil {
		writeError(w, http.StatusBadRequest, "departure must be YYYY-MM-DD")
		return
	}
	if p.Return, err = parseDate(v.Get("return")); err != nil {
		writeError(w, http.StatusBadRequest, "return must be YYYY-MM-DD")
		return
	}
	if s := v.Get("adults"); s != "" {
		if p.Adults, err = strconv.Atoi(s); err != nil || p.Adults < 1 {
			writeError(w, http.StatusBadRequest, "adults must be a positive integer")
			return
		}
	}

	writeJSON(w, http.StatusOK, h.svc.EstimateFlight(r.Context(), p))
}

// FlightDeals handles GET /api/v1/flights/deals/{destination}.
func (h *Handlers) FlightDeals(w http.ResponseWriter, r *http.Request) {
	dest := strings.TrimSpace(chi.URLParam(r, "destination"))
	if dest == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"destination": dest,
		"deals":       h.svc.GetFlightDeals(r.Context(), dest),
	})
}

const maxImageNames = 20

// Images handles GET /api/v1/images?names=Paris,Tokyo.
func (h *Handlers) Images(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, n := range strings.Split(r.URL.Query().Get("names"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}
	if len(names) > maxImageNames {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d names", maxImageNames))
		return
	}

	writeJSON(w, http.StatusOK, h.svc.Images(r.Context(), names))
}

// ClearCache handles DELETE /api/v1/cache.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type addFavoriteRequest struct {
	DestinationID   int    `json:"destination_id"`
	DestinationName string `json:"destination_name"`
}

func (h *Handlers) favoritesEnabled(w http.ResponseWriter) bool {
	if h.favorites == nil {
		writeError(w, http.StatusServiceUnavailable, "favorites are disabled")
		return false
	}
	return true
}

// ListFavorites handles GET /api/v1/users/{userID}/favorites.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	if !h.favoritesEnabled(w) {
		return
	}
	userID := chi.URLParam(r, "userID")

	favs, err := h.favorites.ListFavorites(r.Context(), userID)
	if err != nil {
		h.log.Error("list favorites failed", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, favs)
}

// AddFavorite handles POST /api/v1/users/{userID}/favorites.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	if !h.favoritesEnabled(w) {
		return
	}
	userID := chi.URLParam(r, "userID")

	var body addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DestinationID <= 0 {
		writeError(w, http.StatusBadRequest, "destination_id is required")
		return
	}

	fav, err := h.favorites.AddFavorite(r.Context(), userID, body.DestinationID, body.DestinationName)
	if err != nil {
		h.log.Error("add favorite failed", "user_id", userID, "destination_id", body.DestinationID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store favorite")
		return
	}

	writeJSON(w, http.StatusCreated, fav)
}

func favoriteTarget(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "destinationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "destinationID must be an integer")
		return "", 0, false
	}
	return chi.URLParam(r, "userID"), id, true
}

// GetFavorite handles GET /api/v1/users/{userID}/favorites/{destinationID}.
func (h *Handlers) GetFavorite(w http.ResponseWriter, r *http.Request) {
	if !h.favoritesEnabled(w) {
		return
	}
	userID, id, ok := favoriteTarget(w, r)
	if !ok {
		return
	}

	fav, err := h.favorites.GetFavorite(r.Context(), userID, id)
	if err != nil {
		h.log.Error("get favorite failed", "user_id", userID, "destination_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if fav == nil {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}

	writeJSON(w, http.StatusOK, fav)
}

// RemoveFavorite handles DELETE /api/v1/users/{userID}/favorites/{destinationID}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if !h.favoritesEnabled(w) {
		return
	}
	userID, id, ok := favoriteTarget(w, r)
	if !ok {
		return
	}

	removed, err := h.favorites.RemoveFavorite(r.Context(), userID, id)
	if err != nil {
		h.log.Error("remove favorite failed", "user_id", userID, "destination_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. A nil pinger is reported as "disabled".
func HealthHandlerFunc(db Pinger, redis Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		check := func(name string, p Pinger) string {
			if p == nil {
				return "disabled"
			}
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: ping failed", "service", name, "err", err)
				status = http.StatusServiceUnavailable
				return "error"
			}
			return "ok"
		}
		dbStatus := check("db", db)
		redisStatus := check("redis", redis)

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
