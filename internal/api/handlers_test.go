package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/destinations/internal/api"
	"github.com/neexbeast/destinations/internal/dataset"
	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/discovery"
	"github.com/neexbeast/destinations/internal/flights"
	"github.com/neexbeast/destinations/internal/metrics"
	"github.com/neexbeast/destinations/internal/query"
	"github.com/neexbeast/destinations/internal/storage"
)

// ---- mock implementations ----

type mockService struct {
	getPageFn         func(ctx context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error)
	findDestinationFn func(ctx context.Context, name, userID string) (*destination.Details, error)
	countryFn         func(ctx context.Context, code, userID string, limit int) ([]destination.Destination, error)
	estimateFlightFn  func(ctx context.Context, p flights.SearchParams) discovery.FlightEstimate
	flightDealsFn     func(ctx context.Context, dest string) []flights.Deal
	imagesFn          func(ctx context.Context, names []string) map[string][]destination.Image
	clearCacheFn      func(ctx context.Context)
}

func (m *mockService) GetPage(ctx context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
	return m.getPageFn(ctx, req)
}
func (m *mockService) FindDestination(ctx context.Context, name, userID string) (*destination.Details, error) {
	return m.findDestinationFn(ctx, name, userID)
}
func (m *mockService) CountryDestinations(ctx context.Context, code, userID string, limit int) ([]destination.Destination, error) {
	return m.countryFn(ctx, code, userID, limit)
}
func (m *mockService) EstimateFlight(ctx context.Context, p flights.SearchParams) discovery.FlightEstimate {
	return m.estimateFlightFn(ctx, p)
}
func (m *mockService) GetFlightDeals(ctx context.Context, dest string) []flights.Deal {
	return m.flightDealsFn(ctx, dest)
}
func (m *mockService) Images(ctx context.Context, names []string) map[string][]destination.Image {
	return m.imagesFn(ctx, names)
}
func (m *mockService) ClearCache(ctx context.Context) {
	m.clearCacheFn(ctx)
}

type mockFavorites struct {
	addFn    func(ctx context.Context, userID string, destinationID int, name string) (*storage.Favorite, error)
	removeFn func(ctx context.Context, userID string, destinationID int) (bool, error)
	getFn    func(ctx context.Context, userID string, destinationID int) (*storage.Favorite, error)
	listFn   func(ctx context.Context, userID string) ([]storage.Favorite, error)
}

func (m *mockFavorites) AddFavorite(ctx context.Context, userID string, destinationID int, name string) (*storage.Favorite, error) {
	return m.addFn(ctx, userID, destinationID, name)
}
func (m *mockFavorites) RemoveFavorite(ctx context.Context, userID string, destinationID int) (bool, error) {
	return m.removeFn(ctx, userID, destinationID)
}
func (m *mockFavorites) GetFavorite(ctx context.Context, userID string, destinationID int) (*storage.Favorite, error) {
	return m.getFn(ctx, userID, destinationID)
}
func (m *mockFavorites) ListFavorites(ctx context.Context, userID string) ([]storage.Favorite, error) {
	return m.listFn(ctx, userID)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func sampleDest() destination.Destination {
	return destination.Destination{
		ID:          41001,
		Name:        "Paris",
		CountryName: "France",
		Region:      "Europa",
		Population:  2161000,
		PriceTier:   destination.PriceHigh,
		Climate:     destination.ClimateTemperate,
		Activities:  []destination.Activity{destination.ActivityCity, destination.ActivityCulture},
		IsCapital:   true,
	}
}

const testToken = "secret-token"

type routerDeps struct {
	svc       *mockService
	favorites api.FavoritesRepo
	db, redis api.Pinger
	metrics   http.Handler
}

func buildRouter(d routerDeps) http.Handler {
	if d.svc == nil {
		d.svc = &mockService{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(d.svc, d.favorites, log)
	return api.NewRouter(handlers, api.RouterConfig{
		Token:   testToken,
		DB:      d.db,
		Redis:   d.redis,
		Metrics: d.metrics,
	}, log)
}

func do(router http.Handler, method, target, body string, auth bool) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- GET /api/v1/destinations ----

func TestListDestinations_ParsesQuery(t *testing.T) {
	var got query.PageRequest
	svc := &mockService{
		getPageFn: func(_ context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
			got = req
			return query.PageResult[destination.Destination]{
				Items:       []destination.Destination{sampleDest()},
				CurrentPage: 2,
				TotalPages:  3,
				TotalItems:  21,
			}, nil
		},
	}

	router := buildRouter(routerDeps{svc: svc})
	w := do(router, http.MethodGet,
		"/api/v1/destinations?page=2&size=10&q=par&region=europa&price=alto&climate=temperate&pop_min=1000&pop_max=5000000&activities=culture,praia&sort=nome&user=u1",
		"", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.Size)
	assert.Equal(t, "par", got.Search)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "europa", got.Filters.Region)
	assert.Equal(t, destination.PriceHigh, got.Filters.PriceTier)
	assert.Equal(t, destination.ClimateTemperate, got.Filters.Climate)
	require.NotNil(t, got.Filters.PopulationMin)
	assert.Equal(t, 1000, *got.Filters.PopulationMin)
	require.NotNil(t, got.Filters.PopulationMax)
	assert.Equal(t, 5000000, *got.Filters.PopulationMax)
	assert.Equal(t, []destination.Activity{destination.ActivityCulture, destination.ActivityBeach}, got.Filters.Activities)
	assert.Equal(t, query.SortName, got.Filters.SortBy)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(21), body["total_items"])
	assert.Equal(t, float64(2), body["current_page"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Paris", items[0].(map[string]any)["name"])
}

func TestListDestinations_Defaults(t *testing.T) {
	var got query.PageRequest
	svc := &mockService{
		getPageFn: func(_ context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
			got = req
			return query.PageResult[destination.Destination]{Items: []destination.Destination{}}, nil
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/destinations?page=abc", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 20, got.Size)
	assert.Nil(t, got.Filters.PopulationMin)
	assert.Equal(t, query.SortPopularity, got.Filters.SortBy)
}

func TestListDestinations_BadFilters(t *testing.T) {
	svc := &mockService{
		getPageFn: func(_ context.Context, _ query.PageRequest) (query.PageResult[destination.Destination], error) {
			t.Fatal("service should not be called for malformed filters")
			return query.PageResult[destination.Destination]{}, nil
		},
	}
	router := buildRouter(routerDeps{svc: svc})

	for _, qs := range []string{"price=cheap", "climate=arctic", "pop_min=lots", "activities=skydiving"} {
		t.Run(qs, func(t *testing.T) {
			w := do(router, http.MethodGet, "/api/v1/destinations?"+qs, "", false)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListDestinations_DatasetUnavailable(t *testing.T) {
	svc := &mockService{
		getPageFn: func(_ context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
			return query.PageResult[destination.Destination]{Items: []destination.Destination{}, CurrentPage: 1},
				fmt.Errorf("getting destinations page: %w", dataset.ErrDataUnavailable)
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/destinations", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body query.PageResult[destination.Destination]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Items)
	assert.Equal(t, 0, body.TotalPages)
}

// ---- GET /api/v1/destinations/{name} ----

func TestGetDestination_Found(t *testing.T) {
	var gotName, gotUser string
	svc := &mockService{
		findDestinationFn: func(_ context.Context, name, userID string) (*destination.Details, error) {
			gotName, gotUser = name, userID
			return &destination.Details{
				Destination: sampleDest(),
				Images:      []destination.Image{{ID: 7, URL: "https://images.example/paris.jpg"}},
			}, nil
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/destinations/Rio%20de%20Janeiro?user=u1", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rio de Janeiro", gotName)
	assert.Equal(t, "u1", gotUser)

	var got destination.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Paris", got.Name)
	require.Len(t, got.Images, 1)
}

func TestPublicRoutes_IgnoreUserWithoutToken(t *testing.T) {
	users := make(chan string, 2)
	svc := &mockService{
		getPageFn: func(_ context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error) {
			users <- req.UserID
			return query.PageResult[destination.Destination]{Items: []destination.Destination{}}, nil
		},
		findDestinationFn: func(_ context.Context, _, userID string) (*destination.Details, error) {
			users <- userID
			return &destination.Details{Destination: sampleDest()}, nil
		},
	}
	router := buildRouter(routerDeps{svc: svc})

	for _, authHeader := range []string{"", "Bearer wrong-token", testToken} {
		for _, target := range []string{"/api/v1/destinations?user=u1", "/api/v1/destinations/Paris?user=u1"} {
			t.Run(authHeader+" "+target, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, target, nil)
				if authHeader != "" {
					req.Header.Set("Authorization", authHeader)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, "", <-users)
			})
		}
	}
}

// ---- GET /api/v1/countries/{code}/cities ----

func TestCountryCities(t *testing.T) {
	var gotCode, gotUser string
	var gotLimit int
	svc := &mockService{
		countryFn: func(_ context.Context, code, userID string, limit int) ([]destination.Destination, error) {
			gotCode, gotUser, gotLimit = code, userID, limit
			return []destination.Destination{sampleDest()}, nil
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/countries/fr/cities?limit=5&user=u1", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fr", gotCode)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, 5, gotLimit)

	var body struct {
		CountryCode string                    `json:"country_code"`
		Items       []destination.Destination `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FR", body.CountryCode)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Paris", body.Items[0].Name)
}

func TestCountryCities_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		dests  []destination.Destination
		err    error
		want   int
	}{
		{"unknown country", "/api/v1/countries/XX/cities", nil, nil, http.StatusNotFound},
		{"known country without cities", "/api/v1/countries/VA/cities", []destination.Destination{}, nil, http.StatusOK},
		{"bad limit", "/api/v1/countries/FR/cities?limit=0", nil, nil, http.StatusBadRequest},
		{"limit too large", "/api/v1/countries/FR/cities?limit=101", nil, nil, http.StatusBadRequest},
		{"dataset down", "/api/v1/countries/FR/cities", nil, fmt.Errorf("listing: %w", dataset.ErrDataUnavailable), http.StatusServiceUnavailable},
		{"other failure", "/api/v1/countries/FR/cities", nil, fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{
				countryFn: func(context.Context, string, string, int) ([]destination.Destination, error) {
					return tt.dests, tt.err
				},
			}
			w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, tt.target, "", false)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetDestination_NotFound(t *testing.T) {
	svc := &mockService{
		findDestinationFn: func(_ context.Context, _, _ string) (*destination.Details, error) { return nil, nil },
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/destinations/Atlantis", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDestination_DatasetDown(t *testing.T) {
	svc := &mockService{
		findDestinationFn: func(_ context.Context, _, _ string) (*destination.Details, error) {
			return nil, fmt.Errorf("finding destination: %w", dataset.ErrDataUnavailable)
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/destinations/Paris", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---- flights ----

func TestEstimateFlight_Success(t *testing.T) {
	var got flights.SearchParams
	svc := &mockService{
		estimateFlightFn: func(_ context.Context, p flights.SearchParams) discovery.FlightEstimate {
			got = p
			return discovery.FlightEstimate{Origin: p.Origin, Destination: p.Destination, Price: 1234, Currency: "BRL", BookingURL: "https://example"}
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet,
		"/api/v1/flights/estimate?origin=S%C3%A3o+Paulo&destination=Lisbon&departure=2025-03-01&return=2025-03-15&adults=2", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "São Paulo", got.Origin)
	assert.Equal(t, "Lisbon", got.Destination)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got.Departure)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), got.Return)
	assert.Equal(t, 2, got.Adults)

	var body discovery.FlightEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1234, body.Price)
}

func TestEstimateFlight_BadRequest(t *testing.T) {
	svc := &mockService{
		estimateFlightFn: func(_ context.Context, _ flights.SearchParams) discovery.FlightEstimate {
			t.Fatal("service should not be called")
			return discovery.FlightEstimate{}
		},
	}
	router := buildRouter(routerDeps{svc: svc})

	for _, qs := range []string{
		"origin=Rio",
		"destination=Rio",
		"origin=Rio&destination=Lima&departure=01/03/2025",
		"origin=Rio&destination=Lima&adults=0",
	} {
		t.Run(qs, func(t *testing.T) {
			w := do(router, http.MethodGet, "/api/v1/flights/estimate?"+qs, "", false)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestFlightDeals(t *testing.T) {
	svc := &mockService{
		flightDealsFn: func(_ context.Context, dest string) []flights.Deal {
			assert.Equal(t, "Paris", dest)
			return []flights.Deal{{Price: 960, Origin: "Salvador"}}
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/flights/deals/Paris", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Destination string         `json:"destination"`
		Deals       []flights.Deal `json:"deals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Paris", body.Destination)
	assert.Equal(t, []flights.Deal{{Price: 960, Origin: "Salvador"}}, body.Deals)
}

// ---- GET /api/v1/images ----

func TestImages(t *testing.T) {
	var got []string
	svc := &mockService{
		imagesFn: func(_ context.Context, names []string) map[string][]destination.Image {
			got = names
			return map[string][]destination.Image{
				"Paris": {{ID: 7, URL: "https://img/paris"}},
				"Tokyo": {},
			}
		},
	}

	w := do(buildRouter(routerDeps{svc: svc}), http.MethodGet, "/api/v1/images?names=Paris,%20Tokyo,,", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Paris", "Tokyo"}, got)
	var body map[string][]destination.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "https://img/paris", body["Paris"][0].URL)
	assert.Empty(t, body["Tokyo"])
}

func TestImages_BadRequest(t *testing.T) {
	router := buildRouter(routerDeps{})

	w := do(router, http.MethodGet, "/api/v1/images", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	names := make([]string, 21)
	for i := range names {
		names[i] = fmt.Sprintf("city%d", i)
	}
	w = do(router, http.MethodGet, "/api/v1/images?names="+strings.Join(names, ","), "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- DELETE /api/v1/cache ----

func TestClearCache_RequiresAuth(t *testing.T) {
	cleared := 0
	svc := &mockService{clearCacheFn: func(context.Context) { cleared++ }}
	router := buildRouter(routerDeps{svc: svc})

	w := do(router, http.MethodDelete, "/api/v1/cache", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, cleared)

	w = do(router, http.MethodDelete, "/api/v1/cache", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, cleared)
}

// ---- favorites ----

func TestFavorites_Disabled(t *testing.T) {
	router := buildRouter(routerDeps{})

	w := do(router, http.MethodGet, "/api/v1/users/u1/favorites", "", true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAddFavorite_Success(t *testing.T) {
	id := uuid.New()
	favs := &mockFavorites{
		addFn: func(_ context.Context, userID string, destinationID int, name string) (*storage.Favorite, error) {
			return &storage.Favorite{ID: id, UserID: userID, DestinationID: destinationID, DestinationName: name}, nil
		},
	}

	w := do(buildRouter(routerDeps{favorites: favs}), http.MethodPost, "/api/v1/users/u1/favorites",
		`{"destination_id": 41001, "destination_name": "Paris"}`, true)

	require.Equal(t, http.StatusCreated, w.Code)
	var got storage.Favorite
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 41001, got.DestinationID)
}

func TestAddFavorite_BadBody(t *testing.T) {
	favs := &mockFavorites{
		addFn: func(context.Context, string, int, string) (*storage.Favorite, error) {
			t.Fatal("repo should not be called")
			return nil, nil
		},
	}
	router := buildRouter(routerDeps{favorites: favs})

	for _, body := range []string{`not json`, `{"destination_name": "Paris"}`} {
		w := do(router, http.MethodPost, "/api/v1/users/u1/favorites", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAddFavorite_RepoError(t *testing.T) {
	favs := &mockFavorites{
		addFn: func(context.Context, string, int, string) (*storage.Favorite, error) {
			return nil, fmt.Errorf("db down")
		},
	}

	w := do(buildRouter(routerDeps{favorites: favs}), http.MethodPost, "/api/v1/users/u1/favorites", `{"destination_id": 1}`, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListFavorites(t *testing.T) {
	favs := &mockFavorites{
		listFn: func(_ context.Context, userID string) ([]storage.Favorite, error) {
			return []storage.Favorite{{UserID: userID, DestinationID: 41001, DestinationName: "Paris"}}, nil
		},
	}

	w := do(buildRouter(routerDeps{favorites: favs}), http.MethodGet, "/api/v1/users/u1/favorites", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	var got []storage.Favorite
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].DestinationName)
}

func TestRemoveFavorite(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		removed bool
		err     error
		want    int
	}{
		{"removed", "/api/v1/users/u1/favorites/41001", true, nil, http.StatusNoContent},
		{"missing", "/api/v1/users/u1/favorites/41001", false, nil, http.StatusNotFound},
		{"repo error", "/api/v1/users/u1/favorites/41001", false, fmt.Errorf("db down"), http.StatusInternalServerError},
		{"bad id", "/api/v1/users/u1/favorites/paris", false, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favs := &mockFavorites{
				removeFn: func(_ context.Context, userID string, id int) (bool, error) {
					assert.Equal(t, "u1", userID)
					assert.Equal(t, 41001, id)
					return tt.removed, tt.err
				},
			}
			w := do(buildRouter(routerDeps{favorites: favs}), http.MethodDelete, tt.target, "", true)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetFavorite(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fav    *storage.Favorite
		err    error
		want   int
	}{
		{"found", "/api/v1/users/u1/favorites/41001", &storage.Favorite{UserID: "u1", DestinationID: 41001, DestinationName: "Paris"}, nil, http.StatusOK},
		{"missing", "/api/v1/users/u1/favorites/41001", nil, nil, http.StatusNotFound},
		{"repo error", "/api/v1/users/u1/favorites/41001", nil, fmt.Errorf("db down"), http.StatusInternalServerError},
		{"bad id", "/api/v1/users/u1/favorites/paris", nil, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favs := &mockFavorites{
				getFn: func(_ context.Context, userID string, id int) (*storage.Favorite, error) {
					assert.Equal(t, "u1", userID)
					assert.Equal(t, 41001, id)
					return tt.fav, tt.err
				},
			}
			w := do(buildRouter(routerDeps{favorites: favs}), http.MethodGet, tt.target, "", true)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				var got storage.Favorite
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "Paris", got.DestinationName)
			}
		})
	}
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	w := do(buildRouter(routerDeps{db: &mockPinger{}, redis: &mockPinger{}}), http.MethodGet, "/api/v1/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
}

func TestHealth_NothingConfigured(t *testing.T) {
	w := do(buildRouter(routerDeps{}), http.MethodGet, "/api/v1/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "disabled", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestHealth_DBDown(t *testing.T) {
	w := do(buildRouter(routerDeps{db: &mockPinger{err: fmt.Errorf("connection refused")}}), http.MethodGet, "/api/v1/health", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "error", body["db"])
}

func TestHealth_RedisDown(t *testing.T) {
	w := do(buildRouter(routerDeps{redis: &mockPinger{err: fmt.Errorf("timeout")}}), http.MethodGet, "/api/v1/health", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["redis"])
}

// ---- auth ----

func TestBearerAuth_WrongToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()
	buildRouter(routerDeps{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_MissingBearerPrefix(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil)
	req.Header.Set("Authorization", testToken)
	w := httptest.NewRecorder()
	buildRouter(routerDeps{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_EmptyTokenRejectsEverything(t *testing.T) {
	h := api.BearerAuth("")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ---- GET /metrics ----

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := do(buildRouter(routerDeps{metrics: metrics.Handler(reg)}), http.MethodGet, "/metrics", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_requests_total 1")
}

// ---- rate limiting ----

func TestRateLimit(t *testing.T) {
	svc := &mockService{
		flightDealsFn: func(context.Context, string) []flights.Deal { return nil },
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := api.NewRouter(api.NewHandlers(svc, nil, log), api.RouterConfig{Token: testToken, RequestsPerMinute: 2}, log)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(router, http.MethodGet, "/api/v1/flights/deals/Paris", "", false).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
