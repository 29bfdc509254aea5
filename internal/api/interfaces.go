package api

import (
	"context"

	"github.com/neexbeast/destinations/internal/destination"
	"github.com/neexbeast/destinations/internal/discovery"
	"github.com/neexbeast/destinations/internal/flights"
	"github.com/neexbeast/destinations/internal/query"
	"github.com/neexbeast/destinations/internal/storage"
)

// DiscoveryService defines the destination operations needed by handlers.
type DiscoveryService interface {
	GetPage(ctx context.Context, req query.PageRequest) (query.PageResult[destination.Destination], error)
	FindDestination(ctx context.Context, name, userID string) (*destination.Details, error)
	CountryDestinations(ctx context.Context, code, userID string, limit int) ([]destination.Destination, error)
	EstimateFlight(ctx context.Context, p flights.SearchParams) discovery.FlightEstimate
	GetFlightDeals(ctx context.Context, dest string) []flights.Deal
	Images(ctx context.Context, names []string) map[string][]destination.Image
	ClearCache(ctx context.Context)
}

// FavoritesRepo defines the storage operations needed by handlers.
type FavoritesRepo interface {
	AddFavorite(ctx context.Context, userID string, destinationID int, name string) (*storage.Favorite, error)
	RemoveFavorite(ctx context.Context, userID string, destinationID int) (bool, error)
	GetFavorite(ctx context.Context, userID string, destinationID int) (*storage.Favorite, error)
	ListFavorites(ctx context.Context, userID string) ([]storage.Favorite, error)
}
