package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Favorite is a destination a user has bookmarked.
type Favorite struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	DestinationID   int       `json:"destination_id"`
	DestinationName string    `json:"destination_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// Repository stores user favorites.
type Repository struct {
	q     Querier
	newID func() uuid.UUID
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool, newID: uuid.New}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q, newID: uuid.New}
}

// AddFavorite records destinationID as a favorite of userID. Adding an
// existing favorite refreshes its name and returns the stored row.
func (r *Repository) AddFavorite(ctx context.Context, userID string, destinationID int, name string) (*Favorite, error) {
	const q = `
		INSERT INTO favorites (id, user_id, destination_id, destination_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, destination_id) DO UPDATE
		SET destination_name = EXCLUDED.destination_name
		RETURNING id, created_at
	`

	f := Favorite{UserID: userID, DestinationID: destinationID, DestinationName: name}
	if err := r.q.QueryRow(ctx, q, r.newID(), userID, destinationID, name).Scan(&f.ID, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("adding favorite %d for user %s: %w", destinationID, userID, err)
	}
	return &f, nil
}

// RemoveFavorite deletes a favorite. It reports whether a row was removed.
func (r *Repository) RemoveFavorite(ctx context.Context, userID string, destinationID int) (bool, error) {
	const q = `DELETE FROM favorites WHERE user_id = $1 AND destination_id = $2`

	tag, err := r.q.Exec(ctx, q, userID, destinationID)
	if err != nil {
		return false, fmt.Errorf("removing favorite %d for user %s: %w", destinationID, userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetFavorite returns one favorite, or nil, nil when it does not exist.
func (r *Repository) GetFavorite(ctx context.Context, userID string, destinationID int) (*Favorite, error) {
	const q = `
		SELECT id, user_id, destination_id, destination_name, created_at
		FROM favorites
		WHERE user_id = $1 AND destination_id = $2
	`

	var f Favorite
	err := r.q.QueryRow(ctx, q, userID, destinationID).Scan(
		&f.ID,
		&f.UserID,
		&f.DestinationID,
		&f.DestinationName,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying favorite %d for user %s: %w", destinationID, userID, err)
	}
	return &f, nil
}

// ListFavorites returns the user's favorites, newest first.
func (r *Repository) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	const q = `
		SELECT id, user_id, destination_id, destination_name, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, destination_id
	`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	results := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.DestinationID,
			&f.DestinationName,
			&f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning favorite row: %w", err)
		}
		results = append(results, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorite rows: %w", err)
	}

	return results, nil
}

// FavoriteIDs returns the set of destination ids the user has favorited.
func (r *Repository) FavoriteIDs(ctx context.Context, userID string) (map[int]bool, error) {
	const q = `SELECT destination_id FROM favorites WHERE user_id = $1`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorite ids for user %s: %w", userID, err)
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite id: %w", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorite ids: %w", err)
	}

	return ids, nil
}
