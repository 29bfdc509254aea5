package storage

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName   = "destinations"
	healthCheckPeriod = 30 * time.Second
)

// MigrationPool is the minimal interface required to run migrations.
// *pgxpool.Pool satisfies this interface.
type MigrationPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect opens the favorites pool and verifies it with a ping. An
// application_name set in databaseURL wins over the default.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pgxpool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes every .sql file at the root of migrations in
// lexicographic order, each in its own transaction. It returns the names
// of the files applied; on failure, the ones applied before it.
func RunMigrations(ctx context.Context, pool MigrationPool, migrations fs.FS) ([]string, error) {
	if _, err := fs.Stat(migrations, "."); err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	files, err := fs.Glob(migrations, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	slices.Sort(files)

	applied := make([]string, 0, len(files))
	for _, name := range files {
		if info, err := fs.Stat(migrations, name); err != nil || info.IsDir() {
			continue
		}
		sql, err := fs.ReadFile(migrations, name)
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", name, err)
		}

		err = inTx(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("executing SQL: %w", err)
			}
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("executing migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}

	return applied, nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func inTx(ctx context.Context, pool MigrationPool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
