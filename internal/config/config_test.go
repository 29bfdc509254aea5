package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "BEARER_TOKEN", "DATA_DIR", "LOCALE", "MAX_CANDIDATES", "DATASET_TIMEOUT",
	"CACHE_BACKEND", "REDIS_URL", "CACHE_TTL", "CACHE_MAX_ENTRIES",
	"DATABASE_URL", "MIGRATIONS_DIR", "PEXELS_API_KEY", "RATE_LIMIT_PER_MINUTE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("Missing bearer token", func(t *testing.T) {
		clearEnv(t)

		_, err := Load()
		require.ErrorIs(t, err, ErrMissingBearerToken)
	})

	t.Run("Default values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BEARER_TOKEN", "tok")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 60, cfg.Server.RequestsPerMinute)
		assert.Equal(t, "data", cfg.Data.Dir)
		assert.Equal(t, "pt-BR", cfg.Data.Locale)
		assert.Equal(t, 500, cfg.Data.MaxCandidates)
		assert.Equal(t, 10*time.Second, cfg.Data.LoadTimeout)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 5000, cfg.Cache.MaxEntries)
		assert.Equal(t, "migrations", cfg.Storage.MigrationsDir)
		assert.False(t, cfg.FavoritesEnabled())
		assert.Empty(t, cfg.Images.PexelsAPIKey)
	})

	t.Run("Custom environment variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BEARER_TOKEN", "tok")
		t.Setenv("PORT", "9090")
		t.Setenv("LOCALE", "en")
		t.Setenv("CACHE_BACKEND", "REDIS")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("CACHE_TTL", "15m")
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
		t.Setenv("PEXELS_API_KEY", "px")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 120, cfg.Server.RequestsPerMinute)
		assert.Equal(t, "en", cfg.Data.Locale)
		assert.Equal(t, CacheRedis, cfg.Cache.Backend)
		assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
		assert.True(t, cfg.FavoritesEnabled())
		assert.Equal(t, "px", cfg.Images.PexelsAPIKey)
	})

	t.Run("Redis backend without URL falls back to memory", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BEARER_TOKEN", "tok")
		t.Setenv("CACHE_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	})

	t.Run("Invalid values fall back to defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BEARER_TOKEN", "tok")
		t.Setenv("CACHE_MAX_ENTRIES", "not-a-number")
		t.Setenv("MAX_CANDIDATES", "-3")
		t.Setenv("CACHE_TTL", "soon")
		t.Setenv("CACHE_BACKEND", "memcached")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 5000, cfg.Cache.MaxEntries)
		assert.Equal(t, 500, cfg.Data.MaxCandidates)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	})
}
