package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CacheBackend selects where cached destinations and places live.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// ErrMissingBearerToken is returned by Load when BEARER_TOKEN is unset.
var ErrMissingBearerToken = errors.New("BEARER_TOKEN is required")

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Cache   CacheConfig
	Storage StorageConfig
	Images  ImagesConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port              string
	BearerToken       string
	RequestsPerMinute int
}

// DataConfig holds reference dataset settings
type DataConfig struct {
	Dir           string
	Locale        string
	MaxCandidates int
	LoadTimeout   time.Duration
}

// CacheConfig holds cache settings
type CacheConfig struct {
	Backend    CacheBackend
	RedisURL   string
	TTL        time.Duration
	MaxEntries int
}

// StorageConfig holds the favorites database settings.
// An empty DatabaseURL disables favorites.
type StorageConfig struct {
	DatabaseURL   string
	MigrationsDir string
}

// ImagesConfig holds image provider settings.
// An empty PexelsAPIKey disables images.
type ImagesConfig struct {
	PexelsAPIKey string
}

// FavoritesEnabled reports whether a favorites database is configured.
func (c *Config) FavoritesEnabled() bool {
	return c.Storage.DatabaseURL != ""
}

// Load loads configuration from environment variables, reading .env first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	backend := CacheBackend(strings.ToLower(getEnv("CACHE_BACKEND", string(CacheMemory))))
	if backend != CacheMemory && backend != CacheRedis {
		backend = CacheMemory
	}
	redisURL := getEnv("REDIS_URL", "")
	if redisURL == "" {
		backend = CacheMemory
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			BearerToken:       os.Getenv("BEARER_TOKEN"),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Data: DataConfig{
			Dir:           getEnv("DATA_DIR", "data"),
			Locale:        getEnv("LOCALE", "pt-BR"),
			MaxCandidates: getEnvAsInt("MAX_CANDIDATES", 500),
			LoadTimeout:   getEnvAsDuration("DATASET_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			Backend:    backend,
			RedisURL:   redisURL,
			TTL:        getEnvAsDuration("CACHE_TTL", time.Hour),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 5000),
		},
		Storage: StorageConfig{
			DatabaseURL:   getEnv("DATABASE_URL", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Images: ImagesConfig{
			PexelsAPIKey: getEnv("PEXELS_API_KEY", ""),
		},
	}

	if cfg.Server.BearerToken == "" {
		return nil, ErrMissingBearerToken
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
