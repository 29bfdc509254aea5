package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/destinations/internal/metrics"
)

const opTimeout = 2 * time.Second

// Redis stores JSON-encoded values in Redis under a key prefix.
// Redis errors are logged and reported as misses.
type Redis[T any] struct {
	client     *redis.Client
	name       string
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewRedis constructs a Redis store whose keys live under "<prefix>:".
func NewRedis[T any](client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Redis[T] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis[T]{
		client:     client,
		name:       "redis:" + prefix,
		prefix:     prefix + ":",
		defaultTTL: ttl,
		logger:     logger,
	}
}

// key normalises user-facing keys so lookups are case-insensitive.
func (c *Redis[T]) key(k string) string {
	return c.prefix + strings.ToLower(strings.TrimSpace(k))
}

// Get retrieves the value stored under k.
func (c *Redis[T]) Get(ctx context.Context, k string) (T, bool) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "cache", c.name, "key", k, "error", err)
		}
		metrics.ObserveCache(c.name, "miss")
		return zero, false
	}

	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		c.logger.Warn("unmarshaling cached value", "cache", c.name, "key", k, "error", err)
		metrics.ObserveCache(c.name, "miss")
		return zero, false
	}

	metrics.ObserveCache(c.name, "hit")
	return v, true
}

// Set stores value under k for ttl (the store default when ttl <= 0).
func (c *Redis[T]) Set(ctx context.Context, k string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	b, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("marshaling cache value", "cache", c.name, "key", k, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(k), b, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "cache", c.name, "key", k, "error", err)
		return
	}
	metrics.ObserveCache(c.name, "set")
}

// Remove deletes k. Missing keys are not an error.
func (c *Redis[T]) Remove(ctx context.Context, k string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(k)).Err(); err != nil {
		c.logger.Warn("cache delete failed", "cache", c.name, "key", k, "error", err)
		return
	}
	metrics.ObserveCache(c.name, "del")
}

// Clear deletes every key under the store's prefix.
func (c *Redis[T]) Clear(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*opTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			c.del(ctx, batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", "cache", c.name, "error", err)
	}
	if len(batch) > 0 {
		c.del(ctx, batch)
	}
	metrics.ObserveCache(c.name, "clear")
}

func (c *Redis[T]) del(ctx context.Context, keys []string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache clear failed", "cache", c.name, "error", err)
	}
}
