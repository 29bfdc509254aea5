package cache

import (
	"context"
	"sync"
	"time"

	"github.com/neexbeast/destinations/internal/metrics"
)

const defaultTTL = time.Hour

// Store is a key/value cache with per-entry expiry.
// Implementations never fail: an unreachable backend behaves like an empty cache.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T, ttl time.Duration)
	Remove(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// MemoryOptions configures a Memory store.
type MemoryOptions struct {
	// Name labels the store in metrics.
	Name string
	// MaxEntries bounds the store; zero means unbounded.
	MaxEntries int
	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

type entry[T any] struct {
	value    T
	storedAt time.Time
	ttl      time.Duration
	seq      uint64
}

type slot struct {
	key string
	seq uint64
}

// Memory is a process-local TTL cache. Expired entries are dropped lazily on
// access; when MaxEntries is reached the oldest inserted key is evicted.
type Memory[T any] struct {
	mu         sync.Mutex
	name       string
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time
	entries    map[string]entry[T]
	order      []slot
	nextSeq    uint64
}

// NewMemory constructs an empty Memory store.
func NewMemory[T any](opts MemoryOptions) *Memory[T] {
	m := &Memory[T]{
		name:       opts.Name,
		maxEntries: opts.MaxEntries,
		defaultTTL: opts.DefaultTTL,
		now:        opts.Now,
		entries:    make(map[string]entry[T]),
	}
	if m.name == "" {
		m.name = "memory"
	}
	if m.defaultTTL <= 0 {
		m.defaultTTL = defaultTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (e entry[T]) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Get returns the value stored under key, or false when absent or expired.
func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		metrics.ObserveCache(m.name, "miss")
		var zero T
		return zero, false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		metrics.ObserveCache(m.name, "miss")
		var zero T
		return zero, false
	}
	metrics.ObserveCache(m.name, "hit")
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (m *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if prev, ok := m.entries[key]; ok {
		// Overwrites keep their insertion slot.
		m.entries[key] = entry[T]{value: value, storedAt: now, ttl: ttl, seq: prev.seq}
		metrics.ObserveCache(m.name, "set")
		return
	}

	if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.purgeExpired(now)
		for len(m.entries) >= m.maxEntries {
			m.evictOldest()
		}
	}

	m.nextSeq++
	m.entries[key] = entry[T]{value: value, storedAt: now, ttl: ttl, seq: m.nextSeq}
	m.order = append(m.order, slot{key: key, seq: m.nextSeq})
	m.compact()
	metrics.ObserveCache(m.name, "set")
}

// Remove deletes key if present.
func (m *Memory[T]) Remove(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		metrics.ObserveCache(m.name, "del")
	}
}

// Clear drops every entry. Safe to call at any time.
func (m *Memory[T]) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]entry[T])
	m.order = nil
	metrics.ObserveCache(m.name, "clear")
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory[T]) purgeExpired(now time.Time) {
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

// evictOldest pops slots until it finds one that still owns its key.
func (m *Memory[T]) evictOldest() {
	for len(m.order) > 0 {
		s := m.order[0]
		m.order = m.order[1:]
		if e, ok := m.entries[s.key]; ok && e.seq == s.seq {
			delete(m.entries, s.key)
			metrics.ObserveCache(m.name, "evict")
			return
		}
	}
}

// compact drops stale slots left behind by Remove and expiry.
func (m *Memory[T]) compact() {
	if len(m.order) <= 2*len(m.entries)+16 {
		return
	}
	live := make([]slot, 0, len(m.entries))
	for _, s := range m.order {
		if e, ok := m.entries[s.key]; ok && e.seq == s.seq {
			live = append(live, s)
		}
	}
	m.order = live
}
