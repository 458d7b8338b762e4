package cache

import (
	"sync"
	"time"
)

// entry holds a cached value and its absolute expiry instant.
// Entries are immutable once set; expiry is checked lazily on access.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a time-bounded key/value store shared across the research providers.
// Reads do not refresh expiry, the first access at or past expiry evicts the
// entry, and there is no background sweep or size bound. Concurrent writers to
// the same key race benignly: last writer wins and readers always observe a
// complete entry.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates an empty TTL cache
func New[V any]() *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// NewWithClock creates a TTL cache with an injected clock, for tests
func NewWithClock[V any](now func() time.Time) *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

// Get returns the cached value when present and not expired. An expired entry
// is deleted and reported as a miss.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a writer may have refreshed the entry.
		if cur, still := c.entries[key]; still && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the given time to live, replacing any existing entry
func (c *TTL[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
