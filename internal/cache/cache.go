// Package cache provides a small in-memory key/value cache with per-entry
// TTL and lazy eviction. It is used to memoize expensive aggregate queries
// (question counts, topic lists, progress stats) for a short window instead
// of hitting the database on every request.
package cache

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"
)

// DefaultTTL applies when a caller passes a non-positive TTL.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Fetcher loads a value on cache miss.
type Fetcher func(ctx context.Context) (any, error)

// Stats describes the cache contents at a point in time. Expired entries
// are those past their deadline but not yet lazily evicted by a Get.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// Cache is a process-wide shared store; construct one in main and pass it
// by reference to whatever needs it. Writes are last-write-wins and
// GetOrFetch performs no single-flight deduplication: two concurrent
// misses on the same key both run their fetcher and both store. That is
// acceptable for this workload (idempotent reads) and is a known
// limitation, not a bug to lock away.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable so tests can advance time without sleeping.
	now func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores value under key, overwriting any previous entry. A
// non-positive ttl is clamped to DefaultTTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get returns the value for key, or nil and false when the key is absent
// or expired. An expired entry is deleted on the way out.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a Set may have raced us.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Invalidate removes exactly one key. No-op when absent.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePattern removes every key matching pattern, interpreted as a
// regular expression; a plain substring like "questions:" works because an
// unanchored literal is a valid pattern. Returns the compile error for a
// malformed pattern without touching any entry.
func (c *Cache) InvalidatePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear removes all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// GetOrFetch returns the cached value for key when present and unexpired;
// otherwise it runs fetcher, stores the result under key with ttl, and
// returns it. A fetcher error propagates and nothing is cached.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetcher Fetcher) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	slog.Debug("cache miss", "key", key)
	v, err := fetcher(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// GetStats counts entries without evicting anything, so Expired reflects
// stale entries still awaiting a lazy Get.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	s := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			s.Active++
		} else {
			s.Expired++
		}
	}
	return s
}
