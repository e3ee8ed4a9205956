package stats

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	value any
	built time.Time
}

// QueryCache keeps read results for a TTL. Concurrent misses on one key
// share a single load.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewQueryCache creates a cache. A zero ttl disables caching.
func NewQueryCache(ttl time.Duration, clock clockwork.Clock) *QueryCache {
	return &QueryCache{entries: make(map[string]cacheEntry), ttl: ttl, clock: clock}
}

func (c *QueryCache) fresh(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.ttl == 0 || c.clock.Since(entry.built) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

// GetOrLoad returns the cached value of key or stores the result of load.
// Errors are not cached.
func (c *QueryCache) GetOrLoad(key string, load func() (any, error)) (any, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// Double-check after acquiring singleflight lock
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{value: v, built: c.clock.Now()}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Invalidate drops every entry.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func cached[T any](c *QueryCache, key string, load func() (T, error)) (T, error) {
	v, err := c.GetOrLoad(key, func() (any, error) { return load() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
