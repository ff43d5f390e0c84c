// Package cache provides a generic time-bounded cache for artifacts
// derived from resources, such as staged GPU uploads. Entries are
// rebuilt when the source's modification counter advances and evicted
// once nothing has touched them for a configured lifetime.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultLifetime is the idle time in seconds an entry survives
// without being accessed.
const DefaultLifetime = 20.0

// entry pairs a cached value with the source version observed when it
// was built and the idle time it has left.
type entry[V any] struct {
	value      V
	version    uint64
	timeToLive float64
}

// Temporary is a cache whose entries expire when unused. Writes
// (GetOrInsert, Update, Remove, Clear) belong to a single owning
// goroutine, typically the render loop; the short-held internal lock
// exists so that that owner can run concurrently with background
// readers of previously returned values, not to serialize multiple
// writers.
type Temporary[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[V]
	lifetime float64

	hits      atomic.Uint64
	misses    atomic.Uint64
	rebuilds  atomic.Uint64
	evictions atomic.Uint64
}

// NewTemporary creates a cache whose entries expire after lifetime
// seconds without access. A non-positive lifetime selects
// DefaultLifetime.
func NewTemporary[K comparable, V any](lifetime float64) *Temporary[K, V] {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Temporary[K, V]{
		entries:  make(map[K]*entry[V]),
		lifetime: lifetime,
	}
}

// GetOrInsert returns the cached value for key, building it with build
// when the key is absent or when the stored version no longer matches
// the given source version. A version mismatch rebuilds the entry in
// place: the old value stays readable until the new one is committed,
// the entry never becomes observable as missing. Any access resets the
// entry's idle timer.
//
// A build error leaves the cache unchanged, so the next access retries.
func (c *Temporary[K, V]) GetOrInsert(key K, version uint64, build func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.version == version {
		e.timeToLive = c.lifetime
		value := e.value
		c.mu.Unlock()
		c.hits.Add(1)
		return value, nil
	}
	c.mu.Unlock()

	// The build runs without the lock. Only the owning goroutine
	// writes, so nobody can sneak in a conflicting build meanwhile.
	value, err := build()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.version = version
		e.timeToLive = c.lifetime
		c.rebuilds.Add(1)
	} else {
		c.entries[key] = &entry[V]{value: value, version: version, timeToLive: c.lifetime}
		c.misses.Add(1)
	}
	c.mu.Unlock()
	return value, nil
}

// Get returns the cached value for key when it is present and its
// stored version matches, without building anything.
func (c *Temporary[K, V]) Get(key K, version uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.version == version {
		e.timeToLive = c.lifetime
		return e.value, true
	}
	var zero V
	return zero, false
}

// Update advances time by dt seconds and evicts every entry that has
// been idle longer than the cache lifetime. It is called once per tick
// by the owning goroutine.
func (c *Temporary[K, V]) Update(dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		e.timeToLive -= dt
		if e.timeToLive <= 0 {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
}

// Remove drops the entry for key, used when the source resource itself
// is unloaded.
func (c *Temporary[K, V]) Remove(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Temporary[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]*entry[V])
	c.mu.Unlock()
}

// AliveCount returns the number of entries currently cached.
func (c *Temporary[K, V]) AliveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats are counters accumulated since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Rebuilds  uint64
	Evictions uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Temporary[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Rebuilds:  c.rebuilds.Load(),
		Evictions: c.evictions.Load(),
	}
}
