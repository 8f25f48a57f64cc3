package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Options configures a Cache
type Options struct {
	// TTL applies to Set; zero keeps entries until evicted
	TTL time.Duration
	// SweepEvery is how often expired entries are dropped; zero disables the sweeper
	SweepEvery time.Duration
	// MaxItems bounds the cache; the entry closest to expiry goes first
	MaxItems int
}

// Cache is a concurrency-safe map with per-entry expiry
type Cache[V any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[V]
	ttl      time.Duration
	maxItems int
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache. Call Close to stop the sweeper.
func New[V any](opts Options) *Cache[V] {
	c := &Cache[V]{
		entries:  make(map[string]entry[V]),
		ttl:      opts.TTL,
		maxItems: opts.MaxItems,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if opts.SweepEvery > 0 {
		go c.sweep(opts.SweepEvery)
	}
	return c
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && c.maxItems > 0 && len(c.entries) >= c.maxItems {
		c.evict()
	}
	c.entries[key] = e
}

// Get returns the value under key unless it is missing or expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len counts stored entries, expired ones included until swept
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.dropExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) dropExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

// evict drops the entry that expires soonest; entries without expiry go
// last. Caller holds the lock.
func (c *Cache[V]) evict() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for k, e := range c.entries {
		if !found || (!e.expiresAt.IsZero() && (soonest.IsZero() || e.expiresAt.Before(soonest))) {
			victim, soonest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
