package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Store caches JSON-encodable values by key. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get decodes the cached value into dst and reports whether it was present
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set caches value under key for the store's TTL
	Set(ctx context.Context, key string, value any) error
	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string) error
}

// Item represents a cached item with expiration
type Item struct {
	Value      []byte
	Expiration int64
}

// Expired checks if the cache item has expired at now (unix nanoseconds)
func (item Item) Expired(now int64) bool {
	if item.Expiration == 0 {
		return false
	}
	return now > item.Expiration
}

// Options configures a MemoryCache
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	Clock           clockwork.Clock
}

// MemoryCache is a thread-safe in-process Store with expiration
type MemoryCache struct {
	items    map[string]Item
	mu       sync.RWMutex
	ttl      time.Duration
	maxItems int
	clock    clockwork.Clock
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryCache creates a cache and, when CleanupInterval > 0, a janitor
// goroutine that lives until Close
func NewMemoryCache(opts Options) *MemoryCache {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	c := &MemoryCache{
		items:    make(map[string]Item),
		ttl:      opts.TTL,
		maxItems: opts.MaxItems,
		clock:    opts.Clock,
	}

	if opts.CleanupInterval > 0 {
		c.stop = make(chan struct{})
		c.done = make(chan struct{})
		go c.startCleanupTimer(opts.CleanupInterval)
	}

	return c
}

// Get implements Store
func (c *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found || item.Expired(c.clock.Now().UnixNano()) {
		return false, nil
	}

	if err := json.Unmarshal(item.Value, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Store
func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var exp int64
	if c.ttl > 0 {
		exp = c.clock.Now().Add(c.ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[key] = Item{Value: data, Expiration: exp}
	return nil
}

// Delete implements Store
func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

// Count returns the number of items in the cache (including expired items)
func (c *MemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the janitor goroutine
func (c *MemoryCache) Close() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop = nil
}

func (c *MemoryCache) startCleanupTimer(interval time.Duration) {
	defer close(c.done)

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now().UnixNano()
	for k, v := range c.items {
		if v.Expired(now) {
			delete(c.items, k)
		}
	}
}

// evictOldest drops the entry closest to expiry; called with the lock held
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime int64

	first := true
	for k, v := range c.items {
		if first || v.Expiration < oldestTime {
			oldestKey = k
			oldestTime = v.Expiration
			first = false
		}
	}

	if !first {
		delete(c.items, oldestKey)
	}
}
