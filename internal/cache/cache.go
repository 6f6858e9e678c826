// Package cache keeps recently fetched upstream payloads in a bounded LRU.
//
// Freshness is measured from the payload's own timestamp rather than the time
// it was stored, so a forecast whose current conditions are already old is
// refetched even if it was just downloaded.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type entry struct {
	value any
	asOf  time.Time
}

// Cache is an LRU with a maximum payload age.
type Cache struct {
	mu     sync.Mutex
	items  *lru.Cache
	maxAge time.Duration
	now    func() time.Time
}

// New creates a Cache holding up to size entries no older than maxAge.
// A non-positive maxAge disables expiry.
func New(size int, maxAge time.Duration) (*Cache, error) {
	items, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{items: items, maxAge: maxAge, now: time.Now}, nil
}

// Get returns the value stored under key if it is still fresh. Stale entries are evicted.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if c.maxAge > 0 && c.now().Sub(e.asOf) > c.maxAge {
		c.items.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key, stamped with the time the payload describes.
func (c *Cache) Put(key string, value any, asOf time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Add(key, entry{value: value, asOf: asOf})
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	return c.items.Len()
}
