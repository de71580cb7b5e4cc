package dispatch

import (
	"reflect"
	"sync"
)

// Cache memoizes one Dispatcher per event type for the lifetime of the bus.
// Entries are never evicted: a handler set, once classified, is fixed.
// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.RWMutex
	dispatchers map[reflect.Type]*Dispatcher
}

// NewCache creates an empty dispatcher cache.
func NewCache() *Cache {
	return &Cache{
		dispatchers: make(map[reflect.Type]*Dispatcher),
	}
}

// GetOrCreate returns the dispatcher for eventType, building it with build
// on the first call for that type. When racing publishes miss the cache for
// the same unseen type, build runs exactly once and every caller observes
// the same dispatcher. A build error is returned without populating the
// entry, so a later call retries.
func (c *Cache) GetOrCreate(eventType reflect.Type, build func(reflect.Type) (*Dispatcher, error)) (*Dispatcher, error) {
	c.mu.RLock()
	d, ok := c.dispatchers[eventType]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check: another publisher may have built the entry while we
	// waited for the write lock.
	if d, ok := c.dispatchers[eventType]; ok {
		return d, nil
	}

	d, err := build(eventType)
	if err != nil {
		return nil, err
	}
	c.dispatchers[eventType] = d
	return d, nil
}

// Get returns the cached dispatcher for eventType, if one exists.
func (c *Cache) Get(eventType reflect.Type) (*Dispatcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.dispatchers[eventType]
	return d, ok
}

// Len returns the number of cached dispatchers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.dispatchers)
}
