// Package cache provides a generic, thread-safe LRU cache. The
// publisher uses it to keep value set expansions across passes.
package cache

import (
	"container/list"
	"sync"
)

// Cache is a generic thread-safe LRU cache. When it is full, the least
// recently used entry is evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[K, V]
	order    *list.List
	capacity int
}

// entry holds a cached value and its position in the LRU list.
type entry[K comparable, V any] struct {
	value   V
	element *list.Element
}

// New creates a cache with the given capacity. A non-positive capacity
// defaults to 100.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache[K, V]{
		items:    make(map[K]*entry[K, V], capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get retrieves a value, marking it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set adds or updates a value, evicting the least recently used entry
// when the cache is at capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.order.MoveToFront(e.element)
		return
	}

	if len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(K))
			c.order.Remove(oldest)
		}
	}

	element := c.order.PushFront(key)
	c.items[key] = &entry[K, V]{value: value, element: element}
}

// Delete removes an entry.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order.Remove(e.element)
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.order.Init()
}
