package travel

import (
	"strings"
	"sync"
)

type cacheKey struct {
	origin      string
	destination string
	mode        Mode
}

// String joins the triple with a unit separator. It is used verbatim as the
// singleflight and shared-store key, so distinct triples never share a key.
func (k cacheKey) String() string {
	return strings.Join([]string{k.origin, k.destination, string(k.mode)}, "\x1f")
}

// Cache is a bounded memo of estimates kept in two generations. When the
// current generation fills up it becomes the previous one and a fresh map
// takes its place; hits on the previous generation are promoted. At most
// 2*capacity entries are held.
type Cache struct {
	mu       sync.Mutex
	capacity int
	current  map[cacheKey]Estimate
	previous map[cacheKey]Estimate
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Cache{capacity: capacity, current: make(map[cacheKey]Estimate)}
}

func (c *Cache) get(k cacheKey) (Estimate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.current[k]; ok {
		return e, true
	}
	e, ok := c.previous[k]
	if ok {
		delete(c.previous, k)
		c.store(k, e)
	}
	return e, ok
}

// put stores e and reports whether a generation rotation dropped entries.
func (c *Cache) put(k cacheKey, e Estimate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.previous, k)
	return c.store(k, e)
}

func (c *Cache) store(k cacheKey, e Estimate) bool {
	rotated := false
	if _, ok := c.current[k]; !ok && len(c.current) >= c.capacity {
		rotated = len(c.previous) > 0
		c.previous = c.current
		c.current = make(map[cacheKey]Estimate, c.capacity)
	}
	c.current[k] = e
	return rotated
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.current) + len(c.previous)
}
