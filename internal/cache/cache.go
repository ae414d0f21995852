// Package cache holds recently issued decisions so a message redelivered on
// the same session within a short window gets the same answer without
// re-running the policy. The cache is bounded and entries expire quickly;
// session state moves fast enough that a long-lived entry would be wrong
// more often than useful.
package cache

import (
	"sync"
	"time"

	"github.com/jakco/support-router/internal/engine"
)

type item struct {
	decision engine.Decision
	addedAt  time.Time
}

type Decisions struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]item
}

func New(capacity int, ttl time.Duration) *Decisions {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Decisions{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]item),
	}
}

func (c *Decisions) Get(key string) (engine.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.entries[key]
	if !ok {
		return engine.Decision{}, false
	}
	if c.now().Sub(it.addedAt) > c.ttl {
		delete(c.entries, key)
		return engine.Decision{}, false
	}
	return it.decision, true
}

func (c *Decisions) Put(key string, d engine.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = item{decision: d, addedAt: c.now()}
}

// Purge drops every expired entry and reports how many went away.
func (c *Decisions) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for key, it := range c.entries {
		if c.now().Sub(it.addedAt) > c.ttl {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

func (c *Decisions) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Decisions) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, it := range c.entries {
		if oldestKey == "" || it.addedAt.Before(oldest) {
			oldestKey, oldest = key, it.addedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
