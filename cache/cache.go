package backoffice_integration_cache

import (
	"strings"
	"sync"
	"time"
)

// RequestCache is an explicit in-memory cache of list/detail results keyed
// by the serialized query key. Resolution is last-key-wins: a fetch that was
// superseded for the same key can no longer commit its result. There is no
// dependency tracking; mutation handlers invalidate the affected prefixes
// themselves.
type RequestCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

type entry struct {
	value      any
	storedAt   time.Time
	lastTicket uint64
}

func NewRequestCache(ttl time.Duration) *RequestCache {
	return &RequestCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

func (c *RequestCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.value == nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Begin registers an in-flight fetch for key and returns its ticket. A later
// Begin for the same key invalidates every earlier ticket.
func (c *RequestCache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.lastTicket++
	return e.lastTicket
}

// Complete commits a fetched value. It reports false, without storing, when
// a newer fetch for the same key was begun in the meantime.
func (c *RequestCache) Complete(key string, ticket uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || ticket < e.lastTicket {
		return false
	}
	e.value = value
	e.storedAt = time.Now()
	return true
}

func (c *RequestCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.value = value
	e.storedAt = time.Now()
}

func (c *RequestCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}

// InvalidatePrefix drops every key under a scope, e.g. "admin.deposits".
func (c *RequestCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *RequestCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}
