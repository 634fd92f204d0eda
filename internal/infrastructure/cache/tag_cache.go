package cache

import (
	"context"
	"sync"
	"time"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type entry struct {
	value     []byte
	tags      []string
	expiresAt time.Time
}

// TagCache is an in-process cache whose entries can be purged by any of
// the identities they were stored under.
type TagCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	byTag   map[string]map[string]struct{}
	now     func() time.Time
}

var _ domain.Cache = (*TagCache)(nil)

func NewTagCache() *TagCache {
	return &TagCache{
		entries: map[string]entry{},
		byTag:   map[string]map[string]struct{}{},
		now:     time.Now,
	}
}

// Get returns the value stored under key unless it expired.
func (c *TagCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.expired(e) {
		return e.value, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A Set may have replaced the entry since the read lock was released.
	if current, ok := c.entries[key]; ok && c.expired(current) {
		c.remove(key)
	}
	return nil, false
}

func (c *TagCache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

// Set stores value under key. A zero ttl never expires.
func (c *TagCache) Set(key string, value []byte, tags []string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
	e := entry{value: value, tags: append([]string(nil), tags...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	for _, tag := range e.tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = map[string]struct{}{}
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Clean drops every entry tagged with one of the identities.
func (c *TagCache) Clean(_ context.Context, identities []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range identities {
		for key := range c.byTag[tag] {
			c.remove(key)
		}
	}
	return nil
}

func (c *TagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// remove expects the write lock to be held.
func (c *TagCache) remove(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, tag := range e.tags {
		keys := c.byTag[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byTag, tag)
		}
	}
}
