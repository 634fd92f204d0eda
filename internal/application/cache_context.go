package application

import (
	"context"
	"sort"
	"strconv"
)

// ProductCacheTag prefixes product cache identities.
const ProductCacheTag = "cat_p"

// CacheContext collects the entities to invalidate.
type CacheContext struct {
	entities map[string]map[int]struct{}
}

func NewCacheContext() *CacheContext {
	return &CacheContext{entities: map[string]map[int]struct{}{}}
}

func (c *CacheContext) RegisterEntities(tag string, ids []int) {
	set, ok := c.entities[tag]
	if !ok {
		set = map[int]struct{}{}
		c.entities[tag] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

// RegisteredEntities returns the ids registered under tag, sorted.
func (c *CacheContext) RegisteredEntities(tag string) []int {
	ids := make([]int, 0, len(c.entities[tag]))
	for id := range c.entities[tag] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Identities returns "<tag>_<id>" for every entity, sorted.
func (c *CacheContext) Identities() []string {
	var out []string
	for tag, ids := range c.entities {
		for id := range ids {
			out = append(out, tag+"_"+strconv.Itoa(id))
		}
	}
	sort.Strings(out)
	return out
}

// CleanCacheByTagsListener may extend the context before the cache is purged.
type CleanCacheByTagsListener interface {
	CleanCacheByTags(ctx context.Context, cacheContext *CacheContext) error
}

// CacheEventManager broadcasts "clean cache by tags" to its listeners in
// registration order.
type CacheEventManager struct {
	listeners []CleanCacheByTagsListener
}

func NewCacheEventManager(listeners ...CleanCacheByTagsListener) *CacheEventManager {
	return &CacheEventManager{listeners: listeners}
}

func (m *CacheEventManager) Subscribe(l CleanCacheByTagsListener) {
	m.listeners = append(m.listeners, l)
}

func (m *CacheEventManager) DispatchCleanCacheByTags(ctx context.Context, cacheContext *CacheContext) error {
	for _, l := range m.listeners {
		if err := l.CleanCacheByTags(ctx, cacheContext); err != nil {
			return err
		}
	}
	return nil
}
