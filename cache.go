package wavmeta

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the cache capacity used when NewCache is passed a
// non-positive value.
const DefaultCacheSize = 128

type cacheKey struct {
	path         string
	debug        bool
	noHeuristics bool
}

// Cache memoizes ReadFile results in a fixed-size LRU keyed by path and
// read options.
//
// Hazard: the cache has no knowledge of the filesystem. Editing a file
// after a cached read returns the stale record until Invalidate or Purge
// is called. Callers that mutate files between reads must invalidate, or
// call ReadFile directly.
type Cache struct {
	entries *lru.Cache[cacheKey, Record]
}

// NewCache creates a read cache holding up to capacity records.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}

	entries, err := lru.New[cacheKey, Record](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

// Read returns the cached record for path and opts, reading the file on a
// cache miss.
func (c *Cache) Read(path string, opts ...Option) Record {
	o := applyOptions(opts)
	key := cacheKey{
		path:         path,
		debug:        o.debug != nil,
		noHeuristics: o.noHeuristics,
	}

	if rec, ok := c.entries.Get(key); ok {
		return rec
	}

	rec := ReadFile(path, opts...)
	c.entries.Add(key, rec)

	return rec
}

// Invalidate drops every cached record for path, across all option
// combinations.
func (c *Cache) Invalidate(path string) {
	for _, key := range c.entries.Keys() {
		if key.path == path {
			c.entries.Remove(key)
		}
	}
}

// Purge drops all cached records.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.entries.Len()
}
