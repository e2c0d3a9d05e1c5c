// Package search memoizes product search results per raw query string.
package search

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"shopassist/internal/catalog"
)

// DefaultCacheSize bounds the number of cached queries.
const DefaultCacheSize = 256

// Searcher executes the underlying product search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Cache memoizes Searcher results. Keys are the raw query string, exact
// match and case-sensitive: two semantically identical but textually
// different queries are distinct entries. Entries never expire on their
// own; they leave via LRU pressure or Clear. Catalog edits do not
// invalidate cached results.
type Cache struct {
	searcher Searcher
	entries  *lru.Cache[string, []catalog.Product]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache wraps a Searcher with a bounded LRU cache.
func NewCache(searcher Searcher, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []catalog.Product](size)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}
	return &Cache{searcher: searcher, entries: entries}, nil
}

// Search returns the cached result for query, or runs the underlying
// search and caches it. Cache hits return the stored slice unchanged.
func (c *Cache) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	if cached, ok := c.entries.Get(query); ok {
		c.hits.Add(1)
		return cached, nil
	}

	products, err := c.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.misses.Add(1)
	c.entries.Add(query, products)
	return products, nil
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Stats returns current entry count and hit/miss totals.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
