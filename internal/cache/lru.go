package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ug-admin-search/internal/metrics"
)

// DefaultLRUSize is the number of responses kept in memory.
const DefaultLRUSize = 4096

// LRU is an in-process cache bounded by entry count.
type LRU struct {
	cache *lru.Cache[string, []byte]
}

// NewLRU creates an LRU holding up to size entries.
func NewLRU(size int) *LRU {
	if size <= 0 {
		size = DefaultLRUSize
	}
	c, _ := lru.New[string, []byte](size)
	return &LRU{cache: c}
}

// Get implements Cache.
func (l *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := l.cache.Get(key)
	if ok {
		metrics.CacheRequestsTotal.WithLabelValues("lru", "hit").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues("lru", "miss").Inc()
	}
	return v, ok
}

// Set implements Cache.
func (l *LRU) Set(_ context.Context, key string, value []byte) {
	l.cache.Add(key, value)
}

// Purge implements Cache.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	return l.cache.Len()
}
