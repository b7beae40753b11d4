// Package cache stores encoded search responses. Keys embed the dataset
// fingerprint, so entries from a replaced dataset are never served; they age
// out of the LRU and expire in Redis.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/ug-admin-search/internal/fuzzy"
	"github.com/ug-admin-search/internal/logger"
)

// Cache is a byte store shared by concurrent requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Purge drops locally held entries. Remote tiers are left to expire.
	Purge()
}

// Key builds the cache key of one query. Queries differing only in case or
// spacing share a key.
func Key(fingerprint, kind string, limit int, query string) string {
	q := strings.Join(strings.Fields(fuzzy.Normalize(query)), " ")
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte(':')
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(limit))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(xxhash.Sum64String(q), 16))
	return b.String()
}

// GetJSON decodes a cached value into T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	b, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		logger.L().Warn("cache_decode_failed", "key", key, "error", err)
		return v, false
	}
	return v, true
}

// SetJSON encodes v and stores it.
func SetJSON(ctx context.Context, c Cache, key string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		logger.L().Warn("cache_encode_failed", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, b)
}
