package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/metrics"
)

// DefaultTTL bounds how long a response lives in Redis.
const DefaultTTL = 10 * time.Minute

// RedisOptions configures the Redis tier.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis is a cache tier shared between service instances. Errors are logged
// and treated as misses so an unavailable Redis only costs latency.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// OpenRedis connects to Redis and checks the connection with PING.
func OpenRedis(ctx context.Context, o RedisOptions) (*Redis, error) {
	if o.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", o.Addr, err)
	}
	logger.L().Debug("redis_connected", "addr", o.Addr, "db", o.DB)
	return NewRedis(client, o.Prefix, o.TTL), nil
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "adminsearch:"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheRequestsTotal.WithLabelValues("redis", "miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheRequestsTotal.WithLabelValues("redis", "error").Inc()
		logger.L().Warn("redis_get_failed", "error", err)
		return nil, false
	}
	metrics.CacheRequestsTotal.WithLabelValues("redis", "hit").Inc()
	return b, true
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		logger.L().Warn("redis_set_failed", "error", err)
	}
}

// Purge implements Cache. Redis entries expire on their own.
func (r *Redis) Purge() {}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
