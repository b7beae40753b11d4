package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("fp1", "search", 10, "Nakawa,  Kampala")
	b := Key("fp1", "search", 10, "  nakawa, KAMPALA ")
	assert.Equal(t, a, b, "case and spacing should not change the key")

	assert.NotEqual(t, a, Key("fp2", "search", 10, "Nakawa, Kampala"))
	assert.NotEqual(t, a, Key("fp1", "exact", 10, "Nakawa, Kampala"))
	assert.NotEqual(t, a, Key("fp1", "search", 5, "Nakawa, Kampala"))
	assert.NotEqual(t, a, Key("fp1", "search", 10, "Nakawa; Kampala"))
}

func TestLRU(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", []byte("3"))

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry should be evicted")
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", string(v))
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

type payload struct {
	IDs   []string `json:"ids"`
	Score float64  `json:"score"`
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(0)

	SetJSON(ctx, c, "k", payload{IDs: []string{"C1", "S1"}, Score: 1.5})
	got, ok := GetJSON[payload](ctx, c, "k")
	require.True(t, ok)
	assert.Equal(t, []string{"C1", "S1"}, got.IDs)

	c.Set(ctx, "bad", []byte("{"))
	_, ok = GetJSON[payload](ctx, c, "bad")
	assert.False(t, ok, "undecodable entries are misses")

	_, ok = GetJSON[payload](ctx, nil, "k")
	assert.False(t, ok)
	SetJSON(ctx, nil, "k", payload{})
}

// mapCache is a minimal remote tier for exercising Tiered.
type mapCache struct {
	m    map[string][]byte
	gets int
}

func (m *mapCache) Get(_ context.Context, k string) ([]byte, bool) {
	m.gets++
	v, ok := m.m[k]
	return v, ok
}
func (m *mapCache) Set(_ context.Context, k string, v []byte) { m.m[k] = v }
func (m *mapCache) Purge()                                    {}

func TestTiered(t *testing.T) {
	ctx := context.Background()
	local := NewLRU(8)
	remote := &mapCache{m: map[string][]byte{"shared": []byte("x")}}
	c := NewTiered(local, remote)

	v, ok := c.Get(ctx, "shared")
	require.True(t, ok)
	assert.Equal(t, "x", string(v))
	assert.Equal(t, 1, local.Len(), "remote hit is copied to the local tier")

	_, _ = c.Get(ctx, "shared")
	assert.Equal(t, 1, remote.gets, "second lookup is served locally")

	c.Set(ctx, "new", []byte("y"))
	assert.Equal(t, "y", string(remote.m["new"]))

	assert.Same(t, local, NewTiered(local, nil))
	assert.Same(t, remote, NewTiered(nil, remote))
}

func TestRedisUnavailableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedis(client, "", 0)
	defer r.Close()

	ctx := context.Background()
	r.Set(ctx, "k", []byte("v"))
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, DefaultTTL, r.ttl)
	assert.Equal(t, "adminsearch:", r.prefix)
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	_, err := OpenRedis(context.Background(), RedisOptions{})
	assert.Error(t, err)
}
