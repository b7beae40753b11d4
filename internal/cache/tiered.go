package cache

import (
	"context"
)

// Tiered checks a fast local cache before a shared one and copies shared
// hits into the local tier.
type Tiered struct {
	Local  Cache
	Remote Cache
}

// NewTiered combines two tiers. A nil remote leaves only the local tier.
func NewTiered(local, remote Cache) Cache {
	if remote == nil {
		return local
	}
	if local == nil {
		return remote
	}
	return &Tiered{Local: local, Remote: remote}
}

// Get implements Cache.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if b, ok := t.Local.Get(ctx, key); ok {
		return b, true
	}
	b, ok := t.Remote.Get(ctx, key)
	if ok {
		t.Local.Set(ctx, key, b)
	}
	return b, ok
}

// Set implements Cache.
func (t *Tiered) Set(ctx context.Context, key string, value []byte) {
	t.Local.Set(ctx, key, value)
	t.Remote.Set(ctx, key, value)
}

// Purge implements Cache.
func (t *Tiered) Purge() {
	t.Local.Purge()
	t.Remote.Purge()
}
