package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ug-admin-search/internal/fuzzy"
	"github.com/ug-admin-search/internal/refdata"
)

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Engine())
	assert.Equal(t, uint64(0), h.Generation())

	e := newTestEngine(t)
	assert.Equal(t, uint64(1), h.Swap(e))
	assert.Same(t, e, h.Engine())

	e2 := newTestEngine(t)
	assert.Equal(t, uint64(2), h.Swap(e2))
	assert.Same(t, e2, h.Engine())

	assert.Equal(t, uint64(1), NewHolder(e).Generation())
}

func TestReloaderSwapsOnChange(t *testing.T) {
	var calls atomic.Int32
	provider := refdata.ProviderFunc(func(ctx context.Context) (*refdata.Dataset, error) {
		ds := testDataset()
		if calls.Add(1) > 2 {
			ds.Add(refdata.AdminUnit{ID: "D3", Name: "Jinja", Level: refdata.District})
		}
		return ds, nil
	})

	h := NewHolder(nil)
	r := NewReloader(h, provider, fuzzy.DefaultOptions())
	var swaps []uint64
	r.OnSwap = func(_ *Engine, gen uint64) { swaps = append(swaps, gen) }

	first, err := r.Reload(testContext(t))
	require.NoError(t, err)
	assert.Same(t, first, h.Engine())

	// Same rows, same fingerprint: the engine in service is kept.
	again, err := r.Reload(testContext(t))
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, uint64(1), h.Generation())

	changed, err := r.Reload(testContext(t))
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.Equal(t, uint64(2), h.Generation())
	assert.Equal(t, []uint64{1, 2}, swaps)

	results := h.Engine().Search("Jinja", DefaultLimit)
	require.NotEmpty(t, results)
	assert.Equal(t, "D3", results[0].Unit.ID)
}

func TestReloaderKeepsEngineOnFailure(t *testing.T) {
	boom := errors.New("boom")
	provider := refdata.ProviderFunc(func(ctx context.Context) (*refdata.Dataset, error) {
		return nil, boom
	})

	e := newTestEngine(t)
	h := NewHolder(e)
	r := NewReloader(h, provider, fuzzy.DefaultOptions())
	var reported error
	r.OnError = func(err error) { reported = err }

	_, err := r.Reload(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, reported, boom)
	assert.Same(t, e, h.Engine())
	assert.Equal(t, uint64(1), h.Generation())
}

func writeLevelFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestReloaderWatch(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "districts.json", `[{"id":"D1","name":"Kampala"}]`)

	h := NewHolder(nil)
	r := NewReloader(h, refdata.NewDirProvider(dir), fuzzy.DefaultOptions())
	r.Debounce = 20 * time.Millisecond
	_, err := r.Reload(testContext(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext(t))
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, dir) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeLevelFile(t, dir, "notes.txt", "ignored")
	writeLevelFile(t, dir, "counties.csv", "id,name,parent_id\nC1,Nakawa,D1\n")

	require.Eventually(t, func() bool {
		return h.Generation() == 2
	}, 5*time.Second, 20*time.Millisecond)
	chain := h.Engine().Chain(refdata.County, "C1")
	assert.Equal(t, "D1", chain.District)
	assert.Equal(t, "C1", chain.County)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
