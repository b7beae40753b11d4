package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ug-admin-search/internal/fuzzy"
	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/refdata"
)

// DefaultDebounce is how long Watch waits after the last file event before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// Reloader rebuilds the engine from a provider and swaps it into a Holder.
type Reloader struct {
	holder   *Holder
	provider refdata.Provider
	opts     fuzzy.Options

	// Debounce delays reloads triggered by Watch.
	Debounce time.Duration
	// OnSwap, when set, runs after each successful swap.
	OnSwap func(e *Engine, generation uint64)
	// OnError, when set, runs after each failed reload.
	OnError func(err error)

	mu sync.Mutex
}

// NewReloader creates a reloader. Call Reload once to serve the first engine.
func NewReloader(h *Holder, p refdata.Provider, opts fuzzy.Options) *Reloader {
	return &Reloader{
		holder:   h,
		provider: p,
		opts:     opts,
		Debounce: DefaultDebounce,
	}
}

// Reload loads the dataset, builds a new engine and swaps it in. On failure
// the engine in service is left untouched. Concurrent calls are serialized.
func (r *Reloader) Reload(ctx context.Context) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.build(ctx)
	if err != nil {
		if r.OnError != nil {
			r.OnError(err)
		}
		return nil, err
	}

	if cur := r.holder.Engine(); cur != nil && cur.Fingerprint() == e.Fingerprint() {
		logger.L().Info("reload_skipped", "reason", "unchanged", "fingerprint", e.Fingerprint())
		return cur, nil
	}

	gen := r.holder.Swap(e)
	logger.L().Info("engine_swapped",
		"generation", gen,
		"fingerprint", e.Fingerprint(),
		"build_time", e.buildTime)
	if r.OnSwap != nil {
		r.OnSwap(e, gen)
	}
	return e, nil
}

func (r *Reloader) build(ctx context.Context) (*Engine, error) {
	ds, err := r.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := NewEngine(ds, r.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	return e, nil
}

// Watch reloads whenever a level file in dir changes. Bursts of events are
// collapsed into one reload after Debounce. It blocks until ctx is done.
func (r *Reloader) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch data directory %s: %w", dir, err)
	}
	logger.L().Info("data_watch_started", "dir", dir, "debounce", r.Debounce)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(r.Debounce, func() {
			if _, err := r.Reload(ctx); err != nil {
				logger.L().Error("reload_failed", "error", err)
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := refdata.LevelOfFile(filepath.ToSlash(event.Name)); !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.L().Debug("data_file_changed", "file", event.Name, "op", event.Op.String())
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.L().Warn("data_watch_error", "error", err)
		}
	}
}
