package search

import (
	"sync/atomic"
)

// Holder publishes the current Engine. Readers load it without locking; a
// reload stores a fully built replacement, so a query sees either the old
// engine or the new one, never a mix.
type Holder struct {
	cur atomic.Pointer[Engine]
	gen atomic.Uint64
}

// NewHolder creates a holder serving e. e may be nil until the first Swap.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	if e != nil {
		h.cur.Store(e)
		h.gen.Store(1)
	}
	return h
}

// Engine returns the engine currently in service, or nil.
func (h *Holder) Engine() *Engine {
	return h.cur.Load()
}

// Swap installs e and returns the new generation number.
func (h *Holder) Swap(e *Engine) uint64 {
	h.cur.Store(e)
	return h.gen.Add(1)
}

// Generation counts swaps, starting at 1 for the first engine.
func (h *Holder) Generation() uint64 {
	return h.gen.Load()
}
