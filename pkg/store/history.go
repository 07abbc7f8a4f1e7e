package store

import "github.com/fluo-state/fluo/pkg/utils"

// History records every value a Store commits, in a bounded ring, and lets
// a caller move backward (Undo) and forward (Redo) through it or JumpTo an
// arbitrary recorded index. Undo/Redo apply their target value back onto
// the store via Set, which re-runs middleware and notifies subscribers
// exactly like any other write — Undo is not a silent rewind.
type History[T any] struct {
	store   *Store[T]
	sub     Subscription
	ring    []T
	cursor  int // index into ring of the currently-applied value
	maxSize int
	pausing bool
}

// NewHistory attaches a bounded undo/redo log to store. maxSize <= 0 means
// unlimited.
func NewHistory[T any](store *Store[T], maxSize int) *History[T] {
	h := &History[T]{store: store, maxSize: maxSize}
	h.ring = []T{store.Get()}
	h.cursor = 0
	h.sub = store.Subscribe(func(_, next T) {
		if h.pausing {
			return
		}
		h.push(next)
	})
	return h
}

func (h *History[T]) push(v T) {
	// Dropping any "future" entries once a new value is committed after an
	// Undo, mirroring standard editor undo-stack semantics.
	h.ring = append(h.ring[:h.cursor+1], v)
	h.cursor = len(h.ring) - 1
	if h.maxSize > 0 && len(h.ring) > h.maxSize {
		drop := len(h.ring) - h.maxSize
		h.ring = h.ring[drop:]
		h.cursor -= drop
	}
}

// Undo moves one step back and applies that value to the store. Returns
// utils.StoreError{NoHistory} if already at the oldest recorded value.
func (h *History[T]) Undo() error {
	if h.cursor == 0 {
		return &utils.StoreError{Kind: utils.NoHistory, Reason: "already at oldest recorded value"}
	}
	h.cursor--
	h.applyCurrent()
	return nil
}

// Redo moves one step forward and applies that value to the store. Returns
// utils.StoreError{NoHistory} if already at the newest recorded value.
func (h *History[T]) Redo() error {
	if h.cursor >= len(h.ring)-1 {
		return &utils.StoreError{Kind: utils.NoHistory, Reason: "already at newest recorded value"}
	}
	h.cursor++
	h.applyCurrent()
	return nil
}

// JumpTo applies the value recorded at index i (0 = oldest retained).
func (h *History[T]) JumpTo(i int) error {
	if i < 0 || i >= len(h.ring) {
		return &utils.StoreError{Kind: utils.NoHistory, Reason: "index out of range"}
	}
	h.cursor = i
	h.applyCurrent()
	return nil
}

func (h *History[T]) applyCurrent() {
	h.pausing = true
	h.store.Set(h.ring[h.cursor])
	h.pausing = false
}

// Clear resets the log to just the store's current value.
func (h *History[T]) Clear() {
	h.ring = []T{h.store.Get()}
	h.cursor = 0
}

// Len returns the number of entries currently retained.
func (h *History[T]) Len() int { return len(h.ring) }

// Close detaches the history from its store.
func (h *History[T]) Close() { h.sub.Unsubscribe() }
