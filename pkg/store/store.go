// Package store implements the reactive store: a mutex-guarded value of
// type T with ordered-subscriber notification, middleware, memoized slices
// and computed values, batched updates and undo/redo history. Grounded on
// the subscription/versioned-snapshot shape of
// other_examples/mattsp1290-ag-ui's pkg/state Store (path subscriptions,
// GetHistory, CreateSnapshot), generalized from a JSON-patch document store
// into a typed, generic Store[T]; anggasct/fluo has no reactive-store
// counterpart to draw from, so this package leans on the pack example and
// the stdlib sync primitives anggasct/fluo itself favors elsewhere.
package store

import (
	"sync"

	"github.com/fluo-state/fluo/pkg/utils"
)

// Middleware observes or rewrites a proposed next value before it is
// committed. Returning ok=false rejects the update entirely (the store
// keeps its previous value).
type Middleware[T any] func(prev, next T) (T, bool)

// Subscription is returned by Subscribe; call Unsubscribe to stop receiving
// notifications.
type Subscription struct {
	unsubscribe func()
}

// Unsubscribe removes the associated listener. Safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

type listener[T any] struct {
	id int64
	fn func(prev, next T)
}

// Store holds a single value of type T, notifying subscribers in
// registration order on every committed change.
type Store[T any] struct {
	mu          sync.Mutex
	value       T
	version     uint64
	listeners   []listener[T]
	nextID      int64
	middlewares []Middleware[T]
	notifying   bool // re-entrancy guard: a write during notification queues instead of recursing
	pending     []T
}

// New creates a Store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current value. For T a pointer or slice/map type callers
// are responsible for not mutating the result directly outside Set/Update.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Snapshot returns the current value and its version, atomically.
func (s *Store[T]) Snapshot() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.version
}

// Use appends a middleware to the chain, run in registration order on every
// Set/Update/Mutate.
func (s *Store[T]) Use(mw Middleware[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, mw)
}

// Set replaces the store's value, running it through middleware and
// notifying subscribers if the middleware chain did not reject it.
func (s *Store[T]) Set(next T) {
	s.commit(next)
}

// Update computes the next value from the current one.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	cur := s.value
	s.mu.Unlock()
	s.commit(fn(cur))
}

// Mutate is Update under another name for in-place mutation of a pointer or
// reference-typed T: fn receives the current value (e.g. a *Foo) and
// returns the value to commit, typically the same pointer after mutating
// its fields.
func (s *Store[T]) Mutate(fn func(T) T) {
	s.Update(fn)
}

func (s *Store[T]) commit(next T) {
	s.mu.Lock()
	prev := s.value
	for _, mw := range s.middlewares {
		var ok bool
		next, ok = mw(prev, next)
		if !ok {
			s.mu.Unlock()
			return
		}
	}
	s.value = next
	s.version++

	if s.notifying {
		s.pending = append(s.pending, next)
		s.mu.Unlock()
		return
	}
	s.notifying = true
	toNotify := append([]listener[T](nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range toNotify {
		l.fn(prev, next)
	}

	s.mu.Lock()
	s.notifying = false
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, p := range pending {
		s.commit(p)
	}
}

// Subscribe registers fn to be called with (previous, next) on every
// committed change, in the order subscriptions were registered.
func (s *Store[T]) Subscribe(fn func(prev, next T)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return Subscription{unsubscribe: func() { s.remove(id) }}
}

func (s *Store[T]) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Batch runs fn, deferring subscriber notification until fn returns, so
// several Set/Update calls inside fn produce at most one round of
// notifications (the last committed value).
func (s *Store[T]) Batch(fn func()) {
	s.mu.Lock()
	wasNotifying := s.notifying
	s.notifying = true
	s.mu.Unlock()

	fn()

	s.mu.Lock()
	s.notifying = wasNotifying
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) > 0 {
		s.commit(pending[len(pending)-1])
	}
}

// ValidatingMiddleware rejects a proposed next value when validate returns
// an error, surfacing it via onReject (e.g. to log a utils.StoreError).
func ValidatingMiddleware[T any](validate func(T) error, onReject func(error)) Middleware[T] {
	return func(prev, next T) (T, bool) {
		if err := validate(next); err != nil {
			if onReject != nil {
				onReject(&utils.StoreError{Kind: utils.ValidationFailed, Reason: err.Error()})
			}
			return prev, false
		}
		return next, true
	}
}
