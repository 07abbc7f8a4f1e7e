// Package cache memoizes machine.Transition results behind an LRU, keyed by
// the triple (current value, event discriminant, context hash), so that a
// machine driven by a small alphabet of events repeatedly hitting the same
// configuration doesn't re-run guards/actions for a result it already
// computed. Grounded on the pack's several workflow-engine repos that
// reach for hashicorp/golang-lru/v2 for exactly this kind of memoization
// (e.g. GoCodeAlone-workflow's go.mod); anggasct/fluo itself has no
// transition cache to generalize from.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/value"
)

// Key identifies one memoized transition.
type Key struct {
	ValueStr          string
	EventDiscriminant string
	ContextHash       uint64
}

type entry[C machine.Cloneable[C]] struct {
	result   machine.MachineState[C]
	storedAt time.Time
	byteCost int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Bytes     int64
}

// HitRate returns Hits/(Hits+Misses), or 0 if there have been no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// HashFn computes a stable hash of a context value for cache keying. The
// engine has no generic way to hash an arbitrary C, so callers supply one
// (typically hashing just the fields that affect guard outcomes).
type HashFn[C any] func(C) uint64

// TransitionCache wraps an LRU cache of transition results for a Machine[C].
// It is safe only for the same single-goroutine-at-a-time use the bare
// Machine gives (SPEC_FULL.md §5) — no internal locking is performed.
type TransitionCache[C machine.Cloneable[C]] struct {
	lru   *lru.Cache[Key, entry[C]]
	hash  HashFn[C]
	ttl   time.Duration // 0 disables TTL invalidation
	stats Stats
}

// NewTransitionCache builds a cache holding at most capacity entries. ttl of
// 0 disables time-based invalidation (entries only evict on LRU pressure or
// explicit Purge).
func NewTransitionCache[C machine.Cloneable[C]](capacity int, hash HashFn[C], ttl time.Duration) (*TransitionCache[C], error) {
	c, err := lru.New[Key, entry[C]](capacity)
	if err != nil {
		return nil, err
	}
	return &TransitionCache[C]{lru: c, hash: hash, ttl: ttl}, nil
}

func (c *TransitionCache[C]) keyFor(val value.StateValue, event core.Event, ctx C) Key {
	return Key{
		ValueStr:          val.String(),
		EventDiscriminant: event.Discriminant(),
		ContextHash:       c.hash(ctx),
	}
}

// Lookup returns a cached result for (val, event, ctx) if present and not
// expired. The returned MachineState is always the exact result
// machine.Transition would have produced — including the no-match identity
// case, where the cached result equals the input — so callers never need a
// separate "did it change" signal to stay correct (a self-transition that
// mutates context without changing Value must not be short-circuited back
// to the stale input state).
func (c *TransitionCache[C]) Lookup(val value.StateValue, event core.Event, ctx C) (machine.MachineState[C], bool) {
	k := c.keyFor(val, event, ctx)
	e, ok := c.lru.Get(k)
	if !ok {
		c.stats.Misses++
		return machine.MachineState[C]{}, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.lru.Remove(k)
		c.stats.Misses++
		c.stats.Evictions++
		return machine.MachineState[C]{}, false
	}
	c.stats.Hits++
	return e.result, true
}

// Store memoizes a transition result for (val, event, ctx).
func (c *TransitionCache[C]) Store(val value.StateValue, event core.Event, ctx C, result machine.MachineState[C]) {
	k := c.keyFor(val, event, ctx)
	cost := int64(len(k.ValueStr) + len(k.EventDiscriminant) + len(result.Value.String()) + 32)
	evicted := c.lru.Add(k, entry[C]{result: result, storedAt: time.Now(), byteCost: cost})
	c.stats.Bytes += cost
	if evicted {
		c.stats.Evictions++
	}
}

// Stats returns a snapshot of the cache's hit/miss/eviction counters.
func (c *TransitionCache[C]) Stats() Stats { return c.stats }

// Purge empties the cache and resets Bytes (but not the cumulative
// hit/miss/eviction counters).
func (c *TransitionCache[C]) Purge() {
	c.lru.Purge()
	c.stats.Bytes = 0
}

// OptimizedMachine wraps a Machine so that Transition first consults a
// TransitionCache and only falls through to the real engine on a miss.
type OptimizedMachine[C machine.Cloneable[C]] struct {
	M     *machine.Machine[C]
	Cache *TransitionCache[C]
}

// NewOptimizedMachine pairs m with a fresh cache of the given capacity.
func NewOptimizedMachine[C machine.Cloneable[C]](m *machine.Machine[C], capacity int, hash HashFn[C], ttl time.Duration) (*OptimizedMachine[C], error) {
	c, err := NewTransitionCache[C](capacity, hash, ttl)
	if err != nil {
		return nil, err
	}
	return &OptimizedMachine[C]{M: m, Cache: c}, nil
}

// Transition consults the cache before delegating to machine.Transition. A
// cache hit still returns a result with the hit's Context verbatim — since
// the cached MachineState was produced by cloning+mutating a context at
// store time, replaying the hit does not re-run actions, which is only
// sound when actions are deterministic given (ctx, event), per
// SPEC_FULL.md §4.5.
func (o *OptimizedMachine[C]) Transition(state machine.MachineState[C], event core.Event) machine.MachineState[C] {
	if cached, ok := o.Cache.Lookup(state.Value, event, state.Context); ok {
		return cached
	}
	next := machine.Transition(o.M, state, event)
	o.Cache.Store(state.Value, event, state.Context, next)
	return next
}
