// Package history implements the history subsystem: a bounded, per-compound
// ring of HistoryEntry that lets a history pseudo-state restore whichever
// child (shallow) or whole nested configuration (deep) was last active,
// grounded on anggasct/fluo's pkg/states.HistoryState (which tracked a
// single lastState/defaultState pair) but generalized to the spec's bounded
// log with optional context restoration and persistence hooks.
package history

import (
	"time"

	"github.com/fluo-state/fluo/pkg/utils"
	"github.com/fluo-state/fluo/pkg/value"
)

// Kind distinguishes shallow history (remembers the direct child) from deep
// history (remembers the full nested configuration).
type Kind int

const (
	Shallow Kind = iota
	Deep
)

// Entry records one recorded restoration point for a history-enabled
// compound.
type Entry[C any] struct {
	State     value.StateValue
	Context   C
	HasCtx    bool
	Timestamp time.Time
	Event     string
	Restored  bool
}

// Def configures a single history-enabled compound.
type Def struct {
	Kind           Kind
	DefaultTarget  string
	RestoreContext bool
	MaxDepth       int // 0 = unlimited
	Enabled        bool
}

// Manager owns the history rings for every history-enabled compound in a
// machine, keyed by the compound's state id. It is not safe for concurrent
// use without external synchronization (SPEC_FULL.md §5).
type Manager[C any] struct {
	defs  map[string]Def
	rings map[string][]Entry[C]
}

// NewManager creates an empty history manager.
func NewManager[C any]() *Manager[C] {
	return &Manager[C]{
		defs:  make(map[string]Def),
		rings: make(map[string][]Entry[C]),
	}
}

// Register enables history tracking for the compound identified by id.
func (m *Manager[C]) Register(id string, def Def) {
	m.defs[id] = def
	if _, ok := m.rings[id]; !ok {
		m.rings[id] = nil
	}
}

// Tracked reports whether id is a registered, enabled history-tracked
// compound.
func (m *Manager[C]) Tracked(id string) bool {
	d, ok := m.defs[id]
	return ok && d.Enabled
}

// Record appends a new entry to id's ring, evicting the oldest entry first
// once MaxDepth is exceeded (0 means unlimited).
func (m *Manager[C]) Record(id string, state value.StateValue, ctx C, hasCtx bool, event string) {
	def, ok := m.defs[id]
	if !ok || !def.Enabled {
		return
	}
	recorded := state
	if def.Kind == Shallow {
		recorded = shallowOf(state)
	}
	entry := Entry[C]{State: recorded, Timestamp: time.Now(), Event: event}
	if def.RestoreContext && hasCtx {
		entry.Context = ctx
		entry.HasCtx = true
	}
	ring := append(m.rings[id], entry)
	if def.MaxDepth > 0 && len(ring) > def.MaxDepth {
		ring = ring[len(ring)-def.MaxDepth:]
	}
	m.rings[id] = ring
}

// shallowOf reduces a recorded nested value to just its outermost name, per
// the shallow-history contract (remembers only the direct child).
func shallowOf(v value.StateValue) value.StateValue {
	switch v.Kind() {
	case value.Atomic:
		return v
	case value.Compound:
		return value.Atom(v.Name())
	default:
		return v
	}
}

// Resolve returns the restoration target for the history pseudo-state id:
// the most recent ring entry if one exists, else the configured default
// target. fromDefault is true when the result came from DefaultTarget (a
// bare atomic value the caller must still expand through any nested
// initial-child chain) rather than from a recorded entry. A recorded shallow
// entry is likewise a bare atomic child id that the caller expands; a
// recorded deep entry is the full nested value. Returns utils.RuntimeError{HistoryMiss}
// if neither is available.
func (m *Manager[C]) Resolve(id string) (resolved value.StateValue, overlay C, hasOverlay bool, fromDefault bool, err error) {
	def, ok := m.defs[id]
	if !ok {
		var zero C
		return value.StateValue{}, zero, false, false, &utils.RuntimeError{Kind: utils.HistoryMiss, From: id}
	}
	ring := m.rings[id]
	if len(ring) > 0 {
		last := ring[len(ring)-1]
		return last.State, last.Context, last.HasCtx, false, nil
	}
	if def.DefaultTarget != "" {
		var zero C
		return value.Atom(def.DefaultTarget), zero, false, true, nil
	}
	var zero C
	return value.StateValue{}, zero, false, false, &utils.RuntimeError{Kind: utils.HistoryMiss, From: id}
}

// RecordExits compares oldVal and newVal and, for every registered
// history-enabled compound no longer active in newVal but active in
// oldVal, records the value that was active under it in oldVal. Called
// once per successful top-level Transition.
func (m *Manager[C]) RecordExits(oldVal, newVal value.StateValue, oldCtx C) {
	for id, def := range m.defs {
		if !def.Enabled {
			continue
		}
		if !value.Contains(oldVal, id) || value.Contains(newVal, id) {
			continue
		}
		if exited, ok := value.Find(oldVal, id); ok {
			m.Record(id, exited, oldCtx, def.RestoreContext, "")
		}
	}
}

// Clear empties id's ring, forcing the next resolution to fall back to the
// default target.
func (m *Manager[C]) Clear(id string) {
	m.rings[id] = nil
}

// ExpireOlderThan drops entries older than d from every ring. Intended to
// be called periodically by a caller-owned sweep loop; the subsystem itself
// has no background goroutine.
func (m *Manager[C]) ExpireOlderThan(d time.Duration) {
	cutoff := time.Now().Add(-d)
	for id, ring := range m.rings {
		kept := ring[:0:0]
		for _, e := range ring {
			if e.Timestamp.After(cutoff) {
				kept = append(kept, e)
			}
		}
		m.rings[id] = kept
	}
}

// Snapshot returns a defensive copy of id's current ring, newest last.
func (m *Manager[C]) Snapshot(id string) []Entry[C] {
	ring := m.rings[id]
	out := make([]Entry[C], len(ring))
	copy(out, ring)
	return out
}
