// Package fluo provides a Harel-statechart runtime: hierarchical,
// parallel and history-aware state machines driven by pure transition
// functions, plus a reactive store engine (subscriptions, middleware,
// derived values, undo/redo) for holding application state built from
// that runtime.
package fluo

import (
	"time"

	"github.com/fluo-state/fluo/pkg/action"
	"github.com/fluo-state/fluo/pkg/cache"
	"github.com/fluo-state/fluo/pkg/config"
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/guard"
	"github.com/fluo-state/fluo/pkg/history"
	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/observers"
	"github.com/fluo-state/fluo/pkg/persistence"
	"github.com/fluo-state/fluo/pkg/store"
	"github.com/fluo-state/fluo/pkg/utils"
	"github.com/fluo-state/fluo/pkg/value"
)

// Non-generic core types re-exported directly. Generic types (Machine,
// Builder, Store, ...) are re-exported further down this file as
// generic type aliases, alongside constructor functions.
type (
	// Event is a dispatched occurrence: a name, optional data/metadata,
	// a priority and a random UUID string ID.
	Event = core.Event

	// EventPriority orders events when a dispatcher needs to pick among
	// several pending ones.
	EventPriority = core.EventPriority

	// StateValue is the algebra of active configurations: Atomic,
	// Compound (parent with one active child) or Parallel (concurrent
	// regions).
	StateValue = value.StateValue

	// HistoryKind distinguishes shallow (direct substate only) from deep
	// (full active subtree) history pseudo-states.
	HistoryKind = history.Kind

	// HistoryDef declares a history pseudo-state attached to a compound
	// state: its Kind and the configuration to use before anything has
	// ever been recorded.
	HistoryDef = history.Def

	// NodeKind distinguishes Atomic, Compound, Parallel and History
	// state nodes.
	NodeKind = machine.NodeKind

	// Config holds process-wide tunables loaded from
	// LEPTOS_STATE_-prefixed environment variables.
	Config = config.Config

	// LogLevel is the verbosity threshold for LoggingObserver.
	LogLevel = observers.LogLevel

	// Logger is the sink LoggingObserver writes formatted lines to.
	Logger = observers.Logger

	// BackendInfo reports capacity usage and capabilities for a
	// StorageBackend.
	BackendInfo = persistence.BackendInfo

	// Record is the versioned envelope persisted for one machine state.
	Record = persistence.Record
)

// Event priority levels, lowest to highest.
const (
	LowPriority      = core.LowPriority
	NormalPriority   = core.NormalPriority
	HighPriority     = core.HighPriority
	CriticalPriority = core.CriticalPriority
)

// History kinds.
const (
	ShallowHistory = history.Shallow
	DeepHistory    = history.Deep
)

// Node kinds.
const (
	NodeAtomic   = machine.NodeAtomic
	NodeCompound = machine.NodeCompound
	NodeParallel = machine.NodeParallel
	NodeHistory  = machine.NodeHistory
)

// Logging levels, from least to most verbose.
const (
	LogError   = observers.LogError
	LogWarning = observers.LogWarning
	LogInfo    = observers.LogInfo
	LogDebug   = observers.LogDebug
)

// Event constructors.
var (
	NewEvent         = core.NewEvent
	NewEventWithData = core.NewEventWithData
)

// StateValue constructors.
var (
	Atom = value.Atom
	Comp = value.Comp
	Par  = value.Par
)

// Config helpers.
var (
	DefaultConfig = config.Default
	LoadConfig    = config.Load
)

// Error types and sentinels, re-exported directly since BuildError,
// RuntimeError, PersistenceError, StoreError and MigrationError are all
// non-generic.
type (
	BuildError       = utils.BuildError
	RuntimeError     = utils.RuntimeError
	PersistenceError = utils.PersistenceError
	StoreError       = utils.StoreError
	MigrationError   = utils.MigrationError
)

// Identifier and duration helpers.
var (
	ValidateStateID  = utils.ValidateStateID
	ValidateEventID  = utils.ValidateEventID
	ValidateStoreID  = utils.ValidateStoreID
	SanitizeFileName = utils.SanitizeFileName
	ParseDuration    = utils.ParseDuration
	FormatDuration   = utils.FormatDuration
)

// Cloneable is the constraint every machine context type must satisfy:
// it must be able to produce an independent copy of itself, since
// machine.Transition is a pure function over (state, context) pairs
// rather than a mutator.
type Cloneable[C any] = machine.Cloneable[C]

// Guard re-exports the guard evaluation interface.
type Guard[C any] = guard.Guard[C]

// Action re-exports the action execution interface.
type Action[C any] = action.Action[C]

// TransitionDef declares one guarded, actioned edge out of a state node.
type TransitionDef[C Cloneable[C]] = machine.TransitionDef[C]

// StateNode is one node (atomic, compound, parallel or history) of a
// built Machine's graph.
type StateNode[C Cloneable[C]] = machine.StateNode[C]

// Machine is the compiled, immutable state graph: a set of StateNodes
// plus a root id and an optional history manager. Its companion pure
// function Transition computes the next MachineState for a given event;
// a Machine itself holds no current state.
type Machine[C Cloneable[C]] = machine.Machine[C]

// MachineState pairs an active StateValue with its context snapshot.
type MachineState[C Cloneable[C]] = machine.MachineState[C]

// Builder assembles a Machine fluently: declare nodes with
// Atomic/Compound/Parallel/History, wire transitions with On, attach
// Entry/Exit actions, set the root with Initial, then Build.
type Builder[C Cloneable[C]] = machine.Builder[C]

// StrictMachine wraps a Machine so that Transition returns an error
// instead of silently swallowing action failures and history misses.
type StrictMachine[C Cloneable[C]] = machine.StrictMachine[C]

// NewBuilder starts a Builder with no states declared.
func NewBuilder[C Cloneable[C]]() *Builder[C] {
	return machine.NewBuilder[C]()
}

// NewStrict wraps m so that action errors surface from Transition
// instead of only reaching m.OnActionError.
func NewStrict[C Cloneable[C]](m *Machine[C]) *StrictMachine[C] {
	return machine.NewStrict[C](m)
}

// Transition computes the MachineState reached by dispatching event
// against state within m, per the parallel-fold / compound-then-parent
// / declaration-order-guard-gated algorithm described in the package
// documentation of pkg/machine. It never mutates m or state.
func Transition[C Cloneable[C]](m *Machine[C], state MachineState[C], event Event) MachineState[C] {
	return machine.Transition[C](m, state, event)
}

// TransitionCache memoizes Transition results keyed by (active value,
// event discriminant, context hash).
type TransitionCache[C Cloneable[C]] = cache.TransitionCache[C]

// OptimizedMachine decorates a Machine with a TransitionCache.
type OptimizedMachine[C Cloneable[C]] = cache.OptimizedMachine[C]

// HashFn produces the context-identity hash OptimizedMachine/
// TransitionCache use for their cache key.
type HashFn[C any] = cache.HashFn[C]

// NewTransitionCache builds a cache with the given LRU capacity, context
// hash function and optional TTL (zero disables expiry).
func NewTransitionCache[C Cloneable[C]](capacity int, hash HashFn[C], ttl time.Duration) (*TransitionCache[C], error) {
	return cache.NewTransitionCache[C](capacity, hash, ttl)
}

// NewOptimizedMachine builds an OptimizedMachine wrapping m.
func NewOptimizedMachine[C Cloneable[C]](m *Machine[C], capacity int, hash HashFn[C], ttl time.Duration) (*OptimizedMachine[C], error) {
	return cache.NewOptimizedMachine[C](m, capacity, hash, ttl)
}

// HistoryManager tracks the last configuration seen at each registered
// history pseudo-state, for Builder.History/Machine.History use.
type HistoryManager[C any] = history.Manager[C]

// NewHistoryManager creates an empty HistoryManager.
func NewHistoryManager[C any]() *HistoryManager[C] {
	return history.NewManager[C]()
}

// Observer receives a notification for every Transition call an
// ObservedMachine mediates, and for every action error a Machine
// reports.
type Observer[C any] = observers.Observer[C]

// ObservedMachine decorates a Machine so every Transition call fans out
// to a fixed list of Observers.
type ObservedMachine[C Cloneable[C]] = observers.ObservedMachine[C]

// LoggingObserver logs every transition and action error at a
// configurable verbosity threshold.
type LoggingObserver[C any] = observers.LoggingObserver[C]

// MetricsObserver collects visit counts, dwell time, event counts,
// transition counts and an error count.
type MetricsObserver[C any] = observers.MetricsObserver[C]

// ValidationObserver checks a running Machine's transitions against an
// allowlist and records every violation.
type ValidationObserver[C any] = observers.ValidationObserver[C]

// NewObservedMachine pairs m with obs and installs a fan-out
// OnActionError hook.
func NewObservedMachine[C Cloneable[C]](m *Machine[C], obs ...Observer[C]) *ObservedMachine[C] {
	return observers.NewObservedMachine[C](m, obs...)
}

// NewLoggingObserver creates a logging observer at the given level with
// the given log-line prefix.
func NewLoggingObserver[C any](level LogLevel, prefix string) *LoggingObserver[C] {
	return observers.NewLoggingObserver[C](level, prefix)
}

// NewDefaultLoggingObserver creates a LogInfo-level logging observer
// prefixed "StateMachine".
func NewDefaultLoggingObserver[C any]() *LoggingObserver[C] {
	return observers.NewDefaultLoggingObserver[C]()
}

// NewMetricsObserver creates an empty metrics observer.
func NewMetricsObserver[C any]() *MetricsObserver[C] {
	return observers.NewMetricsObserver[C]()
}

// NewValidationObserver creates an empty validation observer.
func NewValidationObserver[C any]() *ValidationObserver[C] {
	return observers.NewValidationObserver[C]()
}

// StoreMiddleware builds a store.Middleware that logs every commit
// through logger at level, prefixed with prefix.
func StoreMiddleware[T any](logger Logger, level LogLevel, prefix string) store.Middleware[T] {
	return observers.StoreMiddleware[T](logger, level, prefix)
}

// Store is a mutex-guarded reactive value cell: Get/Set/Update/Mutate,
// ordered subscriber notification, and a middleware chain that can
// transform or reject a pending write.
type Store[T any] = store.Store[T]

// Middleware runs on every pending Store write; returning ok=false
// rejects the write.
type Middleware[T any] = store.Middleware[T]

// Subscription is the handle returned by Store.Subscribe, used to stop
// receiving notifications.
type Subscription = store.Subscription

// Slice is a read-only derived view of a Store, notified only when its
// selected projection changes under eq.
type Slice[T, U any] = store.Slice[T, U]

// Computed is a read-only value recomputed on demand and invalidated by
// its declared dependencies.
type Computed[U any] = store.Computed[U]

// History is an undo/redo ring over a Store's committed values.
type History[T any] = store.History[T]

// NewStore creates a Store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return store.New[T](initial)
}

// NewSlice derives a read-only Slice of parent, notified only when
// sel(parent.Get()) changes under eq.
func NewSlice[T, U any](parent *Store[T], sel func(T) U, eq func(a, b U) bool) *Slice[T, U] {
	return store.NewSlice[T, U](parent, sel, eq)
}

// NewComputed creates a Computed value, recomputed by recompute once at
// creation and again each time a supplied subscribe hook calls invalidate.
func NewComputed[U any](recompute func() U, subscribe ...func(invalidate func())) *Computed[U] {
	return store.NewComputed[U](recompute, subscribe...)
}

// NewStoreHistory wraps store with an undo/redo ring capped at maxSize
// entries.
func NewStoreHistory[T any](s *Store[T], maxSize int) *History[T] {
	return store.NewHistory[T](s, maxSize)
}

// ValidatingMiddleware builds a Middleware that rejects (calling
// onReject, if non-nil) any write for which validate returns an error.
func ValidatingMiddleware[T any](validate func(T) error, onReject func(error)) Middleware[T] {
	return store.ValidatingMiddleware[T](validate, onReject)
}

// StorageBackend persists Records by string key: a MemoryBackend or a
// FileBackend, or any other implementation (e.g. a database-backed one)
// satisfying the same interface.
type StorageBackend = persistence.StorageBackend

// Codec encodes/decodes a Record to bytes; JSONCodec and YAMLCodec are
// the two built in.
type Codec = persistence.Codec

// PersistenceManager saves/loads a Machine context under a string key
// through a StorageBackend. FileBackend writes and verifies a context
// checksum on each round trip; MemoryBackend does not.
type PersistenceManager[C any] = persistence.Manager[C]

// ContextCodec marshals/unmarshals a machine context for persistence;
// JSONContextCodec is the default.
type ContextCodec[C any] = persistence.ContextCodec[C]

// NewMemoryBackend creates a StorageBackend that keeps every Record in
// memory, rejecting writes once capacity bytes of encoded payload would
// be exceeded (capacity <= 0 disables the limit).
func NewMemoryBackend(capacity int64) *persistence.MemoryBackend {
	return persistence.NewMemoryBackend(capacity)
}

// NewFileBackend creates a StorageBackend that stores one file per key
// under dir, encoded with codec.
func NewFileBackend(dir string, codec Codec, capacity int64) (*persistence.FileBackend, error) {
	return persistence.NewFileBackend(dir, codec, capacity)
}

// NewPersistenceManager pairs a StorageBackend with a ContextCodec.
func NewPersistenceManager[C any](backend StorageBackend, ctxCodec ContextCodec[C]) *PersistenceManager[C] {
	return persistence.NewManager[C](backend, ctxCodec)
}

// NewJSONContextCodec creates the default JSON-based ContextCodec.
func NewJSONContextCodec[C any]() persistence.JSONContextCodec[C] {
	return persistence.JSONContextCodec[C]{}
}

// MachineDescriptor, StateDescriptor and TransitionDescriptor describe
// a Machine's graph for persistence/introspection.
type (
	MachineDescriptor    = persistence.MachineDescriptor
	StateDescriptor      = persistence.StateDescriptor
	TransitionDescriptor = persistence.TransitionDescriptor
)

// Metadata and Stats describe a MachineDescriptor's free-form envelope
// and computed size summary.
type (
	Metadata = persistence.Metadata
	Stats    = persistence.Stats
)

// DescribeMachine snapshots m's graph and state's active configuration
// into a MachineDescriptor identified by id, merging in meta (its Stats
// field is recomputed regardless of what is passed).
func DescribeMachine[C Cloneable[C]](id string, m *Machine[C], state MachineState[C], meta Metadata) MachineDescriptor {
	return persistence.DescribeMachine[C](id, m, state, meta)
}
