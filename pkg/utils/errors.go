// Package utils provides the error catalogue and identifier/duration
// helpers shared across the statechart runtime and reactive store,
// generalizing anggasct/fluo's single flat StateMachineError into the five
// error families the spec calls for (build, runtime, persistence, store,
// migration), each with a stable Kind() for display and test assertions.
package utils

import "fmt"

// BuildErrorKind enumerates the Machine-builder failure kinds.
type BuildErrorKind string

const (
	InitialStateMissing  BuildErrorKind = "INITIAL_STATE_MISSING"
	StateNotFound        BuildErrorKind = "STATE_NOT_FOUND"
	TransitionTargetMiss BuildErrorKind = "TRANSITION_TARGET_MISSING"
	CompoundNoInitial    BuildErrorKind = "COMPOUND_WITHOUT_INITIAL"
	DuplicateIdentifier  BuildErrorKind = "DUPLICATE_IDENTIFIER"
)

// BuildError reports a Machine.Build() validation failure.
type BuildError struct {
	Kind    BuildErrorKind
	Subject string // state/transition id at fault
	Detail  string // e.g. transition target for TransitionTargetMiss
}

func (e *BuildError) Error() string {
	switch e.Kind {
	case InitialStateMissing:
		return "build: initial state missing"
	case StateNotFound:
		return fmt.Sprintf("build: state not found: %s", e.Subject)
	case TransitionTargetMiss:
		return fmt.Sprintf("build: transition target missing: %s -> %s", e.Subject, e.Detail)
	case CompoundNoInitial:
		return fmt.Sprintf("build: compound state without initial child: %s", e.Subject)
	case DuplicateIdentifier:
		return fmt.Sprintf("build: duplicate identifier: %s", e.Subject)
	default:
		return "build: unknown error"
	}
}

// RuntimeErrorKind enumerates transition-time failure kinds.
type RuntimeErrorKind string

const (
	InvalidTransition RuntimeErrorKind = "INVALID_TRANSITION"
	GuardFailed       RuntimeErrorKind = "GUARD_FAILED"
	ActionFailed      RuntimeErrorKind = "ACTION_FAILED"
	HistoryMiss       RuntimeErrorKind = "HISTORY_MISS"
)

// RuntimeError reports a transition-time failure. Under the default
// (non-strict) propagation policy these are logged and absorbed rather
// than returned; StrictMachine surfaces them explicitly.
type RuntimeError struct {
	Kind   RuntimeErrorKind
	From   string
	Event  string
	Reason string
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case InvalidTransition:
		return fmt.Sprintf("runtime: invalid transition from %s on %s", e.From, e.Event)
	case GuardFailed:
		return fmt.Sprintf("runtime: guard failed: %s", e.Reason)
	case ActionFailed:
		return fmt.Sprintf("runtime: action failed: %s", e.Reason)
	case HistoryMiss:
		return fmt.Sprintf("runtime: history miss for %s", e.From)
	default:
		return "runtime: unknown error"
	}
}

// PersistenceErrorKind enumerates storage-layer failure kinds.
type PersistenceErrorKind string

const (
	KeyNotFound     PersistenceErrorKind = "KEY_NOT_FOUND"
	StorageFull     PersistenceErrorKind = "STORAGE_FULL"
	Serialization   PersistenceErrorKind = "SERIALIZATION"
	Deserialization PersistenceErrorKind = "DESERIALIZATION"
	IOError         PersistenceErrorKind = "IO"
	NotInitialized  PersistenceErrorKind = "NOT_INITIALIZED"
)

// PersistenceError reports a storage-layer failure. Persistence errors are
// always explicit — never absorbed the way transition errors are.
type PersistenceError struct {
	Kind   PersistenceErrorKind
	Key    string
	Cause  error
	Needed int64
	Avail  int64
}

func (e *PersistenceError) Error() string {
	switch e.Kind {
	case KeyNotFound:
		return fmt.Sprintf("persistence: key not found: %s", e.Key)
	case StorageFull:
		return fmt.Sprintf("persistence: storage full: need %d, have %d", e.Needed, e.Avail)
	case Serialization:
		return fmt.Sprintf("persistence: serialization failed: %v", e.Cause)
	case Deserialization:
		return fmt.Sprintf("persistence: deserialization failed: %v", e.Cause)
	case IOError:
		return fmt.Sprintf("persistence: io error: %v", e.Cause)
	case NotInitialized:
		return "persistence: backend not initialized"
	default:
		return "persistence: unknown error"
	}
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// StoreErrorKind enumerates reactive-store failure kinds.
type StoreErrorKind string

const (
	NoHistory        StoreErrorKind = "NO_HISTORY"
	ValidationFailed StoreErrorKind = "VALIDATION_FAILED"
)

// StoreError reports a reactive-store failure.
type StoreError struct {
	Kind   StoreErrorKind
	Reason string
}

func (e *StoreError) Error() string {
	switch e.Kind {
	case NoHistory:
		return "store: no history to undo/redo"
	case ValidationFailed:
		return "store: validation failed: " + e.Reason
	default:
		return "store: unknown error"
	}
}

// MigrationError reports a persisted-record schema version mismatch.
type MigrationError struct {
	Found, Expected uint32
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration: schema version mismatch: found %d, expected %d", e.Found, e.Expected)
}
