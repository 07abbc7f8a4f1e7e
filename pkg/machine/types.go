// Package machine implements the statechart graph (StateNode, Transition,
// Machine) and the pure transition engine that evaluates one event against
// one MachineState to produce the next MachineState. It generalizes
// anggasct/fluo's mutable, goroutine-driven pkg/core.StateMachine (an event
// queue drained by a background goroutine, holding the current state as
// mutable fields behind a mutex) into the side-effect-free
// transition(machine, state, event) -> state shape the spec calls for;
// anggasct/fluo's pkg/states (CompositeState, ParallelState, HistoryState,
// DeferState) and pkg/builders (StateMachineBuilder) supply the structural
// and fluent-building idioms this package keeps.
package machine

import (
	"github.com/fluo-state/fluo/pkg/action"
	"github.com/fluo-state/fluo/pkg/guard"
	"github.com/fluo-state/fluo/pkg/history"
	"github.com/fluo-state/fluo/pkg/value"
)

// Cloneable is the constraint a machine's context type must satisfy: every
// transition clones the context before running any action against it, so
// that a partially applied transition (e.g. aborted mid-way by a panic in
// caller code) never leaves the state preceding it mutated.
type Cloneable[C any] interface {
	Clone() C
}

// NodeKind discriminates the four shapes a StateNode can take.
type NodeKind int

const (
	// NodeAtomic is a leaf: no children, no initial child.
	NodeAtomic NodeKind = iota
	// NodeCompound nests children under an InitialChild.
	NodeCompound
	// NodeParallel activates every child in ChildOrder simultaneously as
	// independent regions.
	NodeParallel
	// NodeHistory is a pseudo-state: never itself entered as a persistent
	// value, it resolves through History to a real target.
	NodeHistory
)

// TransitionDef is one outgoing transition declared on a StateNode.
type TransitionDef[C Cloneable[C]] struct {
	Event   string
	Target  string
	Guards  []guard.Guard[C]
	Actions []action.Action[C]
}

// StateNode is one node of the statechart graph, identified by a
// machine-wide unique ID.
type StateNode[C Cloneable[C]] struct {
	ID           string
	Kind         NodeKind
	EntryActions []action.Action[C]
	ExitActions  []action.Action[C]
	// ChildOrder lists this node's children in declaration order: the
	// region order for NodeParallel, or the insertion order of a compound's
	// children (informational only — InitialChild picks the active one).
	ChildOrder   []string
	InitialChild string // NodeCompound only
	Transitions  []TransitionDef[C]
	History      *history.Def // NodeHistory only
	HistoryOwner string       // NodeHistory only: the compound id tracked in Machine.History
}

// Machine is an immutable statechart graph: a flat table of every StateNode
// (top-level and nested) keyed by ID, plus the id of the root state entered
// on Initial(). Machine itself holds no runtime configuration — that lives
// in MachineState — except for the optional attached History manager, which
// is inherently mutable (SPEC_FULL.md §4.6, §5).
type Machine[C Cloneable[C]] struct {
	States  map[string]*StateNode[C]
	RootID  string
	History *history.Manager[C]
	// OnActionError is invoked (if non-nil) whenever an Action.Exec returns
	// a non-nil error or a history target cannot be resolved; guards never
	// report here. The engine does not use the error for control flow
	// (SPEC_FULL.md §7), it only reaches observers/loggers through this hook.
	OnActionError func(nodeID, event string, err error)
}

// MachineState pairs a runtime configuration value with its context. It is
// the sole argument/result type of Transition, and is itself immutable from
// the caller's point of view — every Transition call returns a new value.
type MachineState[C Cloneable[C]] struct {
	Value   value.StateValue
	Context C
}

// Initial returns the machine's starting configuration and a freshly
// resolved (non-cloned) context — callers that need a clone should call
// initialCtx.Clone() themselves, since Machine has no way to synthesize a
// first context out of nothing.
func (m *Machine[C]) Initial(initialCtx C) MachineState[C] {
	return MachineState[C]{Value: m.resolveEntryValue(m.RootID), Context: initialCtx}
}

func (m *Machine[C]) reportError(nodeID, event string, err error) {
	if err != nil && m.OnActionError != nil {
		m.OnActionError(nodeID, event, err)
	}
}
