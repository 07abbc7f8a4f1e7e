package observers

import (
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
)

// Observer is the capability set every observer in this package
// implements: notified of every Transition call's outcome (matched or
// identity) and of every action error the underlying Machine
// reports through its OnActionError hook.
type Observer[C any] interface {
	OnTransition(from, to machine.MachineState[C], event core.Event, changed bool)
	OnActionError(nodeID, event string, err error)
}

// ObservedMachine wraps a Machine so that every Transition call fans out
// to a fixed list of Observers, mirroring the shape of
// cache.OptimizedMachine (a thin decorator around the same pure
// machine.Transition call) rather than reintroducing anggasct/fluo's
// mutable StateMachine-with-observer-list design.
type ObservedMachine[C machine.Cloneable[C]] struct {
	M         *machine.Machine[C]
	Observers []Observer[C]
}

// NewObservedMachine pairs m with obs, and installs a fan-out
// OnActionError hook on m (preserving any hook already installed) so every
// observer also sees action errors.
func NewObservedMachine[C machine.Cloneable[C]](m *machine.Machine[C], obs ...Observer[C]) *ObservedMachine[C] {
	om := &ObservedMachine[C]{M: m, Observers: obs}
	prev := m.OnActionError
	m.OnActionError = func(nodeID, event string, err error) {
		if prev != nil {
			prev(nodeID, event, err)
		}
		for _, o := range om.Observers {
			o.OnActionError(nodeID, event, err)
		}
	}
	return om
}

// Transition runs machine.Transition and notifies every observer, in
// registration order, with the before/after states and whether anything
// changed.
func (om *ObservedMachine[C]) Transition(state machine.MachineState[C], event core.Event) machine.MachineState[C] {
	next := machine.Transition(om.M, state, event)
	changed := !next.Value.Equal(state.Value)
	for _, o := range om.Observers {
		o.OnTransition(state, next, event, changed)
	}
	return next
}
