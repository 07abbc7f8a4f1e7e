package machine

import (
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/utils"
)

// StrictMachine wraps a Machine so that action failures and history
// misses are returned as errors instead of merely reaching OnActionError.
// The underlying Transition algorithm is unchanged — StrictMachine just
// installs a collecting OnActionError hook around each call and also
// rejects events with no matching transition as utils.RuntimeError{
// InvalidTransition} rather than silently returning the input unchanged.
type StrictMachine[C Cloneable[C]] struct {
	*Machine[C]
}

// NewStrict wraps m for strict (error-surfacing) transition semantics.
func NewStrict[C Cloneable[C]](m *Machine[C]) *StrictMachine[C] {
	return &StrictMachine[C]{Machine: m}
}

// Transition behaves like the package-level Transition, but returns the
// first action error or history miss observed during the call (if any), and returns
// utils.RuntimeError{InvalidTransition} if event matched nothing anywhere
// in the active configuration.
func (s *StrictMachine[C]) Transition(state MachineState[C], event core.Event) (MachineState[C], error) {
	var firstErr error
	prevHook := s.Machine.OnActionError
	s.Machine.OnActionError = func(nodeID, ev string, err error) {
		if firstErr == nil {
			firstErr = err
		}
		if prevHook != nil {
			prevHook(nodeID, ev, err)
		}
	}
	defer func() { s.Machine.OnActionError = prevHook }()

	newVal, newCtx, changed := s.Machine.transitionAt(state.Value, state.Context, event)
	next := state
	if changed {
		if s.Machine.History != nil {
			s.Machine.History.RecordExits(state.Value, newVal, state.Context)
		}
		next = MachineState[C]{Value: newVal, Context: newCtx}
	}
	if firstErr != nil {
		return next, firstErr
	}
	if !changed {
		return next, &utils.RuntimeError{Kind: utils.InvalidTransition, From: next.Value.String(), Event: event.Name}
	}
	return next, nil
}
