package observers

import (
	"fmt"
	"sync"

	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
)

// ValidationObserver checks a running Machine against an allowlist of
// configuration transitions and records every visited configuration,
// generalized from anggasct/fluo's pkg/observers.ValidationObserver (which
// tracked core.State.Name() directly) to the StateValue string of a
// MachineState.
type ValidationObserver[C any] struct {
	mu                 sync.RWMutex
	expectedStates     map[string]bool
	visitedStates      map[string]bool
	allowedTransitions map[string]map[string]bool
	violations         []string
}

// NewValidationObserver creates an empty validation observer. With no
// AddAllowedTransition calls, every transition is permitted — the allowlist
// is opt-in per source configuration.
func NewValidationObserver[C any]() *ValidationObserver[C] {
	return &ValidationObserver[C]{
		expectedStates:     make(map[string]bool),
		visitedStates:      make(map[string]bool),
		allowedTransitions: make(map[string]map[string]bool),
	}
}

// AddExpectedState records a configuration string that should eventually be
// visited (checked with UnvisitedStates).
func (o *ValidationObserver[C]) AddExpectedState(stateValue string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expectedStates[stateValue] = true
}

// AddAllowedTransition whitelists one from -> to configuration pair. Once
// any entry exists for a given from, every to not explicitly whitelisted is
// flagged as a violation.
func (o *ValidationObserver[C]) AddAllowedTransition(from, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.allowedTransitions[from]; !ok {
		o.allowedTransitions[from] = make(map[string]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnTransition marks the resulting configuration visited and, if the
// source configuration has a registered allowlist, flags an unlisted
// target as a violation.
func (o *ValidationObserver[C]) OnTransition(from, to machine.MachineState[C], event core.Event, changed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	toStr := to.Value.String()
	o.visitedStates[toStr] = true
	if !changed {
		return
	}

	fromStr := from.Value.String()
	if allowed, exists := o.allowedTransitions[fromStr]; exists && !allowed[toStr] {
		o.violations = append(o.violations, fmt.Sprintf(
			"invalid transition from %q to %q on event %q", fromStr, toStr, event.Name))
	}
}

// OnActionError records every action error as a violation.
func (o *ValidationObserver[C]) OnActionError(nodeID, event string, err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("action error in state %s on event %s: %v", nodeID, event, err))
}

// Violations returns every violation recorded so far, in order.
func (o *ValidationObserver[C]) Violations() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, len(o.violations))
	copy(out, o.violations)
	return out
}

// UnvisitedStates returns every AddExpectedState entry not yet reached.
func (o *ValidationObserver[C]) UnvisitedStates() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var unvisited []string
	for s := range o.expectedStates {
		if !o.visitedStates[s] {
			unvisited = append(unvisited, s)
		}
	}
	return unvisited
}

// HasViolations reports whether any violation was recorded.
func (o *ValidationObserver[C]) HasViolations() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.violations) > 0
}

// Reset clears visited-state tracking and the violation log (but not the
// configured allowlist/expected-state registrations).
func (o *ValidationObserver[C]) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visitedStates = make(map[string]bool)
	o.violations = nil
}
