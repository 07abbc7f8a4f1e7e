package observers

import (
	"sync"
	"time"

	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
)

// MetricsObserver collects counters about a Machine's execution: how often
// each configuration string was entered, how long the machine dwelled in
// each one, per-event counts, per-transition counts, and a running error
// count. Adapted from anggasct/fluo's pkg/observers.MetricsObserver, which
// keyed everything off core.State.Name(); here the key is the full
// StateValue string (e.g. "power.on" or "[motor.on, light.off]"), since a
// MachineState has no single "current state name" once compound/parallel
// values are involved.
type MetricsObserver[C any] struct {
	mu               sync.RWMutex
	stateVisits      map[string]int
	stateTimeSpent   map[string]time.Duration
	lastEntry        map[string]time.Time
	eventCounts      map[string]int
	transitionCounts map[string]int
	errorCount       int
}

// NewMetricsObserver creates an empty metrics observer.
func NewMetricsObserver[C any]() *MetricsObserver[C] {
	return &MetricsObserver[C]{
		stateVisits:      make(map[string]int),
		stateTimeSpent:   make(map[string]time.Duration),
		lastEntry:        make(map[string]time.Time),
		eventCounts:      make(map[string]int),
		transitionCounts: make(map[string]int),
	}
}

// OnTransition records one transition attempt. A non-change (event matched
// nothing anywhere in the active configuration) still counts toward
// EventCounts but not toward state visits or TransitionCounts.
func (o *MetricsObserver[C]) OnTransition(from, to machine.MachineState[C], event core.Event, changed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.eventCounts[event.Discriminant()]++
	if !changed {
		return
	}

	fromStr, toStr := from.Value.String(), to.Value.String()
	if entry, ok := o.lastEntry[fromStr]; ok {
		o.stateTimeSpent[fromStr] += time.Since(entry)
		delete(o.lastEntry, fromStr)
	}
	o.stateVisits[toStr]++
	o.lastEntry[toStr] = time.Now()
	o.transitionCounts[fromStr+"->"+toStr]++
}

// OnActionError increments the error count.
func (o *MetricsObserver[C]) OnActionError(_, _ string, err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errorCount++
}

// StateVisitCounts returns how many times each configuration string was
// entered.
func (o *MetricsObserver[C]) StateVisitCounts() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyIntMap(o.stateVisits)
}

// StateTimeSpent returns accumulated dwell time per configuration string,
// for configurations already exited (the currently active one is not
// folded in until it is next exited).
func (o *MetricsObserver[C]) StateTimeSpent() map[string]time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]time.Duration, len(o.stateTimeSpent))
	for k, v := range o.stateTimeSpent {
		out[k] = v
	}
	return out
}

// EventCounts returns how many times each event discriminant was
// dispatched, matched or not.
func (o *MetricsObserver[C]) EventCounts() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyIntMap(o.eventCounts)
}

// TransitionCounts returns how many times each "from->to" configuration
// pair occurred.
func (o *MetricsObserver[C]) TransitionCounts() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyIntMap(o.transitionCounts)
}

// ErrorCount returns the number of action errors observed.
func (o *MetricsObserver[C]) ErrorCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.errorCount
}

// Reset clears every counter.
func (o *MetricsObserver[C]) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stateVisits = make(map[string]int)
	o.stateTimeSpent = make(map[string]time.Duration)
	o.lastEntry = make(map[string]time.Time)
	o.eventCounts = make(map[string]int)
	o.transitionCounts = make(map[string]int)
	o.errorCount = 0
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
