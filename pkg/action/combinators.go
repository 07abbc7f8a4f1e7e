package action

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fluo-state/fluo/pkg/core"
)

// Conditional runs Then if Predicate(ctx, event) is true, else Else (which
// may be nil, meaning "do nothing").
type Conditional[C any] struct {
	Predicate func(ctx C, event core.Event) bool
	Then      Action[C]
	Else      Action[C]
}

func (a Conditional[C]) Exec(ctx C, event core.Event) error {
	if a.Predicate(ctx, event) {
		return a.Then.Exec(ctx, event)
	}
	if a.Else != nil {
		return a.Else.Exec(ctx, event)
	}
	return nil
}
func (a Conditional[C]) HasSideEffects() bool {
	if a.Then.HasSideEffects() {
		return true
	}
	return a.Else != nil && a.Else.HasSideEffects()
}
func (a Conditional[C]) Describe() string {
	desc := "if(...) " + a.Then.Describe()
	if a.Else != nil {
		desc += " else " + a.Else.Describe()
	}
	return desc
}
func (a Conditional[C]) Clone() Action[C] {
	cp := Conditional[C]{Predicate: a.Predicate, Then: a.Then.Clone()}
	if a.Else != nil {
		cp.Else = a.Else.Clone()
	}
	return cp
}

// Sequential runs its actions in order, stopping at and returning the
// first error.
type Sequential[C any] struct {
	Actions []Action[C]
}

func (a Sequential[C]) Exec(ctx C, event core.Event) error {
	for _, act := range a.Actions {
		if err := act.Exec(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
func (a Sequential[C]) HasSideEffects() bool { return anySideEffect(a.Actions) }
func (a Sequential[C]) Describe() string     { return describeAll(a.Actions, "; ") }
func (a Sequential[C]) Clone() Action[C]     { return Sequential[C]{Actions: cloneAll(a.Actions)} }

// ParallelUnordered tags a set of actions as conceptually concurrent. The
// engine is single-threaded, so execution is sequential — this type exists
// to preserve the caller's intent for a future scheduler (SPEC_FULL.md §4.2,
// §9 open question 3), not to change behavior today.
type ParallelUnordered[C any] struct {
	Actions []Action[C]
}

func (a ParallelUnordered[C]) Exec(ctx C, event core.Event) error {
	for _, act := range a.Actions {
		if err := act.Exec(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
func (a ParallelUnordered[C]) HasSideEffects() bool { return anySideEffect(a.Actions) }
func (a ParallelUnordered[C]) Describe() string     { return "parallel(" + describeAll(a.Actions, ", ") + ")" }
func (a ParallelUnordered[C]) Clone() Action[C] {
	return ParallelUnordered[C]{Actions: cloneAll(a.Actions)}
}

// SelectionPolicy governs which of Composite's child actions get executed.
type SelectionPolicy int

const (
	// All runs every action, in order, and returns the first error (if any)
	// after all of them have run.
	All SelectionPolicy = iota
	// UntilSuccess and UntilFailure require a notion of per-action success
	// that the total Action contract does not expose; per SPEC_FULL.md §4.2
	// and §9 open question 2, both fall back to All semantics.
	UntilSuccess
	UntilFailure
	// Random runs exactly one action chosen uniformly at random.
	Random
	// Weighted runs exactly one action chosen according to Composite.Weights.
	Weighted
)

// Composite runs its child actions according to Policy.
type Composite[C any] struct {
	Policy  SelectionPolicy
	Actions []Action[C]
	Weights []int // parallel to Actions, used only when Policy == Weighted
	Rand    *rand.Rand
}

func (a Composite[C]) Exec(ctx C, event core.Event) error {
	switch a.Policy {
	case Random:
		if len(a.Actions) == 0 {
			return nil
		}
		idx := a.rand().Intn(len(a.Actions))
		return a.Actions[idx].Exec(ctx, event)
	case Weighted:
		idx := a.weightedIndex()
		if idx < 0 {
			return nil
		}
		return a.Actions[idx].Exec(ctx, event)
	default: // All, UntilSuccess, UntilFailure all behave as All
		var firstErr error
		for _, act := range a.Actions {
			if err := act.Exec(ctx, event); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

func (a Composite[C]) rand() *rand.Rand {
	if a.Rand != nil {
		return a.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (a Composite[C]) weightedIndex() int {
	total := 0
	for _, w := range a.Weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	pick := a.rand().Intn(total)
	acc := 0
	for i, w := range a.Weights {
		acc += w
		if pick < acc {
			return i
		}
	}
	return len(a.Weights) - 1
}

func (a Composite[C]) HasSideEffects() bool { return anySideEffect(a.Actions) }
func (a Composite[C]) Describe() string {
	policy := [...]string{"all", "until-success", "until-failure", "random", "weighted"}[a.Policy]
	return fmt.Sprintf("composite(%s: %s)", policy, describeAll(a.Actions, ", "))
}
func (a Composite[C]) Clone() Action[C] {
	cp := a
	cp.Actions = cloneAll(a.Actions)
	if a.Weights != nil {
		cp.Weights = append([]int(nil), a.Weights...)
	}
	return cp
}

func anySideEffect[C any](actions []Action[C]) bool {
	for _, a := range actions {
		if a.HasSideEffects() {
			return true
		}
	}
	return false
}

func cloneAll[C any](actions []Action[C]) []Action[C] {
	out := make([]Action[C], len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}

func describeAll[C any](actions []Action[C], sep string) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = a.Describe()
	}
	return strings.Join(parts, sep)
}
