package guard

import (
	"fmt"
	"strings"

	"github.com/fluo-state/fluo/pkg/core"
)

// And passes iff every child guard passes. Children are evaluated in
// declaration order; evaluation stops at the first false, so a Counter
// placed after a failing child is not evaluated and its count does not
// advance.
type And[C any] struct {
	Guards []Guard[C]
}

func (g And[C]) Eval(ctx C, event core.Event) bool {
	for _, child := range g.Guards {
		if !child.Eval(ctx, event) {
			return false
		}
	}
	return true
}
func (g And[C]) Describe() string { return joinDescriptions(g.Guards, " && ") }
func (g And[C]) Clone() Guard[C]  { return And[C]{Guards: cloneAll(g.Guards)} }

// Or passes iff at least one child guard passes.
type Or[C any] struct {
	Guards []Guard[C]
}

func (g Or[C]) Eval(ctx C, event core.Event) bool {
	for _, child := range g.Guards {
		if child.Eval(ctx, event) {
			return true
		}
	}
	return false
}
func (g Or[C]) Describe() string { return joinDescriptions(g.Guards, " || ") }
func (g Or[C]) Clone() Guard[C]  { return Or[C]{Guards: cloneAll(g.Guards)} }

// Not inverts its child guard.
type Not[C any] struct {
	Guard Guard[C]
}

func (g Not[C]) Eval(ctx C, event core.Event) bool { return !g.Guard.Eval(ctx, event) }
func (g Not[C]) Describe() string                  { return "!(" + g.Guard.Describe() + ")" }
func (g Not[C]) Clone() Guard[C]                   { return Not[C]{Guard: g.Guard.Clone()} }

// Xor passes iff exactly one child guard passes.
type Xor[C any] struct {
	Guards []Guard[C]
}

func (g Xor[C]) Eval(ctx C, event core.Event) bool {
	count := 0
	for _, child := range g.Guards {
		if child.Eval(ctx, event) {
			count++
		}
	}
	return count == 1
}
func (g Xor[C]) Describe() string { return joinDescriptions(g.Guards, " xor ") }
func (g Xor[C]) Clone() Guard[C]  { return Xor[C]{Guards: cloneAll(g.Guards)} }

// Majority passes iff strictly more than half of the child guards pass.
type Majority[C any] struct {
	Guards []Guard[C]
}

func (g Majority[C]) Eval(ctx C, event core.Event) bool {
	count := 0
	for _, child := range g.Guards {
		if child.Eval(ctx, event) {
			count++
		}
	}
	return count*2 > len(g.Guards)
}
func (g Majority[C]) Describe() string { return fmt.Sprintf("majority(%s)", joinDescriptions(g.Guards, ", ")) }
func (g Majority[C]) Clone() Guard[C]  { return Majority[C]{Guards: cloneAll(g.Guards)} }

func cloneAll[C any](guards []Guard[C]) []Guard[C] {
	out := make([]Guard[C], len(guards))
	for i, gd := range guards {
		out[i] = gd.Clone()
	}
	return out
}

func joinDescriptions[C any](guards []Guard[C], sep string) string {
	parts := make([]string, len(guards))
	for i, gd := range guards {
		parts[i] = gd.Describe()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
