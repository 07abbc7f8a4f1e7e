// Package guard implements the guard algebra: pure predicates over
// (context, event) that gate transitions, plus the logical combinators used
// to compose them. Every guard is clonable and self-describing, mirroring
// the capability set anggasct/fluo gives its transition conditions
// (pkg/core.GuardCondition) but generalized to the richer atomic-guard
// catalogue the statechart spec calls for.
package guard

import (
	"fmt"
	"time"

	"github.com/fluo-state/fluo/pkg/core"
)

// Guard evaluates a condition over a context of type C and the triggering
// event. Implementations must be pure other than reading the wall clock
// (TimeLimit does this deliberately); Counter is the exception, since each
// Eval call advances its own evaluation count.
type Guard[C any] interface {
	Eval(ctx C, event core.Event) bool
	Describe() string
	Clone() Guard[C]
}

// Func wraps an arbitrary predicate as a Guard.
type Func[C any] struct {
	Name string
	Fn   func(ctx C, event core.Event) bool
}

func (f Func[C]) Eval(ctx C, event core.Event) bool { return f.Fn(ctx, event) }
func (f Func[C]) Describe() string {
	if f.Name != "" {
		return f.Name
	}
	return "func"
}
func (f Func[C]) Clone() Guard[C] { return f }

// FieldEquals checks that Extract(ctx) equals Value.
type FieldEquals[C any] struct {
	Field   string
	Extract func(C) any
	Value   any
}

func (g FieldEquals[C]) Eval(ctx C, _ core.Event) bool { return g.Extract(ctx) == g.Value }
func (g FieldEquals[C]) Describe() string {
	return fmt.Sprintf("%s == %v", g.Field, g.Value)
}
func (g FieldEquals[C]) Clone() Guard[C] { return g }

// Range checks that Extract(ctx) falls within [Min, Max] (either bound may
// be nil to leave that side unbounded).
type Range[C any] struct {
	Field   string
	Extract func(C) float64
	Min     *float64
	Max     *float64
}

func (g Range[C]) Eval(ctx C, _ core.Event) bool {
	v := g.Extract(ctx)
	if g.Min != nil && v < *g.Min {
		return false
	}
	if g.Max != nil && v > *g.Max {
		return false
	}
	return true
}
func (g Range[C]) Describe() string {
	lo, hi := "-inf", "+inf"
	if g.Min != nil {
		lo = fmt.Sprintf("%v", *g.Min)
	}
	if g.Max != nil {
		hi = fmt.Sprintf("%v", *g.Max)
	}
	return fmt.Sprintf("%s in [%s, %s]", g.Field, lo, hi)
}
func (g Range[C]) Clone() Guard[C] { return g }

// Op enumerates the relational operators Comparison supports.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Comparison relates two extracted float64 values by Op.
type Comparison[C any] struct {
	LeftName, RightName string
	Left, Right         func(C) float64
	Op                  Op
}

func (g Comparison[C]) Eval(ctx C, _ core.Event) bool {
	l, r := g.Left(ctx), g.Right(ctx)
	switch g.Op {
	case Eq:
		return l == r
	case Ne:
		return l != r
	case Lt:
		return l < r
	case Le:
		return l <= r
	case Gt:
		return l > r
	case Ge:
		return l >= r
	default:
		return false
	}
}
func (g Comparison[C]) Describe() string {
	return fmt.Sprintf("%s %s %s", g.LeftName, g.Op, g.RightName)
}
func (g Comparison[C]) Clone() Guard[C] { return g }

// NullCheck passes when Extract(ctx) is present (non-nil) iff WantPresent
// is true, or absent iff WantPresent is false.
type NullCheck[C any] struct {
	Field       string
	Extract     func(C) any
	WantPresent bool
}

func (g NullCheck[C]) Eval(ctx C, _ core.Event) bool {
	present := g.Extract(ctx) != nil
	return present == g.WantPresent
}
func (g NullCheck[C]) Describe() string {
	if g.WantPresent {
		return g.Field + " present"
	}
	return g.Field + " absent"
}
func (g NullCheck[C]) Clone() Guard[C] { return g }

// EventType passes when the event's discriminant contains Pattern.
type EventType[C any] struct {
	Pattern string
}

func (g EventType[C]) Eval(_ C, event core.Event) bool {
	return containsSubstring(event.Discriminant(), g.Pattern)
}
func (g EventType[C]) Describe() string       { return "event-type contains " + g.Pattern }
func (g EventType[C]) Clone() Guard[C]        { return g }
func containsSubstring(s, substr string) bool {
	return len(substr) == 0 || indexOf(s, substr) >= 0
}
func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}

// StatePredicate passes when the injected current-state getter returns
// Literal.
type StatePredicate[C any] struct {
	Literal   string
	CurrentFn func() string
}

func (g StatePredicate[C]) Eval(_ C, _ core.Event) bool { return g.CurrentFn() == g.Literal }
func (g StatePredicate[C]) Describe() string            { return "state == " + g.Literal }
func (g StatePredicate[C]) Clone() Guard[C]             { return g }

// TimeLimit passes once at least Elapsed has passed since the tracked
// instant returned by Since. Since is typically captured once when the
// guard is built (e.g. machine entry time) and re-read on every Eval.
type TimeLimit[C any] struct {
	Elapsed time.Duration
	Since   func() time.Time
}

func (g TimeLimit[C]) Eval(_ C, _ core.Event) bool {
	return time.Since(g.Since()) >= g.Elapsed
}
func (g TimeLimit[C]) Describe() string { return fmt.Sprintf("elapsed >= %s", g.Elapsed) }
func (g TimeLimit[C]) Clone() Guard[C]  { return g }

// Counter passes for its first Limit evaluations and is false thereafter.
// (See SPEC_FULL.md §9 note 4 for why this reading of "counter" was chosen
// over the alternative "false until N, then true" reading.)
type Counter[C any] struct {
	Limit int
	count int
}

func (g *Counter[C]) Eval(_ C, _ core.Event) bool {
	if g.count >= g.Limit {
		return false
	}
	g.count++
	return true
}
func (g *Counter[C]) Describe() string { return fmt.Sprintf("counter < %d", g.Limit) }
func (g *Counter[C]) Clone() Guard[C]  { cp := *g; return &cp }
