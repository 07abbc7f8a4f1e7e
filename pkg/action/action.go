// Package action implements the action algebra: side-effecting procedures
// over (context, event) executed during state entry/exit and transitions,
// plus the combinators used to compose them. Mirrors the capability set of
// anggasct/fluo's pkg/core.Action, generalized to the atomic-action
// catalogue and combinators the statechart spec requires.
package action

import (
	"fmt"
	"log"

	"github.com/fluo-state/fluo/pkg/core"
)

// Action executes a side effect against a context of type C. The engine
// treats every action as total: a failure is surfaced through a returned
// error which the caller may log, but it never rolls back prior actions
// (SPEC_FULL.md §7).
type Action[C any] interface {
	Exec(ctx C, event core.Event) error
	HasSideEffects() bool
	Describe() string
	Clone() Action[C]
}

// Func wraps an arbitrary procedure as an Action.
type Func[C any] struct {
	Name string
	Fn   func(ctx C, event core.Event) error
}

func (a Func[C]) Exec(ctx C, event core.Event) error { return a.Fn(ctx, event) }
func (a Func[C]) HasSideEffects() bool                { return true }
func (a Func[C]) Describe() string {
	if a.Name != "" {
		return a.Name
	}
	return "func"
}
func (a Func[C]) Clone() Action[C] { return a }

// Assign sets a field on the context via Set, with the value computed by Value.
type Assign[C any] struct {
	Field string
	Value func(ctx C, event core.Event) any
	Set   func(ctx C, value any)
}

func (a Assign[C]) Exec(ctx C, event core.Event) error {
	a.Set(ctx, a.Value(ctx, event))
	return nil
}
func (a Assign[C]) HasSideEffects() bool { return true }
func (a Assign[C]) Describe() string     { return "assign " + a.Field }
func (a Assign[C]) Clone() Action[C]     { return a }

// Level is the severity of a Log action.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Log emits a message built from Template, optionally including the
// context and/or event in the log line.
type Log[C any] struct {
	Level           Level
	Template        string
	IncludeContext  bool
	IncludeEvent    bool
	Logger          *log.Logger // nil uses log.Default()
}

func (a Log[C]) Exec(ctx C, event core.Event) error {
	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}
	msg := fmt.Sprintf("[%s] %s", a.Level, a.Template)
	if a.IncludeEvent {
		msg += fmt.Sprintf(" event=%s", event.Name)
	}
	if a.IncludeContext {
		msg += fmt.Sprintf(" ctx=%+v", ctx)
	}
	logger.Println(msg)
	return nil
}
func (a Log[C]) HasSideEffects() bool { return true }
func (a Log[C]) Describe() string     { return "log: " + a.Template }
func (a Log[C]) Clone() Action[C]     { return a }

// Pure performs no context mutation; it exists for actions whose only
// purpose is diagnostics or whose effect is entirely external (e.g.
// reading, not writing, state) and therefore declares HasSideEffects as
// false for optimization purposes.
type Pure[C any] struct {
	Name string
	Fn   func(ctx C, event core.Event)
}

func (a Pure[C]) Exec(ctx C, event core.Event) error {
	if a.Fn != nil {
		a.Fn(ctx, event)
	}
	return nil
}
func (a Pure[C]) HasSideEffects() bool { return false }
func (a Pure[C]) Describe() string {
	if a.Name != "" {
		return a.Name
	}
	return "pure"
}
func (a Pure[C]) Clone() Action[C] { return a }
