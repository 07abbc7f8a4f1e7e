// Package observers implements the ambient logging/metrics/validation
// observers that plug into the statechart engine and the reactive store:
// a small capability set (OnTransition, OnActionError) any observer
// implements, plus a Machine wrapper that notifies a registered list of
// them on every Transition call. Adapted from anggasct/fluo's
// pkg/observers (StateMachineObserver, LoggingObserver, MetricsObserver,
// ValidationObserver), which hooked a mutable, goroutine-driven
// core.StateMachine directly; here the same observer shapes are
// generalized to the pure machine.Transition model and parameterized over
// the caller's context type.
package observers

import (
	"fmt"
	"log"
	"sync"

	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/store"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogError logs only errors.
	LogError LogLevel = iota
	// LogWarning logs errors and warnings.
	LogWarning
	// LogInfo logs errors, warnings, and info.
	LogInfo
	// LogDebug logs errors, warnings, info, and debug.
	LogDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "ERROR"
	case LogWarning:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is the capability LoggingObserver needs; *log.Logger already
// satisfies it, giving the package a dependency-free DefaultLogger
// without forcing callers onto a specific logging library.
type Logger interface {
	Printf(format string, args ...any)
}

// DefaultLogger is log.Default(), used whenever a LoggingObserver is built
// without an explicit Logger.
var DefaultLogger Logger = log.Default()

// LoggingObserver logs every transition (and action error) a Machine
// reports, at or below its configured LogLevel.
type LoggingObserver[C any] struct {
	mu     sync.RWMutex
	level  LogLevel
	prefix string
	logger Logger
}

// NewLoggingObserver creates a logging observer at the given level, each
// line prefixed with prefix (ignored if empty).
func NewLoggingObserver[C any](level LogLevel, prefix string) *LoggingObserver[C] {
	return &LoggingObserver[C]{level: level, prefix: prefix, logger: DefaultLogger}
}

// SetLogger overrides the observer's Logger (e.g. to redirect to a
// structured logging library imported by the application).
func (o *LoggingObserver[C]) SetLogger(l Logger) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger = l
}

func (o *LoggingObserver[C]) log(level LogLevel, format string, args ...any) {
	o.mu.RLock()
	threshold, prefix, logger := o.level, o.prefix, o.logger
	o.mu.RUnlock()
	if level > threshold {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if prefix != "" {
		logger.Printf("[%s] [%s] %s", prefix, level, msg)
		return
	}
	logger.Printf("[%s] %s", level, msg)
}

// OnTransition logs the matched (or identity) transition.
func (o *LoggingObserver[C]) OnTransition(from, to machine.MachineState[C], event core.Event, changed bool) {
	if !changed {
		o.log(LogDebug, "no transition matched: %s on event %s", from.Value.String(), event.Name)
		return
	}
	o.log(LogInfo, "transition: %s -> %s on event %s", from.Value.String(), to.Value.String(), event.Name)
}

// OnActionError logs a non-nil action failure reported by the
// Machine's OnActionError hook.
func (o *LoggingObserver[C]) OnActionError(nodeID, event string, err error) {
	if err == nil {
		return
	}
	o.log(LogError, "action error in state %s on event %s: %v", nodeID, event, err)
}

// StoreMiddleware adapts logger into a store.Middleware[T] that logs every
// proposed write and always accepts it (pure observation, per SPEC_FULL.md
// §4.7 — middleware may log, validate, or emit side effects, but a logging
// middleware never rejects).
func StoreMiddleware[T any](logger Logger, level LogLevel, prefix string) store.Middleware[T] {
	return func(prev, next T) (T, bool) {
		if prefix != "" {
			logger.Printf("[%s] [%s] store commit: %+v -> %+v", prefix, level, prev, next)
		} else {
			logger.Printf("[%s] store commit: %+v -> %+v", level, prev, next)
		}
		return next, true
	}
}
