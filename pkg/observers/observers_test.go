package observers_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/action"
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/observers"
)

type ctx struct{}

func (c ctx) Clone() ctx { return c }

func buildTrafficLight(t *testing.T) *machine.Machine[ctx] {
	t.Helper()
	b := machine.NewBuilder[ctx]().Atomic("red").Atomic("green").Atomic("yellow").Initial("red")
	b.On("red", "TICK", "green", nil, nil)
	b.On("green", "TICK", "yellow", nil, nil)
	b.On("yellow", "TICK", "red", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestMetricsObserverCountsTransitionsAndEvents(t *testing.T) {
	m := buildTrafficLight(t)
	metrics := observers.NewMetricsObserver[ctx]()
	om := observers.NewObservedMachine[ctx](m, metrics)

	s := m.Initial(ctx{})
	tick := core.NewEvent("TICK")
	s = om.Transition(s, tick)
	s = om.Transition(s, tick)
	_ = om.Transition(s, core.NewEvent("NOPE"))

	assert.Equal(t, 2, metrics.EventCounts()["TICK"])
	assert.Equal(t, 1, metrics.EventCounts()["NOPE"])
	assert.Equal(t, 1, metrics.TransitionCounts()["red->green"])
	assert.Equal(t, 1, metrics.TransitionCounts()["green->yellow"])
	assert.Equal(t, 1, metrics.StateVisitCounts()["yellow"])
}

func TestMetricsObserverRecordsActionErrors(t *testing.T) {
	b := machine.NewBuilder[ctx]().Atomic("a").Atomic("b").Initial("a")
	boom := action.Func[ctx]{Name: "boom", Fn: func(ctx, core.Event) error { return errors.New("boom") }}
	b.On("a", "GO", "b", nil, []action.Action[ctx]{boom})
	m, err := b.Build()
	require.NoError(t, err)

	metrics := observers.NewMetricsObserver[ctx]()
	om := observers.NewObservedMachine[ctx](m, metrics)
	om.Transition(m.Initial(ctx{}), core.NewEvent("GO"))

	assert.Equal(t, 1, metrics.ErrorCount())
}

func TestValidationObserverFlagsDisallowedTransition(t *testing.T) {
	m := buildTrafficLight(t)
	v := observers.NewValidationObserver[ctx]()
	v.AddAllowedTransition("red", "green")
	v.AddAllowedTransition("green", "red")
	om := observers.NewObservedMachine[ctx](m, v)

	s := om.Transition(m.Initial(ctx{}), core.NewEvent("TICK"))
	assert.False(t, v.HasViolations())

	om.Transition(s, core.NewEvent("TICK")) // green -> yellow, not in green's allowlist
	assert.True(t, v.HasViolations())
}

func TestLoggingObserverRespectsLevel(t *testing.T) {
	m := buildTrafficLight(t)
	var lines []string
	logger := recordingLogger(func(format string, args ...any) {
		lines = append(lines, format)
	})
	lo := observers.NewLoggingObserver[ctx](observers.LogError, "test")
	lo.SetLogger(logger)
	om := observers.NewObservedMachine[ctx](m, lo)

	om.Transition(m.Initial(ctx{}), core.NewEvent("TICK"))
	assert.Empty(t, lines, "LogInfo-level transition message should be suppressed at LogError threshold")

	lo.SetLogger(logger)
	lo2 := observers.NewLoggingObserver[ctx](observers.LogInfo, "test")
	lo2.SetLogger(logger)
	om2 := observers.NewObservedMachine[ctx](m, lo2)
	om2.Transition(m.Initial(ctx{}), core.NewEvent("TICK"))
	assert.NotEmpty(t, lines)
}

type recordingLogger func(format string, args ...any)

func (r recordingLogger) Printf(format string, args ...any) { r(format, args...) }
