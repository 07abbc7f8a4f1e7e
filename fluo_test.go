package fluo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo"
)

type trafficCtx struct{}

func (c trafficCtx) Clone() trafficCtx { return c }

func TestTrafficLightReachesGreenAfterFourTicks(t *testing.T) {
	b := fluo.NewBuilder[trafficCtx]().Atomic("red").Atomic("yellow").Atomic("green").Initial("red")
	b.On("red", "timer", "green", nil, nil)
	b.On("green", "timer", "yellow", nil, nil)
	b.On("yellow", "timer", "red", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	state := m.Initial(trafficCtx{})
	timer := fluo.NewEvent("timer")
	for i := 0; i < 4; i++ {
		state = fluo.Transition[trafficCtx](m, state, timer)
	}

	assert.True(t, state.Value.Equal(fluo.Atom("green")))
}

type healCtx struct {
	Coins  int
	Health int
}

func (c healCtx) Clone() healCtx { return c }

func buildHealMachine(t *testing.T) *fluo.Machine[healCtx] {
	t.Helper()
	canHeal := guardFunc{fn: func(c healCtx) bool { return c.Coins == 10 && c.Health < 100 }}
	b := fluo.NewBuilder[healCtx]().Atomic("idle").Atomic("healing").Initial("idle")
	b.On("idle", "Heal", "healing", []fluo.Guard[healCtx]{canHeal}, nil)
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

type guardFunc struct{ fn func(healCtx) bool }

func (g guardFunc) Eval(ctx healCtx, _ fluo.Event) bool { return g.fn(ctx) }
func (g guardFunc) Describe() string                    { return "coins == 10 && health < 100" }
func (g guardFunc) Clone() fluo.Guard[healCtx]          { return g }

func TestGuardedHealOnlyFiresWhenConditionHolds(t *testing.T) {
	m := buildHealMachine(t)
	heal := fluo.NewEvent("Heal")

	blocked := fluo.Transition[healCtx](m, m.Initial(healCtx{Coins: 5, Health: 50}), heal)
	assert.True(t, blocked.Value.Equal(fluo.Atom("idle")))

	allowed := fluo.Transition[healCtx](m, m.Initial(healCtx{Coins: 10, Health: 50}), heal)
	assert.True(t, allowed.Value.Equal(fluo.Atom("healing")))
}

type powerCtx struct{}

func (c powerCtx) Clone() powerCtx { return c }

func TestHierarchicalToggleEntersCompoundInitialChild(t *testing.T) {
	b := fluo.NewBuilder[powerCtx]().
		Compound("power", "on").
		Atomic("on").
		Atomic("off").
		Child("power", "on").
		Child("power", "off").
		Initial("power")
	b.On("off", "Toggle", "on", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	start := fluo.MachineState[powerCtx]{Value: fluo.Comp("power", fluo.Atom("off"))}
	next := fluo.Transition[powerCtx](m, start, fluo.NewEvent("Toggle"))

	assert.True(t, next.Value.Equal(fluo.Comp("power", fluo.Atom("on"))))
}

type climateCtx struct{}

func (c climateCtx) Clone() climateCtx { return c }

func TestParallelRegionsUpdateIndependently(t *testing.T) {
	b := fluo.NewBuilder[climateCtx]().
		Parallel("climate", "heating", "cooling").
		Atomic("heating").
		Atomic("idle").
		Atomic("cooling").
		Initial("climate")
	b.On("heating", "Stop", "idle", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	start := fluo.MachineState[climateCtx]{Value: fluo.Par(fluo.Atom("heating"), fluo.Atom("cooling"))}
	next := fluo.Transition[climateCtx](m, start, fluo.NewEvent("Stop"))

	assert.True(t, next.Value.Equal(fluo.Par(fluo.Atom("idle"), fluo.Atom("cooling"))))
}

type counterCtx struct {
	Count int
}

func (c counterCtx) Clone() counterCtx { return c }

func TestStoreUndoRedoLaw(t *testing.T) {
	s := fluo.NewStore[counterCtx](counterCtx{Count: 0})
	hist := fluo.NewStoreHistory[counterCtx](s, 10)

	s.Set(counterCtx{Count: 1})
	s.Set(counterCtx{Count: 2})

	require.NoError(t, hist.Undo())
	assert.Equal(t, 1, s.Get().Count)

	require.NoError(t, hist.Redo())
	assert.Equal(t, 2, s.Get().Count)

	require.NoError(t, hist.Undo())
	require.NoError(t, hist.Undo())
	assert.Equal(t, 0, s.Get().Count)

	err := hist.Undo()
	assert.Error(t, err)
}
