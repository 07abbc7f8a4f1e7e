package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/action"
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/guard"
	"github.com/fluo-state/fluo/pkg/history"
	"github.com/fluo-state/fluo/pkg/machine"
)

type ctx struct {
	Count int
	Log   []string
}

func (c ctx) Clone() ctx {
	cp := ctx{Count: c.Count, Log: append([]string(nil), c.Log...)}
	return cp
}

func TestTrafficLightCycle(t *testing.T) {
	b := machine.NewBuilder[ctx]().
		Atomic("red").Atomic("green").Atomic("yellow").
		Initial("red")
	b.On("red", "TICK", "green", nil, nil)
	b.On("green", "TICK", "yellow", nil, nil)
	b.On("yellow", "TICK", "red", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{})
	tick := core.NewEvent("TICK")

	s = machine.Transition(m, s, tick)
	assert.Equal(t, "green", s.Value.Name())
	s = machine.Transition(m, s, tick)
	assert.Equal(t, "yellow", s.Value.Name())
	s = machine.Transition(m, s, tick)
	assert.Equal(t, "red", s.Value.Name())
}

func TestUnmatchedEventIsIdentity(t *testing.T) {
	b := machine.NewBuilder[ctx]().Atomic("idle").Initial("idle")
	b.On("idle", "GO", "idle", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{Count: 7})
	next := machine.Transition(m, s, core.NewEvent("NOPE"))
	assert.True(t, next.Value.Equal(s.Value))
	assert.Equal(t, 7, next.Context.Count)
}

func TestGuardedTransition(t *testing.T) {
	b := machine.NewBuilder[ctx]().Atomic("sick").Atomic("healed").Initial("sick")
	healthy := guard.FieldEquals[ctx]{Field: "Count", Extract: func(c ctx) any { return c.Count }, Value: 100}
	b.On("sick", "HEAL", "healed", []guard.Guard[ctx]{healthy}, nil)
	m, err := b.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{Count: 1})
	next := machine.Transition(m, s, core.NewEvent("HEAL"))
	assert.Equal(t, "sick", next.Value.Name(), "guard should have blocked the transition")

	s2 := m.Initial(ctx{Count: 100})
	next2 := machine.Transition(m, s2, core.NewEvent("HEAL"))
	assert.Equal(t, "healed", next2.Value.Name())
}

func TestHierarchicalCompoundFallback(t *testing.T) {
	b := machine.NewBuilder[ctx]().
		Compound("power", "off").
		Atomic("on").Atomic("off").
		Child("power", "on").Child("power", "off").
		Atomic("unplugged").
		Initial("power")
	b.On("off", "TOGGLE", "on", nil, nil)
	b.On("on", "TOGGLE", "off", nil, nil)
	b.On("power", "UNPLUG", "unplugged", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{})
	assert.Equal(t, "power.off", s.Value.String())

	s = machine.Transition(m, s, core.NewEvent("TOGGLE"))
	assert.Equal(t, "power.on", s.Value.String())

	// UNPLUG is declared on the parent; the child ("on") doesn't handle it,
	// so it falls back to the compound's own transition table.
	s = machine.Transition(m, s, core.NewEvent("UNPLUG"))
	assert.Equal(t, "unplugged", s.Value.String())
}

func TestParallelRegionsIndependentAndFold(t *testing.T) {
	b2 := machine.NewBuilder[ctx]().
		Compound("motor", "motorOff").
		Atomic("motorOff").Atomic("motorOn").
		Compound("light", "lightOff").
		Atomic("lightOff").Atomic("lightOn").
		Parallel("machine", "motor", "light").
		Initial("machine")
	b2.On("motorOff", "MOTOR_ON", "motorOn", nil, nil)
	b2.On("lightOff", "LIGHT_ON", "lightOn", nil, nil)
	m, err := b2.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{})
	require.Equal(t, "[motor.motorOff, light.lightOff]", s.Value.String())

	s = machine.Transition(m, s, core.NewEvent("MOTOR_ON"))
	assert.Equal(t, "[motor.motorOn, light.lightOff]", s.Value.String())

	s = machine.Transition(m, s, core.NewEvent("LIGHT_ON"))
	assert.Equal(t, "[motor.motorOn, light.lightOn]", s.Value.String())
}

func TestHistoryRestoresLastChild(t *testing.T) {
	b := machine.NewBuilder[ctx]().
		Compound("app", "editing").
		Compound("editing", "draft").
		Atomic("draft").Atomic("review").
		Child("editing", "draft").Child("editing", "review").
		Atomic("suspended").
		History("app_hist", "app", history.Def{Kind: history.Shallow, DefaultTarget: "editing", Enabled: true}).
		Child("app", "editing").
		Initial("app")
	b.On("draft", "SUBMIT", "review", nil, nil)
	b.On("app", "SUSPEND", "suspended", nil, nil)
	b.On("suspended", "RESUME", "app_hist", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)

	s := m.Initial(ctx{})
	s = machine.Transition(m, s, core.NewEvent("SUBMIT"))
	assert.Equal(t, "app.editing.review", s.Value.String())

	s = machine.Transition(m, s, core.NewEvent("SUSPEND"))
	assert.Equal(t, "suspended", s.Value.String())

	s = machine.Transition(m, s, core.NewEvent("RESUME"))
	assert.Equal(t, "editing", s.Value.Name(), "shallow history remembers only the direct child, editing")
}

func TestBuildRejectsDanglingTransitionTarget(t *testing.T) {
	b := machine.NewBuilder[ctx]().Atomic("a").Initial("a")
	b.On("a", "GO", "ghost", nil, nil)
	_, err := b.Build()
	require.Error(t, err)
}

func TestBuildRejectsCompoundWithoutInitial(t *testing.T) {
	b := machine.NewBuilder[ctx]().Compound("broken", "").Initial("broken")
	_, err := b.Build()
	require.Error(t, err)
}

func TestStrictMachineReportsActionError(t *testing.T) {
	b := machine.NewBuilder[ctx]().Atomic("a").Atomic("b").Initial("a")
	boom := action.Func[ctx]{Name: "boom", Fn: func(c ctx, e core.Event) error { return assert.AnError }}
	b.On("a", "GO", "b", nil, []action.Action[ctx]{boom})
	built, err := b.Build()
	require.NoError(t, err)
	sm := machine.NewStrict(built)

	s := built.Initial(ctx{})
	_, err = sm.Transition(s, core.NewEvent("GO"))
	require.Error(t, err)
}
