package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/cache"
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/machine"
)

type ctx struct{ N int }

func (c ctx) Clone() ctx { return c }
func hashCtx(c ctx) uint64 { return uint64(c.N) }

func buildMachine(t *testing.T) *machine.Machine[ctx] {
	t.Helper()
	b := machine.NewBuilder[ctx]().Atomic("a").Atomic("b").Initial("a")
	b.On("a", "GO", "b", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestOptimizedMachineCacheHit(t *testing.T) {
	m := buildMachine(t)
	om, err := cache.NewOptimizedMachine[ctx](m, 16, hashCtx, 0)
	require.NoError(t, err)

	s := m.Initial(ctx{N: 1})
	event := core.NewEvent("GO")

	first := om.Transition(s, event)
	assert.Equal(t, "b", first.Value.Name())
	assert.Equal(t, int64(0), om.Cache.Stats().Hits)
	assert.Equal(t, int64(1), om.Cache.Stats().Misses)

	second := om.Transition(s, event)
	assert.Equal(t, "b", second.Value.Name())
	assert.Equal(t, int64(1), om.Cache.Stats().Hits)
}

func TestTransitionCacheTTLExpiry(t *testing.T) {
	m := buildMachine(t)
	tc, err := cache.NewTransitionCache[ctx](16, hashCtx, time.Millisecond)
	require.NoError(t, err)

	s := m.Initial(ctx{N: 1})
	event := core.NewEvent("GO")
	next := machine.Transition(m, s, event)
	tc.Store(s.Value, event, s.Context, next)

	time.Sleep(5 * time.Millisecond)
	_, ok := tc.Lookup(s.Value, event, s.Context)
	assert.False(t, ok, "entry should have expired")
}
