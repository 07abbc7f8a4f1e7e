package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/persistence"
)

type ctx struct {
	Count int
}

func (c ctx) Clone() ctx { return c }

func buildDoor(t *testing.T) *machine.Machine[ctx] {
	t.Helper()
	b := machine.NewBuilder[ctx]().Atomic("open").Atomic("closed").Initial("closed")
	b.On("closed", "OPEN", "open", nil, nil)
	b.On("open", "CLOSE", "closed", nil, nil)
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestMemoryBackendRoundTrip(t *testing.T) {
	backend := persistence.NewMemoryBackend(0)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})

	require.NoError(t, mgr.Save(context.Background(), "k1", "on.idle", ctx{Count: 5}))

	valueStr, v, err := mgr.Load(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "on.idle", valueStr)
	assert.Equal(t, 5, v.Count)
}

func TestMemoryBackendKeyNotFound(t *testing.T) {
	backend := persistence.NewMemoryBackend(0)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})
	_, _, err := mgr.Load(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMemoryBackendCapacityEnforced(t *testing.T) {
	backend := persistence.NewMemoryBackend(4)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})
	err := mgr.Save(context.Background(), "big", "x", ctx{Count: 123456789})
	assert.Error(t, err)
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := persistence.NewFileBackend(dir, persistence.JSONCodec{}, 0)
	require.NoError(t, err)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})

	require.NoError(t, mgr.Save(context.Background(), "weird/key:name", "s", ctx{Count: 1}))
	keys, err := mgr.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	_, v, err := mgr.Load(context.Background(), "weird/key:name")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count)
}

func TestDescribeMachineReportsGraphShape(t *testing.T) {
	m := buildDoor(t)
	state := m.Initial(ctx{})
	desc := persistence.DescribeMachine[ctx]("door", m, state, persistence.Metadata{Name: "door"})

	assert.Equal(t, "door", desc.ID)
	assert.Equal(t, "closed", desc.InitialState)
	assert.Equal(t, "closed", desc.CurrentState)
	assert.Len(t, desc.States, 2)
	assert.Len(t, desc.Transitions, 2)
	assert.Equal(t, 2, desc.Metadata.Stats.StateCount)
	assert.Equal(t, 2, desc.Metadata.Stats.TransitionCount)
}

func TestManagerSaveMachineRoundTripsDescriptor(t *testing.T) {
	backend := persistence.NewMemoryBackend(0)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})
	m := buildDoor(t)
	state := m.Initial(ctx{Count: 2})

	require.NoError(t, mgr.SaveMachine(context.Background(), "k1", "door", m, state, persistence.Metadata{Name: "door"}, ctx{Count: 2}))

	desc, err := mgr.LoadDescriptor(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "door", desc.ID)
	assert.Equal(t, "closed", desc.CurrentState)

	_, v, err := mgr.Load(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)
}

func TestManagerLoadDescriptorRejectsPlainSave(t *testing.T) {
	backend := persistence.NewMemoryBackend(0)
	mgr := persistence.NewManager[ctx](backend, persistence.JSONContextCodec[ctx]{})
	require.NoError(t, mgr.Save(context.Background(), "k1", "closed", ctx{}))

	_, err := mgr.LoadDescriptor(context.Background(), "k1")
	assert.Error(t, err)
}

func TestBackendInfoReportsKind(t *testing.T) {
	mem := persistence.NewMemoryBackend(0)
	assert.Equal(t, "memory", mem.Info().Kind)

	dir := t.TempDir()
	file, err := persistence.NewFileBackend(dir, persistence.JSONCodec{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "file:json", file.Info().Kind)
}

func TestYAMLCodecRoundTrip(t *testing.T) {
	codec := persistence.YAMLCodec{}
	rec := persistence.Record{Version: persistence.SchemaVersion, Key: "k", ValueStr: "a.b", Context: []byte(`{"n":1}`)}
	data, err := codec.Encode(rec)
	require.NoError(t, err)
	got, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, rec.Key, got.Key)
	assert.Equal(t, rec.ValueStr, got.ValueStr)
}
