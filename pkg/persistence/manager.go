package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fluo-state/fluo/pkg/machine"
	"github.com/fluo-state/fluo/pkg/utils"
)

var errNoDescriptor = errors.New("record has no machine descriptor")

// ContextCodec serializes a machine context of type C to and from bytes,
// independent of the Record envelope's own codec — typically a thin
// wrapper around encoding/json or gopkg.in/yaml.v3 for C itself.
type ContextCodec[C any] interface {
	Marshal(C) ([]byte, error)
	Unmarshal([]byte) (C, error)
}

// Manager is the façade callers use to durably save and restore machine
// state: it owns a StorageBackend and a ContextCodec, and translates
// between a bare (valueStr, context) pair and the on-disk Record envelope.
type Manager[C any] struct {
	backend  StorageBackend
	ctxCodec ContextCodec[C]
}

// NewManager pairs backend with ctxCodec. backend must be non-nil;
// operations on a Manager built with a nil backend return
// utils.PersistenceError{NotInitialized}, except Info, which returns a
// zero BackendInfo.
func NewManager[C any](backend StorageBackend, ctxCodec ContextCodec[C]) *Manager[C] {
	return &Manager[C]{backend: backend, ctxCodec: ctxCodec}
}

// Save persists valueStr/ctx under key.
func (m *Manager[C]) Save(ctx context.Context, key, valueStr string, value C) error {
	if m.backend == nil {
		return &utils.PersistenceError{Kind: utils.NotInitialized, Key: key}
	}
	data, err := m.ctxCodec.Marshal(value)
	if err != nil {
		return &utils.PersistenceError{Kind: utils.Serialization, Key: key, Cause: err}
	}
	rec := Record{
		Version:   SchemaVersion,
		Key:       key,
		ValueStr:  valueStr,
		Context:   data,
		UpdatedAt: time.Now().UnixNano(),
	}
	return m.backend.Store(ctx, key, rec)
}

// Load retrieves and decodes the record stored under key.
func (m *Manager[C]) Load(ctx context.Context, key string) (valueStr string, value C, err error) {
	if m.backend == nil {
		var zero C
		return "", zero, &utils.PersistenceError{Kind: utils.NotInitialized, Key: key}
	}
	rec, err := m.backend.Retrieve(ctx, key)
	if err != nil {
		var zero C
		return "", zero, err
	}
	value, err = m.ctxCodec.Unmarshal(rec.Context)
	if err != nil {
		var zero C
		return "", zero, &utils.PersistenceError{Kind: utils.Deserialization, Key: key, Cause: err}
	}
	return rec.ValueStr, value, nil
}

// Delete removes the record stored under key.
func (m *Manager[C]) Delete(ctx context.Context, key string) error {
	if m.backend == nil {
		return &utils.PersistenceError{Kind: utils.NotInitialized, Key: key}
	}
	return m.backend.Delete(ctx, key)
}

// Keys lists every key currently persisted.
func (m *Manager[C]) Keys(ctx context.Context) ([]string, error) {
	if m.backend == nil {
		return nil, &utils.PersistenceError{Kind: utils.NotInitialized}
	}
	return m.backend.ListKeys(ctx)
}

// Info reports the backend's current occupancy.
func (m *Manager[C]) Info() BackendInfo {
	if m.backend == nil {
		return BackendInfo{}
	}
	return m.backend.Info()
}

// SaveMachine persists the full structural schema of m/state (spec.md
// §4.8: id, initial/current state, states, transitions, metadata)
// alongside the context, under key. Unlike Save, the record this writes
// carries enough shape information to reconstruct the graph (modulo
// re-attaching executable guards/actions by hand) on a later LoadDescriptor
// call, not just the bare context.
func (m *Manager[C]) SaveMachine(ctx context.Context, key, machineID string, mach *machine.Machine[C], state machine.MachineState[C], meta Metadata, value C) error {
	if m.backend == nil {
		return &utils.PersistenceError{Kind: utils.NotInitialized, Key: key}
	}
	data, err := m.ctxCodec.Marshal(value)
	if err != nil {
		return &utils.PersistenceError{Kind: utils.Serialization, Key: key, Cause: err}
	}
	desc := DescribeMachine[C](machineID, mach, state, meta)
	descData, err := json.Marshal(desc)
	if err != nil {
		return &utils.PersistenceError{Kind: utils.Serialization, Key: key, Cause: err}
	}
	rec := Record{
		Version:    SchemaVersion,
		Key:        key,
		ValueStr:   state.Value.String(),
		Context:    data,
		Descriptor: descData,
		UpdatedAt:  time.Now().UnixNano(),
	}
	return m.backend.Store(ctx, key, rec)
}

// LoadDescriptor retrieves the MachineDescriptor persisted by a prior
// SaveMachine call under key. It returns PersistenceError{Deserialization}
// if the stored record has no descriptor (e.g. it was written by Save,
// not SaveMachine).
func (m *Manager[C]) LoadDescriptor(ctx context.Context, key string) (MachineDescriptor, error) {
	if m.backend == nil {
		return MachineDescriptor{}, &utils.PersistenceError{Kind: utils.NotInitialized, Key: key}
	}
	rec, err := m.backend.Retrieve(ctx, key)
	if err != nil {
		return MachineDescriptor{}, err
	}
	if len(rec.Descriptor) == 0 {
		return MachineDescriptor{}, &utils.PersistenceError{Kind: utils.Deserialization, Key: key, Cause: errNoDescriptor}
	}
	var desc MachineDescriptor
	if err := json.Unmarshal(rec.Descriptor, &desc); err != nil {
		return MachineDescriptor{}, &utils.PersistenceError{Kind: utils.Deserialization, Key: key, Cause: err}
	}
	return desc, nil
}

// JSONContextCodec is a ContextCodec backed by encoding/json, suitable for
// any context type that round-trips cleanly through it.
type JSONContextCodec[C any] struct {
	New func() C // constructs a zero value to unmarshal into, for pointer-typed C
}

func (c JSONContextCodec[C]) Marshal(v C) ([]byte, error) {
	return json.Marshal(v)
}

func (c JSONContextCodec[C]) Unmarshal(data []byte) (C, error) {
	var v C
	if c.New != nil {
		v = c.New()
	}
	err := json.Unmarshal(data, &v)
	return v, err
}
