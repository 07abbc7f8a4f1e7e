// Package persistence implements the versioned record schema, pluggable
// codecs and storage backends used to durably save and restore a
// MachineState or Store snapshot. Grounded on anggasct/fluo's
// pkg/builders/compatibility.go and pkg/core serialization helpers for the
// general shape of "serialize a snapshot with a schema version", extended
// with a YAML codec (gopkg.in/yaml.v3, already a pack-wide dependency) and
// a real on-disk backend per SPEC_FULL.md §4.8.
package persistence

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/fluo-state/fluo/pkg/utils"
)

// SchemaVersion is the current on-disk record format version. Bump this
// whenever Record's shape changes incompatibly; both codecs reject any
// record whose Version differs from it.
const SchemaVersion uint32 = 1

// Record is the versioned envelope persisted for one key: a state value
// string, its serialized context, an optional JSON-encoded
// MachineDescriptor giving the full states/transitions/metadata schema
// (spec.md §4.8), and bookkeeping for integrity checks.
type Record struct {
	Version    uint32 `json:"version" yaml:"version"`
	Key        string `json:"key" yaml:"key"`
	ValueStr   string `json:"value" yaml:"value"`
	Context    []byte `json:"context" yaml:"context"`
	Descriptor []byte `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
	Checksum   uint32 `json:"checksum" yaml:"checksum"`
	UpdatedAt  int64  `json:"updated_at" yaml:"updated_at"` // unix nanos, set by caller
}

// Codec serializes and deserializes a Record.
type Codec interface {
	Encode(r Record) ([]byte, error)
	Decode(data []byte) (Record, error)
	Name() string
}

// JSONCodec is the canonical codec: deterministic field order. FileBackend
// takes its codec as a constructor argument; MemoryBackend keeps Records
// as values and uses no codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Encode(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, &utils.PersistenceError{Kind: utils.Serialization, Key: r.Key, Cause: err}
	}
	return data, nil
}
func (JSONCodec) Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, &utils.PersistenceError{Kind: utils.Deserialization, Cause: err}
	}
	if r.Version != SchemaVersion {
		return Record{}, &utils.PersistenceError{Kind: utils.Deserialization, Key: r.Key, Cause: &utils.MigrationError{Found: r.Version, Expected: SchemaVersion}}
	}
	return r, nil
}

// YAMLCodec is an alternate, human-editable codec for the same Record
// schema.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }
func (YAMLCodec) Encode(r Record) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, &utils.PersistenceError{Kind: utils.Serialization, Key: r.Key, Cause: err}
	}
	return data, nil
}
func (YAMLCodec) Decode(data []byte) (Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, &utils.PersistenceError{Kind: utils.Deserialization, Cause: err}
	}
	if r.Version != SchemaVersion {
		return Record{}, &utils.PersistenceError{Kind: utils.Deserialization, Key: r.Key, Cause: &utils.MigrationError{Found: r.Version, Expected: SchemaVersion}}
	}
	return r, nil
}

// checksum32 is a cheap integrity check over a record's serialized
// context, independent of the codec used, so a backend can detect silent
// truncation on read without re-running the full codec.
func checksum32(data []byte) uint32 {
	var h uint32 = 2166136261
	for _, b := range data {
		h ^= uint32(b)
		h *= 16777619
	}
	return h
}
