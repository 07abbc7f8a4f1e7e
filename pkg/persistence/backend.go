package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fluo-state/fluo/pkg/utils"
)

// BackendInfo reports a backend's current occupancy and capabilities.
type BackendInfo struct {
	Kind                string
	Keys                int
	Bytes               int64
	Capacity            int64 // bytes; 0 means unlimited
	SupportsCompression bool
	SupportsEncryption  bool
}

// StorageBackend persists Records by key. Every method accepts a context;
// neither MemoryBackend nor FileBackend checks it, so cancellation and
// deadlines on that context do not interrupt or time out an operation.
type StorageBackend interface {
	Store(ctx context.Context, key string, r Record) error
	Retrieve(ctx context.Context, key string) (Record, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Info() BackendInfo
}

// MemoryBackend stores records in a map, for tests and ephemeral machines.
type MemoryBackend struct {
	mu       sync.Mutex
	records  map[string]Record
	capacity int64
}

// NewMemoryBackend creates an empty in-memory backend. capacity of 0 means
// unlimited.
func NewMemoryBackend(capacity int64) *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record), capacity: capacity}
}

func (b *MemoryBackend) Store(_ context.Context, key string, r Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	size := int64(len(r.Context))
	if b.capacity > 0 {
		var used int64
		for k, existing := range b.records {
			if k != key {
				used += int64(len(existing.Context))
			}
		}
		if used+size > b.capacity {
			return &utils.PersistenceError{Kind: utils.StorageFull, Key: key, Needed: size, Avail: b.capacity - used}
		}
	}
	b.records[key] = r
	return nil
}

func (b *MemoryBackend) Retrieve(_ context.Context, key string) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.records[key]
	if !ok {
		return Record{}, &utils.PersistenceError{Kind: utils.KeyNotFound, Key: key}
	}
	return r, nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, key)
	return nil
}

func (b *MemoryBackend) ListKeys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.records))
	for k := range b.records {
		keys = append(keys, k)
	}
	return keys, nil
}

func (b *MemoryBackend) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.records[key]
	return ok, nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = make(map[string]Record)
	return nil
}

func (b *MemoryBackend) Info() BackendInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	var bytes int64
	for _, r := range b.records {
		bytes += int64(len(r.Context))
	}
	return BackendInfo{
		Kind:     "memory",
		Keys:     len(b.records),
		Bytes:    bytes,
		Capacity: b.capacity,
	}
}

// FileBackend persists one file per key under Dir, named by the
// reserved-character-sanitized key plus ".dat". Concurrent access from
// multiple processes is not coordinated; within one process, mu serializes
// access the same way MemoryBackend does.
type FileBackend struct {
	mu       sync.Mutex
	dir      string
	codec    Codec
	capacity int64
}

// NewFileBackend creates (if needed) dir and returns a backend that stores
// each key as dir/<sanitized-key>.dat using codec. capacity of 0 means
// unlimited.
func NewFileBackend(dir string, codec Codec, capacity int64) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &utils.PersistenceError{Kind: utils.IOError, Cause: err}
	}
	return &FileBackend{dir: dir, codec: codec, capacity: capacity}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, utils.SanitizeFileName(key)+".dat")
}

func (b *FileBackend) Store(_ context.Context, key string, r Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r.Checksum = checksum32(r.Context)
	data, err := b.codec.Encode(r)
	if err != nil {
		return err
	}
	if b.capacity > 0 {
		used, _ := b.usedBytesLocked(key)
		if used+int64(len(data)) > b.capacity {
			return &utils.PersistenceError{Kind: utils.StorageFull, Key: key, Needed: int64(len(data)), Avail: b.capacity - used}
		}
	}
	if err := os.WriteFile(b.path(key), data, 0o644); err != nil {
		return &utils.PersistenceError{Kind: utils.IOError, Key: key, Cause: err}
	}
	return nil
}

func (b *FileBackend) usedBytesLocked(excludeKey string) (int64, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, err
	}
	var total int64
	exclude := utils.SanitizeFileName(excludeKey) + ".dat"
	for _, e := range entries {
		if e.Name() == exclude {
			continue
		}
		info, err := e.Info()
		if err == nil {
			total += info.Size()
		}
	}
	return total, nil
}

func (b *FileBackend) Retrieve(_ context.Context, key string) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, &utils.PersistenceError{Kind: utils.KeyNotFound, Key: key}
		}
		return Record{}, &utils.PersistenceError{Kind: utils.IOError, Key: key, Cause: err}
	}
	r, err := b.codec.Decode(data)
	if err != nil {
		return Record{}, err
	}
	if r.Checksum != checksum32(r.Context) {
		return Record{}, &utils.PersistenceError{Kind: utils.Deserialization, Key: key, Cause: err}
	}
	return r, nil
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return &utils.PersistenceError{Kind: utils.IOError, Key: key, Cause: err}
	}
	return nil
}

func (b *FileBackend) ListKeys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, &utils.PersistenceError{Kind: utils.IOError, Cause: err}
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".dat" {
			keys = append(keys, name[:len(name)-len(".dat")])
		}
	}
	return keys, nil
}

func (b *FileBackend) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := os.Stat(b.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &utils.PersistenceError{Kind: utils.IOError, Key: key, Cause: err}
}

func (b *FileBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return &utils.PersistenceError{Kind: utils.IOError, Cause: err}
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".dat" {
			_ = os.Remove(filepath.Join(b.dir, e.Name()))
		}
	}
	return nil
}

func (b *FileBackend) Info() BackendInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	used, _ := b.usedBytesLocked("")
	entries, _ := os.ReadDir(b.dir)
	return BackendInfo{
		Kind:     "file:" + b.codec.Name(),
		Keys:     len(entries),
		Bytes:    used,
		Capacity: b.capacity,
	}
}
