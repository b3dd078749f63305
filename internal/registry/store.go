package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StorageKey is the fixed key the registry is persisted under.
const StorageKey = "registry"

// Store loads and saves the whole registry. Load never fails just because
// nothing has been saved yet; it returns an empty registry instead. Save
// overwrites the stored value in full.
//
// There is no transaction around a load-modify-save cycle. Two writers
// working from stale copies race and the last Save wins.
type Store interface {
	Load(ctx context.Context) (*Registry, error)
	Save(ctx context.Context, reg *Registry) error
}

// Closer is implemented by stores that hold connections.
type Closer interface {
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a store backend.
type Options struct {
	Backend     string
	Path        string // file backend
	RedisURL    string // redis backend
	PostgresDSN string // postgres backend
	Key         string // key for redis and postgres; defaults to StorageKey
}

// Open builds the store described by opts.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := opts.Key
	if key == "" {
		key = StorageKey
	}

	switch opts.Backend {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file storage: no path configured")
		}
		logger.Debug("using file storage", zap.String("path", opts.Path))
		return NewFileStore(opts.Path), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL, key, logger)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.PostgresDSN, key, logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// decode parses a stored registry value. Empty input is an empty registry.
func decode(data []byte) (*Registry, error) {
	if len(data) == 0 {
		return New(), nil
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	return reg.normalize(), nil
}

// encode serializes a registry value for storage.
func encode(reg *Registry) ([]byte, error) {
	data, err := json.Marshal(reg.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshaling registry: %w", err)
	}
	return data, nil
}

// MemoryStore keeps the encoded registry in memory. It stores bytes rather
// than a pointer so callers cannot mutate the saved value behind its back.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (*Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.data)
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, reg *Registry) error {
	data, err := encode(reg)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the last saved JSON value.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
