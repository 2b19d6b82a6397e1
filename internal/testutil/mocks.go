package testutil

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Clears int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Clears++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

var ErrInjected = errors.New("injected failure")

// MemoryBackend implements interfaces.Backend over a map. Setting FailSet,
// FailGet or FailDelete makes the matching operation return ErrInjected.
type MemoryBackend struct {
	mu         sync.Mutex
	BackendID  string
	Data       map[string]string
	FailGet    bool
	FailSet    bool
	FailDelete bool
	SetCalls   int
	Closed     bool
}

func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{BackendID: name, Data: make(map[string]string)}
}

func (m *MemoryBackend) Name() string {
	return m.BackendID
}

func (m *MemoryBackend) Get(ctx context.Context, key, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return "", ErrInjected
	}
	if v, ok := m.Data[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.FailSet {
		return ErrInjected
	}
	m.Data[key] = value
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete {
		return ErrInjected
	}
	delete(m.Data, key)
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.Data)), nil
}

func (m *MemoryBackend) Usage(_ context.Context) (interfaces.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var used uint64
	for k, v := range m.Data {
		used += uint64(len(k) + len(v))
	}
	return interfaces.Usage{UsedBytes: used}, nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Value reads a key without going through the context-aware path.
func (m *MemoryBackend) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

// MockResolver returns canned identity and live status answers. When Block
// is set every call waits for ctx to finish.
type MockResolver struct {
	mu          sync.Mutex
	Identity    models.Identity
	Status      models.LiveStatus
	IdentityErr error
	StatusErr   error
	Block       bool
	Calls       int
}

func (m *MockResolver) Resolve(ctx context.Context, _ string) (models.Identity, error) {
	m.mu.Lock()
	m.Calls++
	block := m.Block
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return models.Identity{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Identity, m.IdentityErr
}

func (m *MockResolver) LiveStatus(ctx context.Context, _ string) (models.LiveStatus, error) {
	m.mu.Lock()
	block := m.Block
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return models.LiveStatus{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Status, m.StatusErr
}
