package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
	"livenotes/internal/testutil"
)

func openerFor(b interfaces.Backend) Opener {
	return func(context.Context) (interfaces.Backend, error) { return b, nil }
}

func failingOpener(err error) Opener {
	return func(context.Context) (interfaces.Backend, error) { return nil, err }
}

func TestNewAdapter_MigratesFallbackIntoPrimary(t *testing.T) {
	primary := testutil.NewMemoryBackend("primary")
	fallback := testutil.NewMemoryBackend("fallback")
	fallback.Data["vdb1"] = `[{"name":"A","link":"l","del":false,"lives":[]}]`
	fallback.Data["vop"] = `{"reltime":true,"toffset":"30"}`

	a, err := NewAdapter(context.Background(), openerFor(primary), openerFor(fallback), &testutil.MockLogger{})
	require.NoError(t, err)

	assert.Equal(t, "primary", a.Kind())
	assert.False(t, a.IsFallback())
	assert.Equal(t, 2, a.Migrated())

	v, ok := primary.Value("vdb1")
	require.True(t, ok)
	assert.Equal(t, `[{"name":"A","link":"l","del":false,"lives":[]}]`, v)
	v, ok = primary.Value("vop")
	require.True(t, ok)
	assert.Equal(t, `{"reltime":true,"toffset":"30"}`, v)

	assert.Empty(t, fallback.Data)
	assert.True(t, fallback.Closed)
}

func TestNewAdapter_SecondRunIsNoop(t *testing.T) {
	primary := testutil.NewMemoryBackend("primary")
	fallback := testutil.NewMemoryBackend("fallback")
	fallback.Data["vdb1"] = "[]"

	_, err := NewAdapter(context.Background(), openerFor(primary), openerFor(fallback), &testutil.MockLogger{})
	require.NoError(t, err)
	setCalls := primary.SetCalls

	a, err := NewAdapter(context.Background(), openerFor(primary), openerFor(fallback), &testutil.MockLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, a.Migrated())
	assert.Equal(t, setCalls, primary.SetCalls)
}

func TestNewAdapter_PrimaryFailureSelectsFallback(t *testing.T) {
	fallback := testutil.NewMemoryBackend("fallback")
	fallback.Data["vdb1"] = "[]"
	logger := &testutil.MockLogger{}

	a, err := NewAdapter(context.Background(), failingOpener(errors.New("locked")), openerFor(fallback), logger)
	require.NoError(t, err)

	assert.Equal(t, "fallback", a.Kind())
	assert.True(t, a.IsFallback())
	assert.Equal(t, 1, logger.Count("warn"))

	// fallback data stays where it is
	v, err := a.Get(context.Background(), "vdb1", "")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	assert.False(t, fallback.Closed)
}

func TestNewAdapter_BothFail(t *testing.T) {
	_, err := NewAdapter(context.Background(),
		failingOpener(errors.New("primary down")),
		failingOpener(errors.New("disk full")),
		&testutil.MockLogger{})
	assert.Error(t, err)
}

func TestNewAdapter_CopyFailureLeavesFallbackIntact(t *testing.T) {
	primary := testutil.NewMemoryBackend("primary")
	primary.FailSet = true
	fallback := testutil.NewMemoryBackend("fallback")
	fallback.Data["vdb1"] = "[]"
	fallback.Data["vop"] = "{}"

	_, err := NewAdapter(context.Background(), openerFor(primary), openerFor(fallback), &testutil.MockLogger{})
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrInjected)

	assert.Len(t, fallback.Data, 2)
	assert.True(t, primary.Closed)
}

func TestAdapter_OperationFailureIsReturned(t *testing.T) {
	primary := testutil.NewMemoryBackend("primary")
	fallback := testutil.NewMemoryBackend("fallback")
	a, err := NewAdapter(context.Background(), openerFor(primary), openerFor(fallback), &testutil.MockLogger{})
	require.NoError(t, err)

	primary.FailSet = true
	assert.ErrorIs(t, a.Set(context.Background(), "vdb1", "[]"), testutil.ErrInjected)
	assert.Equal(t, "primary", a.Kind())
}

func storageConfig(t *testing.T, primary string) *structures.Config {
	t.Helper()
	return &structures.Config{
		Storage: structures.StorageConfig{
			Primary:       primary,
			Dir:           t.TempDir(),
			FallbackFile:  "fallback.kv.zst",
			MaxValueBytes: 1 << 20,
			QuotaBytes:    1 << 30,
		},
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	_, err = Open(context.Background(), storageConfig(t, "redis"), c, &testutil.MockLogger{}, &recordingMetrics{})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpen_MigratesFileIntoPebble(t *testing.T) {
	ctx := context.Background()
	conf := storageConfig(t, PebbleBackendName)
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	fb, err := NewFileBackend(filepath.Join(conf.Storage.Dir, conf.Storage.FallbackFile), conf.Storage.MaxValueBytes, c)
	require.NoError(t, err)
	require.NoError(t, fb.Set(ctx, "vdb1", `[]`))
	require.NoError(t, fb.Set(ctx, "vop", `{"reltime":false,"toffset":0}`))

	metrics := &recordingMetrics{}
	a, err := Open(ctx, conf, c, &testutil.MockLogger{}, metrics)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, PebbleBackendName, a.Kind())
	assert.Equal(t, 2, a.Migrated())
	v, err := a.Get(ctx, "vop", "")
	require.NoError(t, err)
	assert.Equal(t, `{"reltime":false,"toffset":0}`, v)

	usage, err := a.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<30), usage.QuotaBytes)

	reloaded, err := NewFileBackend(filepath.Join(conf.Storage.Dir, conf.Storage.FallbackFile), conf.Storage.MaxValueBytes, c)
	require.NoError(t, err)
	keys, err := reloaded.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	assert.Positive(t, metrics.ops(PebbleBackendName, "set"))
	assert.Positive(t, metrics.ops(FileBackendName, "delete"))
}

func TestOpen_Sqlite(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	a, err := Open(context.Background(), storageConfig(t, SqliteBackendName), c, &testutil.MockLogger{}, &recordingMetrics{})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, SqliteBackendName, a.Kind())
}

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
	errs   int
}

func (r *recordingMetrics) IncRequestsTotal(string, int)                 {}
func (r *recordingMetrics) ObserveRequestDuration(string, time.Duration) {}
func (r *recordingMetrics) IncCacheHits()                                {}
func (r *recordingMetrics) IncCacheMisses()                              {}
func (r *recordingMetrics) IncPointsRecorded(string)                     {}
func (r *recordingMetrics) IncCompactions(string)                        {}
func (r *recordingMetrics) SetStoreBytes(string, int)                    {}

func (r *recordingMetrics) ObserveStorageOperation(backend, op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[backend+"/"+op]++
	if err != nil {
		r.errs++
	}
}

func (r *recordingMetrics) ops(backend, op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[backend+"/"+op]
}

func TestInstrumentedBackend_RecordsFailures(t *testing.T) {
	inner := testutil.NewMemoryBackend("mem")
	inner.FailGet = true
	metrics := &recordingMetrics{}
	logger := &testutil.MockLogger{}
	ib := NewInstrumentedBackend(inner, logger, metrics)

	_, err := ib.Get(context.Background(), "vdb1", "")
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 1, metrics.ops("mem", "get"))
	assert.Equal(t, 1, metrics.errs)
	assert.Equal(t, 1, logger.Count("error"))

	require.NoError(t, ib.Set(context.Background(), "vdb1", "[]"))
	assert.Equal(t, 1, metrics.errs)

	keys, err := ib.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"vdb1"}, keys)
}
