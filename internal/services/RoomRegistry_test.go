package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
	"livenotes/internal/testutil"
)

// gatedBackend holds reads of one key until release is closed.
type gatedBackend struct {
	*testutil.MemoryBackend
	key     string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedBackend) Get(ctx context.Context, key, def string) (string, error) {
	if key == g.key {
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.MemoryBackend.Get(ctx, key, def)
}

var _ interfaces.Backend = (*gatedBackend)(nil)

func TestRoomRegistry_EmptyRoomRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Room(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRoom)
}

func TestRoomRegistry_ReturnsSameService(t *testing.T) {
	f := newFixture(t)
	a := f.room(t, "1")
	b := f.room(t, "1")
	c := f.room(t, "2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, []string{"1", "2"}, f.registry.Rooms())
}

func TestRoomRegistry_LoadsLegacyBlobAndBackfillsIDs(t *testing.T) {
	f := newFixture(t)
	f.backend.Data["vdb7"] = `[{"name":"A","link":"l","del":false,"lives":[{"title":"T","time":1000,"del":false,"points":[{"time":1500,"content":"x"}]}]}]`

	rs := f.room(t, "7")
	snap := rs.Snapshot()
	require.Len(t, snap.Broadcasters, 1)
	assert.Equal(t, "id-1", snap.Broadcasters[0].ID)
	assert.Equal(t, "id-2", snap.Broadcasters[0].Sessions[0].ID)

	persisted, err := models.ParseStorage(f.backend.Data["vdb7"])
	require.NoError(t, err)
	assert.Equal(t, "id-2", persisted.Broadcasters[0].Sessions[0].ID)
}

func TestRoomRegistry_MalformedBlobFailsFast(t *testing.T) {
	f := newFixture(t)
	f.backend.Data["vdb9"] = `{not json`

	_, err := f.registry.Room(context.Background(), "9")
	require.Error(t, err)
	var pe *models.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Empty(t, f.registry.Rooms())
}

func TestRoomRegistry_BackendReadFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.FailGet = true

	_, err := f.registry.Room(context.Background(), "1")
	assert.ErrorIs(t, err, testutil.ErrInjected)
}

func TestRoomRegistry_SlowLoadDoesNotBlockOtherRooms(t *testing.T) {
	backend := &gatedBackend{
		MemoryBackend: testutil.NewMemoryBackend("mem"),
		key:           models.StoreKey("slow"),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	registry := NewRoomRegistry(backend, testConfig(), &testutil.MockLogger{}, providers.NewMetricsProvider(&structures.Config{}))

	type result struct {
		rs  *RoomService
		err error
	}
	slow := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			rs, err := registry.Room(context.Background(), "slow")
			slow <- result{rs, err}
		}()
	}
	<-backend.entered

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	fast, err := registry.Room(ctx, "fast")
	require.NoError(t, err)
	require.NotNil(t, fast)
	assert.Equal(t, []string{"fast"}, registry.Rooms())

	close(backend.release)
	a, b := <-slow, <-slow
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	assert.Same(t, a.rs, b.rs)
	assert.Equal(t, []string{"fast", "slow"}, registry.Rooms())
}

func TestRoomRegistry_WaiterGivesUpOnContext(t *testing.T) {
	backend := &gatedBackend{
		MemoryBackend: testutil.NewMemoryBackend("mem"),
		key:           models.StoreKey("slow"),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	defer close(backend.release)
	registry := NewRoomRegistry(backend, testConfig(), &testutil.MockLogger{}, providers.NewMetricsProvider(&structures.Config{}))

	go func() { _, _ = registry.Room(context.Background(), "slow") }()
	<-backend.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := registry.Room(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
