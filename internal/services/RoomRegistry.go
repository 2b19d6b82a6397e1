package services

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
)

// RoomRegistry hands out one loaded RoomService per room id. Loads run
// outside mu; concurrent first requests for a room share one load.
type RoomRegistry struct {
	mu        sync.Mutex
	rooms     map[string]*RoomService
	loading   map[string]*RoomService
	loads     singleflight.Group
	backend   interfaces.Backend
	timeout   time.Duration
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	listeners []ChangeListener

	// Now and NewID are used by rooms created after they are set.
	Now   func() time.Time
	NewID models.IDGenerator
}

func NewRoomRegistry(backend interfaces.Backend, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *RoomRegistry {
	return &RoomRegistry{
		rooms:   make(map[string]*RoomService),
		loading: make(map[string]*RoomService),
		backend: backend,
		timeout: conf.Resolver.Timeout,
		logger:  logger,
		metrics: metrics,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// Room returns the service for roomID, loading it from the backend on first
// use. A room that fails to load is not cached.
func (r *RoomRegistry) Room(ctx context.Context, roomID string) (*RoomService, error) {
	if roomID == "" {
		return nil, ErrInvalidRoom
	}

	if rs, ok := r.loaded(roomID); ok {
		return rs, nil
	}

	ch := r.loads.DoChan(roomID, func() (interface{}, error) {
		return r.load(ctx, roomID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RoomService), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *RoomRegistry) loaded(roomID string) (*RoomService, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.rooms[roomID]
	return rs, ok
}

func (r *RoomRegistry) load(ctx context.Context, roomID string) (*RoomService, error) {
	r.mu.Lock()
	if rs, ok := r.rooms[roomID]; ok {
		r.mu.Unlock()
		return rs, nil
	}
	rs := NewRoomService(roomID, r.backend, r.timeout, r.Now, r.NewID, r.logger, r.metrics)
	for _, l := range r.listeners {
		rs.OnChange(l)
	}
	r.loading[roomID] = rs
	r.mu.Unlock()

	err := rs.Load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, roomID)
	if err != nil {
		return nil, err
	}
	r.rooms[roomID] = rs
	return rs, nil
}

// OnChange registers l on every current and future room.
func (r *RoomRegistry) OnChange(l ChangeListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
	for _, rs := range r.rooms {
		rs.OnChange(l)
	}
	for _, rs := range r.loading {
		rs.OnChange(l)
	}
}

// Rooms lists the ids of loaded rooms in sorted order.
func (r *RoomRegistry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.rooms))
}
