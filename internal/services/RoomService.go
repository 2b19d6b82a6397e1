package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
)

var ErrInvalidRoom = errors.New("room id must not be empty")

// ChangeListener is notified after every change to the in-memory store of a
// room, including changes whose persist failed.
type ChangeListener func(roomID string)

// RoomService owns the session store of one room. Mutations are serialised
// and every mutation rewrites the whole store blob.
type RoomService struct {
	mu             sync.Mutex
	roomID         string
	key            string
	store          *models.Storage
	backend        interfaces.Backend
	now            func() time.Time
	newID          models.IDGenerator
	resolveTimeout time.Duration
	logger         providers.Logger
	metrics        providers.MetricsProviderInterface
	listeners      []ChangeListener
	revision       uint64
}

func NewRoomService(roomID string, backend interfaces.Backend, resolveTimeout time.Duration, now func() time.Time, newID models.IDGenerator, logger providers.Logger, metrics providers.MetricsProviderInterface) *RoomService {
	return &RoomService{
		roomID:         roomID,
		key:            models.StoreKey(roomID),
		store:          &models.Storage{},
		backend:        backend,
		now:            now,
		newID:          newID,
		resolveTimeout: resolveTimeout,
		logger:         logger,
		metrics:        metrics,
	}
}

func (rs *RoomService) RoomID() string {
	return rs.roomID
}

// OnChange registers l. Listeners run after the room lock is released.
func (rs *RoomService) OnChange(l ChangeListener) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.listeners = append(rs.listeners, l)
}

// Revision is bumped by every change to the in-memory store.
func (rs *RoomService) Revision() uint64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.revision
}

// Load reads the room blob, defaulting to an empty store. Entries written
// before synthetic ids existed get ids, and the store is written back so the
// ids survive restarts.
func (rs *RoomService) Load(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	blob, err := rs.backend.Get(ctx, rs.key, models.EmptyStoreBlob)
	if err != nil {
		return fmt.Errorf("load room %s: %w", rs.roomID, err)
	}
	store, err := models.ParseStorage(blob)
	if err != nil {
		return fmt.Errorf("load room %s: %w", rs.roomID, err)
	}
	rs.store = store

	if n := store.BackfillIDs(rs.newID); n > 0 {
		rs.logger.Infof(providers.TypeStorage, "room %s: assigned ids to %d legacy entries", rs.roomID, n)
		if err := rs.persistLocked(ctx); err != nil {
			rs.logger.Warnf(providers.TypeStorage, "room %s: could not persist backfilled ids: %v", rs.roomID, err)
		}
	}
	return nil
}

// RecordPoint appends content to the session the resolver identifies. A zero
// start time means the room is not live and nothing happens.
func (rs *RoomService) RecordPoint(ctx context.Context, resolver IdentityResolver, startTimeSeconds int64, content string) (bool, error) {
	if startTimeSeconds == 0 {
		return false, nil
	}

	rctx, cancel := context.WithTimeout(ctx, rs.resolveTimeout)
	identity, err := resolver.Resolve(rctx, rs.roomID)
	cancel()
	if err != nil {
		return false, fmt.Errorf("resolve identity of room %s: %w", rs.roomID, err)
	}

	rs.mu.Lock()
	point := models.NewPoint(rs.now(), content)
	rs.store.AddPoint(identity, startTimeSeconds*1000, point, rs.newID)
	rs.revision++
	err = rs.persistLocked(ctx)
	listeners := rs.listeners
	rs.mu.Unlock()

	rs.notify(listeners)
	if err != nil {
		return false, err
	}
	rs.metrics.IncPointsRecorded(rs.roomID)
	rs.logger.Debugf(providers.TypeApp, "room %s: point recorded for %q / %q", rs.roomID, identity.Name, identity.Title)
	return true, nil
}

// Annotate asks the resolver whether the room is live and records content
// against the live start time. Not live is a silent no-op.
func (rs *RoomService) Annotate(ctx context.Context, resolver IdentityResolver, content string) (bool, error) {
	rctx, cancel := context.WithTimeout(ctx, rs.resolveTimeout)
	status, err := resolver.LiveStatus(rctx, rs.roomID)
	cancel()
	if err != nil {
		return false, fmt.Errorf("live status of room %s: %w", rs.roomID, err)
	}

	var start int64
	if status.IsLive {
		start = status.StartEpochSeconds
	}
	return rs.RecordPoint(ctx, resolver, start, content)
}

// ListActive iterates a snapshot of the non-deleted entries. Iteration stops
// early once ctx is done.
func (rs *RoomService) ListActive(ctx context.Context) iter.Seq[models.ActiveBroadcaster] {
	snapshot := rs.Snapshot()
	return func(yield func(models.ActiveBroadcaster) bool) {
		for ab := range snapshot.Active() {
			if ctx.Err() != nil || !yield(ab) {
				return
			}
		}
	}
}

func (rs *RoomService) DeleteSession(ctx context.Context, bi, si int) (models.DeleteOutcome, error) {
	rs.mu.Lock()
	outcome, changed, err := rs.deleteLocked(ctx, bi, si)
	listeners := rs.listeners
	rs.mu.Unlock()

	if changed {
		rs.notify(listeners)
	}
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (rs *RoomService) DeleteSessionByID(ctx context.Context, id string) (models.DeleteOutcome, error) {
	rs.mu.Lock()
	bi, si, ok := rs.store.LocateSession(id)
	if !ok {
		rs.mu.Unlock()
		return 0, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	outcome, changed, err := rs.deleteLocked(ctx, bi, si)
	listeners := rs.listeners
	rs.mu.Unlock()

	if changed {
		rs.notify(listeners)
	}
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// deleteLocked reports whether the in-memory store changed alongside any
// error.
func (rs *RoomService) deleteLocked(ctx context.Context, bi, si int) (models.DeleteOutcome, bool, error) {
	outcome, err := rs.store.DeleteSession(bi, si)
	if err != nil {
		return 0, false, err
	}
	rs.revision++
	if err := rs.persistLocked(ctx); err != nil {
		return 0, true, err
	}
	rs.logger.Infof(providers.TypeApp, "room %s: %s deleted", rs.roomID, outcome)
	return outcome, true, nil
}

// Clear drops every entry of the room and removes its key from the backend.
func (rs *RoomService) Clear(ctx context.Context) error {
	rs.mu.Lock()
	rs.store = &models.Storage{}
	rs.revision++
	err := rs.backend.Delete(ctx, rs.key)
	listeners := rs.listeners
	rs.mu.Unlock()

	rs.notify(listeners)
	if err != nil {
		return fmt.Errorf("clear room %s: %w", rs.roomID, err)
	}
	rs.metrics.SetStoreBytes(rs.roomID, 0)
	rs.logger.Infof(providers.TypeApp, "room %s cleared", rs.roomID)
	return nil
}

// Compact removes soft-deleted entries and persists the store, even when
// nothing was removed.
func (rs *RoomService) Compact(ctx context.Context) (models.CompactStats, error) {
	rs.mu.Lock()
	stats := rs.store.Compact()
	rs.revision++
	err := rs.persistLocked(ctx)
	listeners := rs.listeners
	rs.mu.Unlock()

	rs.notify(listeners)
	if err != nil {
		return stats, err
	}
	rs.metrics.IncCompactions(rs.roomID)
	rs.logger.Infof(providers.TypeApp, "room %s compacted: %d broadcasters, %d sessions removed", rs.roomID, stats.Broadcasters, stats.Sessions)
	return stats, nil
}

// Session returns a copy of the visible session with the given id and the
// name of its broadcaster.
func (rs *RoomService) Session(id string) (models.Session, string, error) {
	snapshot := rs.Snapshot()
	bi, si, ok := snapshot.LocateSession(id)
	if !ok {
		return models.Session{}, "", fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	b := snapshot.Broadcasters[bi]
	return *b.Sessions[si], b.Name, nil
}

// Snapshot returns a deep copy of the store.
func (rs *RoomService) Snapshot() *models.Storage {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.store.Clone()
}

func (rs *RoomService) persistLocked(ctx context.Context) error {
	blob, err := models.EncodeStorage(rs.store)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", rs.roomID, err)
	}
	if err := rs.backend.Set(ctx, rs.key, blob); err != nil {
		return fmt.Errorf("persist room %s: %w", rs.roomID, err)
	}
	rs.metrics.SetStoreBytes(rs.roomID, len(blob))
	return nil
}

func (rs *RoomService) notify(listeners []ChangeListener) {
	for _, l := range listeners {
		l(rs.roomID)
	}
}
