package models

import (
	"errors"
	"iter"
	"slices"

	json "github.com/goccy/go-json"
)

var ErrNotFound = errors.New("not found")

// IDGenerator produces stable synthetic ids for new broadcasters and sessions.
type IDGenerator func() string

// Storage is the per-room nested collection of broadcasters. It serializes as
// a bare JSON array. Storage is not safe for concurrent use; the room service
// owns the locking.
type Storage struct {
	Broadcasters []*Broadcaster
}

type DeleteOutcome int

const (
	SessionDeleted DeleteOutcome = iota + 1
	BroadcasterDeleted
)

func (o DeleteOutcome) String() string {
	switch o {
	case SessionDeleted:
		return "session"
	case BroadcasterDeleted:
		return "broadcaster"
	default:
		return "none"
	}
}

type CompactStats struct {
	Broadcasters int `json:"broadcasters"`
	Sessions     int `json:"sessions"`
}

func (s *Storage) MarshalJSON() ([]byte, error) {
	if s.Broadcasters == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Broadcasters)
}

func (s *Storage) UnmarshalJSON(data []byte) error {
	var broadcasters []*Broadcaster
	if err := json.Unmarshal(data, &broadcasters); err != nil {
		return err
	}
	s.Broadcasters = broadcasters
	return nil
}

// FindBroadcaster returns the index of the first non-deleted broadcaster
// called name, or -1.
func (s *Storage) FindBroadcaster(name string) int {
	for i, b := range s.Broadcasters {
		if !b.Deleted && b.Name == name {
			return i
		}
	}
	return -1
}

// FindSession returns the index of the first non-deleted session titled
// title under broadcaster bi, or -1.
func (s *Storage) FindSession(bi int, title string) int {
	if bi < 0 || bi >= len(s.Broadcasters) {
		return -1
	}
	for i, sess := range s.Broadcasters[bi].Sessions {
		if !sess.Deleted && sess.Title == title {
			return i
		}
	}
	return -1
}

// AddPoint appends point to the session identified by (identity.Name,
// identity.Title), creating the broadcaster and the session when needed.
// A new session starts at startTime (ms). The link of an existing
// broadcaster is never updated.
func (s *Storage) AddPoint(identity Identity, startTime int64, point Point, newID IDGenerator) (int, int) {
	bi := s.FindBroadcaster(identity.Name)
	if bi < 0 {
		s.Broadcasters = append(s.Broadcasters, &Broadcaster{
			ID:       newID(),
			Name:     identity.Name,
			Link:     identity.Link,
			Sessions: make([]*Session, 0, 1),
		})
		bi = len(s.Broadcasters) - 1
	}
	b := s.Broadcasters[bi]

	si := s.FindSession(bi, identity.Title)
	if si < 0 {
		b.Sessions = append(b.Sessions, &Session{
			ID:        newID(),
			Title:     identity.Title,
			StartTime: startTime,
			Points:    make([]Point, 0, 1),
		})
		si = len(b.Sessions) - 1
	}
	b.Sessions[si].Points = append(b.Sessions[si].Points, point)
	return bi, si
}

// Active yields non-deleted broadcasters in insertion order, each with its
// non-deleted sessions. The sequence reads the storage lazily and can be
// ranged over any number of times.
func (s *Storage) Active() iter.Seq[ActiveBroadcaster] {
	return func(yield func(ActiveBroadcaster) bool) {
		for i, b := range s.Broadcasters {
			if b.Deleted {
				continue
			}
			if !yield(ActiveBroadcaster{Index: i, Broadcaster: b, Sessions: b.activeSessions()}) {
				return
			}
		}
	}
}

// DeleteSession soft-deletes session si of broadcaster bi. When it is the
// broadcaster's last non-deleted session the broadcaster is deleted instead;
// points stay in place until Compact.
func (s *Storage) DeleteSession(bi, si int) (DeleteOutcome, error) {
	if bi < 0 || bi >= len(s.Broadcasters) || s.Broadcasters[bi].Deleted {
		return 0, ErrNotFound
	}
	b := s.Broadcasters[bi]
	if si < 0 || si >= len(b.Sessions) || b.Sessions[si].Deleted {
		return 0, ErrNotFound
	}
	if IsLastActiveSession(b, si) {
		b.Deleted = true
		return BroadcasterDeleted, nil
	}
	b.Sessions[si].Deleted = true
	return SessionDeleted, nil
}

// LocateSession finds a visible session by its synthetic id.
func (s *Storage) LocateSession(id string) (int, int, bool) {
	if id == "" {
		return -1, -1, false
	}
	for bi, b := range s.Broadcasters {
		if b.Deleted {
			continue
		}
		for si, sess := range b.Sessions {
			if !sess.Deleted && sess.ID == id {
				return bi, si, true
			}
		}
	}
	return -1, -1, false
}

// Compact physically removes deleted broadcasters and, within the survivors,
// deleted sessions.
func (s *Storage) Compact() CompactStats {
	var stats CompactStats
	for i := len(s.Broadcasters) - 1; i >= 0; i-- {
		b := s.Broadcasters[i]
		if b.Deleted {
			s.Broadcasters = slices.Delete(s.Broadcasters, i, i+1)
			stats.Broadcasters++
			continue
		}
		for j := len(b.Sessions) - 1; j >= 0; j-- {
			if b.Sessions[j].Deleted {
				b.Sessions = slices.Delete(b.Sessions, j, j+1)
				stats.Sessions++
			}
		}
	}
	return stats
}

// BackfillIDs assigns ids to entries persisted before ids existed and
// returns how many were assigned.
func (s *Storage) BackfillIDs(newID IDGenerator) int {
	n := 0
	for _, b := range s.Broadcasters {
		if b.ID == "" {
			b.ID = newID()
			n++
		}
		for _, sess := range b.Sessions {
			if sess.ID == "" {
				sess.ID = newID()
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *Storage) Clone() *Storage {
	c := &Storage{}
	if s.Broadcasters != nil {
		c.Broadcasters = make([]*Broadcaster, len(s.Broadcasters))
		for i, b := range s.Broadcasters {
			c.Broadcasters[i] = b.clone()
		}
	}
	return c
}

// PointCount counts points across every entry, deleted ones included.
func (s *Storage) PointCount() int {
	n := 0
	for _, b := range s.Broadcasters {
		for _, sess := range b.Sessions {
			n += len(sess.Points)
		}
	}
	return n
}
