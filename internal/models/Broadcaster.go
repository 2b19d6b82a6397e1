package models

// Broadcaster is the streaming identity owning one or more sessions.
type Broadcaster struct {
	ID       string     `json:"id,omitempty"`
	Name     string     `json:"name"`
	Link     string     `json:"link"`
	Deleted  bool       `json:"del"`
	Sessions []*Session `json:"lives"`
}

// Identity is what the identity resolver reports for the room being watched.
type Identity struct {
	Name  string `json:"name"`
	Link  string `json:"link"`
	Title string `json:"title"`
}

// LiveStatus reports whether the room is broadcasting and since when.
type LiveStatus struct {
	IsLive            bool  `json:"live"`
	StartEpochSeconds int64 `json:"start"`
}

// ActiveBroadcaster is a non-deleted broadcaster with its non-deleted sessions.
type ActiveBroadcaster struct {
	Index       int
	Broadcaster *Broadcaster
	Sessions    []ActiveSession
}

// IsLastActiveSession reports whether session si is the only non-deleted
// session of b. Deleting such a session deletes the broadcaster instead.
func IsLastActiveSession(b *Broadcaster, si int) bool {
	if si < 0 || si >= len(b.Sessions) || b.Sessions[si].Deleted {
		return false
	}
	for i, s := range b.Sessions {
		if i != si && !s.Deleted {
			return false
		}
	}
	return true
}

func (b *Broadcaster) activeSessions() []ActiveSession {
	active := make([]ActiveSession, 0, len(b.Sessions))
	for i, s := range b.Sessions {
		if !s.Deleted {
			active = append(active, ActiveSession{Index: i, Session: s})
		}
	}
	return active
}

func (b *Broadcaster) clone() *Broadcaster {
	c := *b
	if b.Sessions != nil {
		c.Sessions = make([]*Session, len(b.Sessions))
		for i, s := range b.Sessions {
			c.Sessions[i] = s.clone()
		}
	}
	return &c
}
