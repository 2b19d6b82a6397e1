package models

import (
	"cmp"
	"slices"
)

// Session is one broadcast occurrence. StartTime is in milliseconds; Points are
// kept in insertion order, which is also chronological order.
type Session struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	StartTime int64   `json:"time"`
	Deleted   bool    `json:"del"`
	Points    []Point `json:"points"`
}

func (s *Session) clone() *Session {
	c := *s
	if s.Points != nil {
		c.Points = slices.Clone(s.Points)
	}
	return &c
}

// ActiveSession is a non-deleted session together with its storage index.
type ActiveSession struct {
	Index   int
	Session *Session
}

// SortSessionsByStartDesc returns a copy of sessions ordered newest first.
// Storage order is left untouched.
func SortSessionsByStartDesc(sessions []ActiveSession) []ActiveSession {
	sorted := slices.Clone(sessions)
	slices.SortStableFunc(sorted, func(a, b ActiveSession) int {
		return cmp.Compare(b.Session.StartTime, a.Session.StartTime)
	})
	return sorted
}
