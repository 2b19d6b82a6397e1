package models

import "time"

// Point is a single timestamped annotation. Time is milliseconds since epoch.
type Point struct {
	Time    int64  `json:"time"`
	Content string `json:"content"`
}

// NewPoint stamps content with the given creation time. Empty content is legal.
func NewPoint(now time.Time, content string) Point {
	return Point{
		Time:    now.UnixMilli(),
		Content: content,
	}
}
