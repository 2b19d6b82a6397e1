package transcript

import (
	"fmt"
	"strings"
	"time"

	"livenotes/internal/models"
	"livenotes/internal/structures"
)

const (
	clockLayout = "15:04:05"
	startLayout = "2006-01-02 15:04:05"
	dateLayout  = "2006-01-02"

	DefaultGenerator = "livenotes"
)

// Exporter renders a session as a plain-text transcript.
type Exporter struct {
	Location  *time.Location
	Generator string
}

// NewExporter reads the timezone and generator line from conf. An empty
// timezone means the local zone.
func NewExporter(conf *structures.Config) (*Exporter, error) {
	loc := time.Local
	if conf.Export.Timezone != "" {
		l, err := time.LoadLocation(conf.Export.Timezone)
		if err != nil {
			return nil, fmt.Errorf("export timezone %q: %w", conf.Export.Timezone, err)
		}
		loc = l
	}
	gen := conf.Export.Generator
	if gen == "" {
		gen = DefaultGenerator
	}
	return &Exporter{Location: loc, Generator: gen}, nil
}

func (e *Exporter) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

// Render writes the header followed by one line per point in stored order.
func (e *Exporter) Render(session models.Session, broadcasterName string, opts models.ExportOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Generated by %s\n", e.Generator)
	fmt.Fprintf(&sb, "# %s\n", broadcasterName)
	fmt.Fprintf(&sb, "# %s - live start: %s\n", session.Title, time.UnixMilli(session.StartTime).In(e.location()).Format(startLayout))
	sb.WriteString("\n")

	for _, p := range session.Points {
		fmt.Fprintf(&sb, "[%s] %s\n", e.Timestamp(p, session.StartTime, opts), p.Content)
	}
	return sb.String()
}

// Timestamp formats p as wall-clock time or as the offset from startTime.
func (e *Exporter) Timestamp(p models.Point, startTime int64, opts models.ExportOptions) string {
	if opts.UseRelativeTime {
		return FormatRelative((p.Time-startTime)/1000 + opts.TimeOffsetSeconds)
	}
	return time.UnixMilli(p.Time + opts.TimeOffsetSeconds*1000).In(e.location()).Format(clockLayout)
}

// FormatRelative renders secs as HH:MM:SS. Hours are not wrapped and
// negative values keep their sign.
func FormatRelative(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs/60%60, secs%60)
}

// FileName returns "[name][title][YYYY-MM-DD].txt" using the session start date.
func (e *Exporter) FileName(session models.Session, broadcasterName string) string {
	date := time.UnixMilli(session.StartTime).In(e.location()).Format(dateLayout)
	return fmt.Sprintf("[%s][%s][%s].txt", broadcasterName, session.Title, date)
}
