package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotes/internal/models"
	"livenotes/internal/structures"
)

const sessionStart = int64(1_700_000_000_000) // 2023-11-14 22:13:20 UTC

func utcExporter() *Exporter {
	return &Exporter{Location: time.UTC, Generator: "livenotes"}
}

func sampleSession() models.Session {
	return models.Session{
		Title:     "Evening stream",
		StartTime: sessionStart,
		Points: []models.Point{
			{Time: sessionStart, Content: "start"},
			{Time: sessionStart + 65_000, Content: "one-oh-five"},
		},
	}
}

func TestRender_RelativeMode(t *testing.T) {
	out := utcExporter().Render(sampleSession(), "Alice", models.ExportOptions{UseRelativeTime: true})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "# Generated by livenotes", lines[0])
	assert.Equal(t, "# Alice", lines[1])
	assert.Equal(t, "# Evening stream - live start: 2023-11-14 22:13:20", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "[00:00:00] start", lines[4])
	assert.Equal(t, "[00:01:05] one-oh-five", lines[5])
}

func TestRender_AbsoluteModeWithOffset(t *testing.T) {
	out := utcExporter().Render(sampleSession(), "Alice", models.ExportOptions{TimeOffsetSeconds: 30})

	assert.Contains(t, out, "\n[22:13:50] start\n")
	assert.Contains(t, out, "\n[22:14:55] one-oh-five\n")
}

func TestRender_RelativeModeWithOffset(t *testing.T) {
	out := utcExporter().Render(sampleSession(), "Alice", models.ExportOptions{UseRelativeTime: true, TimeOffsetSeconds: -10})

	assert.Contains(t, out, "[-00:00:10] start")
	assert.Contains(t, out, "[00:00:55] one-oh-five")
}

func TestRender_NoPoints(t *testing.T) {
	s := sampleSession()
	s.Points = nil
	out := utcExporter().Render(s, "Alice", models.ExportOptions{})
	assert.True(t, strings.HasSuffix(out, "live start: 2023-11-14 22:13:20\n\n"))
}

func TestRender_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	e := &Exporter{Location: tokyo, Generator: "x"}

	out := e.Render(sampleSession(), "Alice", models.ExportOptions{})
	assert.Contains(t, out, "live start: 2023-11-15 07:13:20")
	assert.Contains(t, out, "[07:13:20] start")
}

func TestFormatRelative(t *testing.T) {
	cases := map[int64]string{
		0:             "00:00:00",
		59:            "00:00:59",
		65:            "00:01:05",
		3600:          "01:00:00",
		125 * 3600:    "125:00:00",
		125*3600 + 61: "125:01:01",
		-65:           "-00:01:05",
	}
	for secs, want := range cases {
		assert.Equal(t, want, FormatRelative(secs), "secs=%d", secs)
	}
}

func TestFileName(t *testing.T) {
	name := utcExporter().FileName(sampleSession(), "Alice")
	assert.Equal(t, "[Alice][Evening stream][2023-11-14].txt", name)
}

func TestNewExporter(t *testing.T) {
	e, err := NewExporter(&structures.Config{Export: structures.ExportConfig{Timezone: "UTC"}})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Location)
	assert.Equal(t, DefaultGenerator, e.Generator)

	_, err = NewExporter(&structures.Config{Export: structures.ExportConfig{Timezone: "Mars/Olympus"}})
	assert.Error(t, err)
}

func TestListLabel(t *testing.T) {
	label := utcExporter().ListLabel(sampleSession())
	assert.Equal(t, "[2023/11/14]Evening stream[2]", label)
}
