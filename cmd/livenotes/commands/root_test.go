package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, primary string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
webServer:
  host: 127.0.0.1
  port: 8090
storage:
  primary: %s
  dir: %s
logger:
  level: info
  mode: 420
  dir: %s
export:
  timezone: UTC
`, primary, filepath.Join(dir, "data"), dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_RecordListExportDeleteGC(t *testing.T) {
	cfg := writeTestConfig(t, "pebble")
	base := []string{"--config", cfg, "--room", "42"}
	cmd := func(args ...string) []string { return append(append([]string{}, args...), base...) }

	out, err := run(t, cmd("record", "--name", "Alice", "--title", "Evening", "--start", "1700000000", "hello", "world")...)
	require.NoError(t, err)
	assert.Equal(t, "recorded\n", out)

	out, err = run(t, cmd("record", "--name", "Alice", "--title", "Evening", "--start", "1700000000", "--live=false", "ignored")...)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing recorded")

	out, err = run(t, cmd("list")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Alice", lines[0])
	assert.Contains(t, lines[1], "[2023/11/14]Evening[1]")
	fields := strings.Fields(lines[1])
	sessionID := fields[len(fields)-1]

	_, err = run(t, cmd("options", "--relative")...)
	require.NoError(t, err)

	exportDir = ""
	out, err = run(t, cmd("export", sessionID)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# Alice\n")
	assert.Contains(t, out, "hello world\n")

	dir := t.TempDir()
	out, err = run(t, cmd("export", sessionID, "--out", dir)...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "[Alice][Evening][2023-11-14].txt"))
	exportDir = ""

	out, err = run(t, cmd("delete", sessionID)...)
	require.NoError(t, err)
	assert.Equal(t, "broadcaster deleted\n", out)

	out, err = run(t, cmd("gc")...)
	require.NoError(t, err)
	assert.Equal(t, "removed 1 broadcasters, 0 sessions\n", out)

	out, err = run(t, cmd("list")...)
	require.NoError(t, err)
	assert.Equal(t, "no sessions\n", out)
}

func TestCLI_MissingRoom(t *testing.T) {
	cfg := writeTestConfig(t, "sqlite")
	roomID = ""
	_, err := run(t, "clear", "--config", cfg, "--room", "")
	assert.Error(t, err)
}

func TestCLI_UsageAndOptions(t *testing.T) {
	cfg := writeTestConfig(t, "sqlite")

	out, err := run(t, "usage", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "backend: sqlite\n")
	assert.Contains(t, out, "fallback: false\n")

	out, err = run(t, "options", "--config", cfg, "--offset", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "offset: 30s")

	out, err = run(t, "options", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "offset: 30s")
}

func TestCLI_DeleteUnknownSession(t *testing.T) {
	cfg := writeTestConfig(t, "pebble")
	_, err := run(t, "delete", "missing", "--config", cfg, "--room", "1")
	assert.Error(t, err)
}
