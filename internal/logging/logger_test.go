package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "plan2bead.log")

	logger, err := New(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.WithRun("run-1").WithPhase("create").Debug("tracker call", "title", "Fix login bug")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "tracker call", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "create", entry["phase"])
	assert.Equal(t, "Fix login bug", entry["title"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Verbose: true, Level: "warn", Stderr: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "count", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "count=2")
}

func TestQuietLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Stderr: &buf, Level: "debug"})
	require.NoError(t, err)

	logger.Error("nobody hears this")
	assert.Empty(t, buf.String())
	assert.NoError(t, logger.Close())
}

func TestWithKeepsParentUnchanged(t *testing.T) {
	var buf bytes.Buffer
	parent, err := New(Options{Verbose: true, Stderr: &buf})
	require.NoError(t, err)

	parent.With("task", "child-only").Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "task=child-only")
	assert.NotContains(t, lines[1], "child-only")
}

func TestIsValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "Warn", "error"} {
		assert.True(t, IsValidLevel(level), level)
	}
	assert.False(t, IsValidLevel("verbose"))
	assert.False(t, IsValidLevel(""))
}
