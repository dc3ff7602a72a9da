package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/replica/logging"
)

// These tests mutate package state and must not run in parallel.

func TestInitAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "replica.log")
	require.NoError(t, logging.Init(logging.Config{Level: "debug", Path: path}))
	t.Cleanup(func() { _ = logging.Close() })

	logger := logging.Get("snapshot")
	logger.Debug("walk started", "root", "codebase")
	logger.With("file", "index.js").Info("block written")

	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "walk started")
	assert.Contains(t, out, "snapshot")
	assert.Contains(t, out, "file=index.js")
}

func TestInitRejectsBadLevels(t *testing.T) {
	dir := t.TempDir()

	err := logging.Init(logging.Config{Level: "loud", Path: filepath.Join(dir, "a.log")})
	require.ErrorIs(t, err, logging.ErrInvalidLevel)

	err = logging.Init(logging.Config{Level: "info", ConsoleLevel: "shouty", Path: filepath.Join(dir, "b.log")})
	require.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	require.NoError(t, logging.Init(logging.Config{Level: "warn", Path: path}))

	logger := logging.Get("regen")
	logger.Info("hidden message")
	logger.Warn("visible message")
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden message"))
	assert.Contains(t, string(data), "visible message")
}

func TestGetBeforeInitDiscards(t *testing.T) {
	require.NoError(t, logging.Close())

	logger := logging.Get("walker")
	assert.Equal(t, "walker", logger.Component())
	assert.NotPanics(t, func() { logger.Error("nobody hears this") })
	assert.NotPanics(t, func() { logging.Discard().Info("dropped") })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.Level
	}{
		{"debug", logging.LevelDebug},
		{"", logging.LevelInfo},
		{"INFO", logging.LevelInfo},
		{"warning", logging.LevelWarn},
		{"error", logging.LevelError},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.NotEqual(t, "unknown", got.String())
	}
}

func TestDefaultLogPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(logging.DefaultLogPath(), filepath.Join("replica", "replica.log")))
}
