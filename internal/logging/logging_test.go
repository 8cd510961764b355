package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelDebug, ParseLevel(""))
	assert.Equal(t, slog.LevelDebug, ParseLevel("verbose"))
}

func TestNewWithOptions_JSON(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var quiet bytes.Buffer
	logger := NewWithOptions(Options{Format: "json", Level: "warn", Output: &quiet})
	logger.Info("dropped")
	logger.Warn("kept", "match", "m1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(quiet.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "m1", rec["match"])
	assert.Same(t, logger, slog.Default())
}

func TestRotating(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dungeonwave.log")
	lj := Rotating(name)
	defer lj.Close()

	_, err := lj.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, lj.MaxSize)
	assert.True(t, lj.Compress)
	assert.FileExists(t, name)
}
