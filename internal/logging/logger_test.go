package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lessonsched/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{Level: "info", Format: "json", TimeFormat: "2006-01-02"}

	logger, closeFn, err := NewLogger(afero.NewMemMapFs(), cfg, time.UTC, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("booked", "lesson_id", "L-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "booked", entry["msg"])
	assert.Equal(t, "L-1", entry["lesson_id"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, entry["time"])
}

func TestNewLogger_TeeToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/var/log/lessonsched/booking.log"
	require.NoError(t, fs.MkdirAll("/var/log/lessonsched", 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte("earlier entry\n"), 0o644))
	var buf bytes.Buffer

	logger, closeFn, err := NewLogger(fs, config.LogConfig{Level: "info", File: path}, nil, &buf)
	require.NoError(t, err)
	logger.Warn("lesson full")
	require.NoError(t, closeFn())

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "earlier entry", "log file is appended to")
	assert.Contains(t, string(data), "lesson full")
	assert.Contains(t, buf.String(), "lesson full")
}

func TestNewLogger_FileError(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, _, err := NewLogger(fs, config.LogConfig{File: "/booking.log"}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "open log file")
}
