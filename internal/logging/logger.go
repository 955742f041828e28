// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/example/lessonsched/internal/config"
)

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger writes to out, and additionally appends to cfg.File on fsys when set.
// Timestamps are rendered in loc using cfg.TimeFormat. The returned close
// function releases the log file.
func NewLogger(fsys afero.Fs, cfg config.LogConfig, loc *time.Location, out io.Writer) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := fsys.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closeFn = f.Close
	}
	return slog.New(newHandler(cfg, loc, out)), closeFn, nil
}

func newHandler(cfg config.LogConfig, loc *time.Location, out io.Writer) slog.Handler {
	if loc == nil {
		loc = time.Local
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.In(loc).Format(timeFormat))
				}
			}
			return a
		},
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

// Discard is a logger for tests and disabled components.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
