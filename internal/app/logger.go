package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fliaght/novelmof/internal/config"
)

// serviceName is attached to every record.
const serviceName = "novelmof"

// NewLogger builds the process logger on stderr and installs it as the slog
// default.
//
// Format "json" produces structured JSON output (production).
// Format "text" produces human-readable output with source info (development).
// Level is one of: debug, info, warn (or warning), error, case-insensitive;
// anything else is info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := NewLoggerTo(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewLoggerTo builds the same logger writing to w, leaving the default
// logger alone.
func NewLoggerTo(w io.Writer, cfg config.LogConfig) *slog.Logger {
	text := strings.EqualFold(strings.TrimSpace(cfg.Format), "text")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: text,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if text {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("version", Version),
	)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
