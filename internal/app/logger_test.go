package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fliaght/novelmof/internal/config"
)

func TestNewLoggerTo_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LogConfig{Level: "info", Format: "json"})

	logger.Info("document stored", slog.String("file", "a.mofarch.json"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("JSON handler should produce valid JSON: %v", err)
	}
	if m["msg"] != "document stored" || m["file"] != "a.mofarch.json" {
		t.Errorf("unexpected record: %v", m)
	}
	if m["service"] != "novelmof" || m["version"] != Version {
		t.Errorf("record should carry service and version: %v", m)
	}
}

func TestNewLoggerTo_TextFormatAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LogConfig{Level: "debug", Format: "text"})

	logger.Debug("source test")

	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("text format should include source information, got %q", buf.String())
	}
}

func TestNewLoggerTo_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LogConfig{Level: "warn", Format: "json"})

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn should pass at warn level")
	}
}

func TestNewLoggerTo_UnknownFormatIsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, config.LogConfig{Format: "logfmt"}).Info("x")

	if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("unknown format should fall back to JSON, got %q", buf.String())
	}
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})
	if slog.Default() != logger {
		t.Error("NewLogger should set the default logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
