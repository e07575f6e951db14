package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", line, err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewWithWriter_DefaultFields(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "1.1", &buf)
	logger.Info("status published", "trigger", "poll")

	entry := decodeLine(t, buf.Bytes())
	want := map[string]string{
		"service": serviceName,
		"version": "1.1",
		"msg":     "status published",
		"trigger": "poll",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(config.LoggingConfig{Level: "debug", Format: "TEXT"}, "1.1", &buf)
	logger.Debug("poll", "state", "on")

	out := buf.String()
	if !strings.Contains(out, "msg=poll") || !strings.Contains(out, "state=on") {
		t.Errorf("text output = %q", out)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "1.1", &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(output, "shown") {
		t.Error("warn entry should be written at warn level")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(config.LoggingConfig{Format: "json"}, "1.1", &buf)
	logger.Component("session").Info("connected")

	entry := decodeLine(t, buf.Bytes())
	if entry["component"] != "session" {
		t.Errorf("component = %v, want session", entry["component"])
	}
	if entry["service"] != serviceName {
		t.Errorf("child lost default fields: %v", entry)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bridge.log")

	logger := New(config.LoggingConfig{Level: "info", Format: "json", Output: path}, "1.1")
	logger.Info("first")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	logger = New(config.LoggingConfig{Level: "info", Format: "json", Output: path}, "1.1")
	logger.Info("second")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log file has %d lines, want 2 (append mode): %q", len(lines), data)
	}
	if decodeLine(t, []byte(lines[1]))["msg"] != "second" {
		t.Errorf("second line = %s", lines[1])
	}
}

func TestNew_UnwritableFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	// A path below a regular file can never be created.
	logger := New(config.LoggingConfig{Output: filepath.Join(blocker, "bridge.log")}, "1.1")
	if logger == nil {
		t.Fatal("expected a logger even when the file cannot be opened")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on fallback logger = %v", err)
	}
}

func TestClose_StandardStreams(t *testing.T) {
	for _, out := range []string{"", "stdout", "stderr"} {
		logger := New(config.LoggingConfig{Output: out}, "1.1")
		if err := logger.Close(); err != nil {
			t.Errorf("Close() for %q = %v", out, err)
		}
	}
}

func TestDefaultAndDiscard(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
	logger := Discard()
	logger.Error("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
