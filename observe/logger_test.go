package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestLogger_LevelFiltering verifies messages below the level are discarded.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["message"] != "warn" || lines[0]["level"] != "warn" {
		t.Errorf("unexpected first line: %v", lines[0])
	}
	if lines[1]["message"] != "error" || lines[1]["level"] != "error" {
		t.Errorf("unexpected second line: %v", lines[1])
	}
}

func TestLogger_WithProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithProvider(ProviderMeta{
		Name:    "simple_probes",
		Backend: "noop",
		Probes:  []string{"hello", "greeting"},
	})

	logger.Info(context.Background(), "provider registered", Field{Key: "duration_ms", Value: 1.5})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line["provider.name"] != "simple_probes" {
		t.Errorf("provider.name = %v", line["provider.name"])
	}
	if line["provider.backend"] != "noop" {
		t.Errorf("provider.backend = %v", line["provider.backend"])
	}
	probes, ok := line["provider.probes"].([]any)
	if !ok || len(probes) != 2 || probes[0] != "hello" {
		t.Errorf("provider.probes = %v", line["provider.probes"])
	}
	if line["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v", line["duration_ms"])
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

// TestLogger_Redaction verifies sensitive keys never reach the output.
func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "fired",
		Field{Key: "args", Value: []string{"user@example.com"}},
		Field{Key: "token", Value: "abc123"},
		Field{Key: "probe", Value: "greeting"},
	)

	if strings.Contains(buf.String(), "user@example.com") || strings.Contains(buf.String(), "abc123") {
		t.Fatalf("sensitive value leaked: %s", buf.String())
	}
	line := decodeLines(t, &buf)[0]
	if line["args"] != "[REDACTED]" || line["token"] != "[REDACTED]" {
		t.Errorf("expected redaction, got %v", line)
	}
	if line["probe"] != "greeting" {
		t.Errorf("probe = %v", line["probe"])
	}
}

func TestLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Warn(context.Background(), "failed", Field{Key: "error", Value: errors.New("boom")})

	line := decodeLines(t, &buf)[0]
	if line["error"] != "boom" {
		t.Errorf("error = %v, want boom", line["error"])
	}
}
