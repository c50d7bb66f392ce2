package app

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level LogLevel, prefix string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: prefix})
	l.sink.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l, &buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{" error ", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_LineFormat(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo, "splice")

	l.WithFields(map[string]any{"zeta": 2, "alpha": "a"}).Info("saved %s", "demo.splice")

	want := "2026-03-01T12:00:00.000 [INFO] splice: saved demo.splice {alpha=a, zeta=2}\n"
	if got := buf.String(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestLogger_NoPrefix(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo, "")
	l.Warn("offline")

	want := "2026-03-01T12:00:00.000 [WARN] offline\n"
	if got := buf.String(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newTestLogger(LogLevelWarn, "")

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	out := buf.String()
	for _, tag := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(out, tag) {
			t.Errorf("output contains %s: %q", tag, out)
		}
	}
	for _, tag := range []string{"[WARN]", "[ERROR]"} {
		if !strings.Contains(out, tag) {
			t.Errorf("output missing %s: %q", tag, out)
		}
	}
}

func TestLogger_DerivedSharesSink(t *testing.T) {
	l, buf := newTestLogger(LogLevelError, "")
	child := l.WithComponent("media")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}

	l.SetLevel(LogLevelInfo)
	child.Info("shown")
	if !strings.Contains(buf.String(), "component=media") {
		t.Errorf("output = %q, want component field", buf.String())
	}
	if l.Level() != LogLevelInfo {
		t.Errorf("Level() = %v", l.Level())
	}
}

func TestLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo, "")
	_ = l.WithField("k", "v")

	l.Info("plain")
	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("parent logger gained a field: %q", buf.String())
	}
}

func TestLogger_SetOutput(t *testing.T) {
	l, first := newTestLogger(LogLevelInfo, "")
	var second bytes.Buffer

	l.Info("one")
	l.SetOutput(&second)
	l.Info("two")

	if !strings.Contains(first.String(), "one") || strings.Contains(first.String(), "two") {
		t.Errorf("first = %q", first.String())
	}
	if !strings.Contains(second.String(), "two") {
		t.Errorf("second = %q", second.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo, "")

	l.Disable()
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatal("expected no output when disabled")
	}

	l.Enable()
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Debug("test")
	NullLogger.WithComponent("x").Error("test %d", 1)
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	if cfg.Level != LogLevelInfo {
		t.Errorf("Level = %v, want INFO", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("Output is nil")
	}
	if cfg.Prefix != "splice" {
		t.Errorf("Prefix = %q, want splice", cfg.Prefix)
	}
}
