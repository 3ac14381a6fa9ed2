package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestLogLevelMapping(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := logLevel(&Config{LogLevel: tc.in}); got != tc.want {
			t.Fatalf("logLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := logLevel(nil); got != slog.LevelInfo {
		t.Fatalf("logLevel(nil) = %v, want info", got)
	}
}

func TestNewLoggerHonorsConfiguredLevel(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "warn"})
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("warn not enabled at warn level")
	}

	logger = NewLogger(nil)
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("debug enabled by default")
	}
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info not enabled by default")
	}
}
