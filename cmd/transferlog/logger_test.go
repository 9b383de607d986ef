package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(&levelRouter{
		min:    slog.LevelInfo,
		stdout: slog.NewTextHandler(&out, opts),
		stderr: slog.NewTextHandler(&errOut, opts),
	})

	logger.Debug("hidden")
	logger.Info("shown", "k", "v")
	logger.With("request_id", "abc").Error("failed")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug record should be filtered")
	}
	if !strings.Contains(out.String(), "shown") {
		t.Error("info record should go to stdout")
	}
	if !strings.Contains(errOut.String(), "request_id=abc") {
		t.Errorf("error record should go to stderr with attrs, got %q", errOut.String())
	}
	if strings.Contains(out.String(), "failed") {
		t.Error("error record should not go to stdout")
	}
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled")
	}
}
