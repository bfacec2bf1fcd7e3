package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q): want %v, got %v", in, want, got)
		}
	}
}

func TestInitFromEnv_JSON(t *testing.T) {
	t.Setenv("DATASYNC_LOG_LEVEL", "debug")
	t.Setenv("DATASYNC_LOG_JSON", "true")
	InitFromEnv()
	if _, ok := L().Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("want JSON handler, got %T", L().Handler())
	}
	if !L().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level not enabled")
	}
	Configure(Options{})
}
