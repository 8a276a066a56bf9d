package log

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestWithComponent(t *testing.T) {
	base := New(slog.LevelInfo, "main")
	if base.Component() != "main" {
		t.Errorf("expected component main, got %q", base.Component())
	}

	sub := base.WithComponent("httpapi")
	if sub.Component() != "httpapi" {
		t.Errorf("expected component httpapi, got %q", sub.Component())
	}
	if base.Component() != "main" {
		t.Error("expected parent component unchanged")
	}
}
