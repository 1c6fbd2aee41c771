package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.StorageBackend != "redis" {
		t.Errorf("expected default backend redis, got %q", cfg.StorageBackend)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Errorf("expected default TTL 168h, got %v", cfg.SessionTTL)
	}
	if cfg.TrustDecayFactor != 0.98 {
		t.Errorf("expected default decay 0.98, got %v", cfg.TrustDecayFactor)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SWEEP_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageBackend != "sqlite" || cfg.SQLitePath != "/tmp/test.db" {
		t.Errorf("backend overrides not applied: %q %q", cfg.StorageBackend, cfg.SQLitePath)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("expected 30s interval, got %v", cfg.SweepInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "postgres")
		if _, err := Load(); err == nil {
			t.Error("expected error for unknown backend")
		}
	})

	t.Run("decay factor out of range", func(t *testing.T) {
		t.Setenv("TRUST_DECAY_FACTOR", "1.5")
		if _, err := Load(); err == nil {
			t.Error("expected error for decay factor above 1")
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
