package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BRAINQUEST_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("BRAINQUEST_STORAGE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.URL != DefaultAPIURL || cfg.Storage.Backend != DefaultBackend || cfg.Server.Port != DefaultPort {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  url: http://quiz.example/api
  timeout: 5s
storage:
  backend: redis
redis:
  addr: localhost:6379
  ttl: 1h
topics:
  ttl: 2m
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BRAINQUEST_API_URL", "")
	t.Setenv("PORT", "9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.URL != "http://quiz.example/api" || cfg.Storage.Backend != "redis" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Server.Port != "9999" {
		t.Fatalf("expected env port override, got %q", cfg.Server.Port)
	}
	if got := TTLDuration(cfg.API.Timeout, time.Minute); got != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", got)
	}
	if got := TTLDuration(cfg.API.SlowThreshold, 3*time.Second); got != 3*time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestTTLDurationRejectsGarbage(t *testing.T) {
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected yaml error")
	}
}
