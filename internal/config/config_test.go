package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Store.Path != "coauthor.db" {
		t.Errorf("expected default store path, got %s", cfg.Store.Path)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("expected default github base url, got %s", cfg.GitHub.BaseURL)
	}
	if cfg.Roster.ExpiryDelay != 1500*time.Millisecond {
		t.Errorf("expected default expiry delay 1.5s, got %s", cfg.Roster.ExpiryDelay)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COAUTHOR_SERVER__PORT", "9090")
	t.Setenv("COAUTHOR_GITHUB__BASE_URL", "https://github.example.com/api/v3")
	t.Setenv("COAUTHOR_LOGGING__LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("env port override not applied: %d", cfg.Server.Port)
	}
	if cfg.GitHub.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("env base_url override not applied: %s", cfg.GitHub.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env level override not applied: %s", cfg.Logging.Level)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coauthor.yaml")
	data := []byte("server:\n  port: 7070\nroster:\n  expiry_delay: 3s\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("yaml port not applied: %d", cfg.Server.Port)
	}
	if cfg.Roster.ExpiryDelay != 3*time.Second {
		t.Errorf("yaml expiry_delay not applied: %s", cfg.Roster.ExpiryDelay)
	}
}

func TestValidateCacheRequiresURL(t *testing.T) {
	t.Setenv("COAUTHOR_CACHE__ENABLED", "true")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when cache enabled without url")
	}
}

func TestMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
