package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://lookup.example.com/api"
	cfg.Auth.PasswordMinLength = 8

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.API.BaseURL != "https://lookup.example.com/api" {
		t.Errorf("API.BaseURL: got %q, want %q", loaded.API.BaseURL, "https://lookup.example.com/api")
	}
	if loaded.Auth.PasswordMinLength != 8 {
		t.Errorf("Auth.PasswordMinLength: got %d, want 8", loaded.Auth.PasswordMinLength)
	}
}

func TestDefaultConfigPasswordPolicy(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Auth.PasswordMinLength != 5 {
		t.Errorf("default PasswordMinLength: got %d, want 5", cfg.Auth.PasswordMinLength)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `version: 1
api:
  base_url: http://10.0.0.5:8000/api
`
	if err := os.WriteFile(filepath.Join(tmpDir, configFile), []byte(partial), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:8000/api" {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
	if cfg.Views.SpamPageSize != 15 {
		t.Errorf("Views.SpamPageSize: got %d, want default 15", cfg.Views.SpamPageSize)
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Errorf("RequestTimeout: got %v, want 15s", cfg.RequestTimeout())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(apiURLEnvVar, "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("API.BaseURL: got %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, configFile), []byte("api: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(apiURLEnvVar, "http://override:9000/api")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://override:9000/api" {
		t.Errorf("API.BaseURL: got %q, want env override", cfg.API.BaseURL)
	}
}

func TestSessionDBPath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.SessionDBPath("/tmp/rc"); got != filepath.Join("/tmp/rc", "session.db") {
		t.Errorf("SessionDBPath relative: got %q", got)
	}
	cfg.Storage.SessionDB = "/var/lib/rc/s.db"
	if got := cfg.SessionDBPath("/tmp/rc"); got != "/var/lib/rc/s.db" {
		t.Errorf("SessionDBPath absolute: got %q", got)
	}
}

func TestDirHonoursEnv(t *testing.T) {
	t.Setenv(homeEnvVar, "/srv/ringcheck")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if dir != "/srv/ringcheck" {
		t.Errorf("Dir: got %q, want /srv/ringcheck", dir)
	}
}
