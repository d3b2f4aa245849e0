package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSyncConfig(t *testing.T) {
	t.Setenv("SYNC_CACHE_TTL", "")
	t.Setenv("SYNC_REMOTE_TIMEOUT", "")

	cfg := DefaultSyncConfig()
	if cfg.CacheTTL != 30 {
		t.Errorf("CacheTTL = %d, want 30", cfg.CacheTTL)
	}
	if cfg.RemoteTimeout != 5 {
		t.Errorf("RemoteTimeout = %d, want 5", cfg.RemoteTimeout)
	}
	if cfg.DefaultJobPrefix != "JOB" {
		t.Errorf("DefaultJobPrefix = %q, want JOB", cfg.DefaultJobPrefix)
	}
}

func TestSyncConfigFromEnv(t *testing.T) {
	t.Setenv("SYNC_CACHE_TTL", "10")
	t.Setenv("SYNC_REMOTE_TIMEOUT", "abc")

	cfg := DefaultSyncConfig()
	if cfg.CacheTTL != 10 {
		t.Errorf("CacheTTL = %d, want 10", cfg.CacheTTL)
	}
	// Unparseable values keep the default
	if cfg.RemoteTimeout != 5 {
		t.Errorf("RemoteTimeout = %d, want 5", cfg.RemoteTimeout)
	}
}

func TestLoadSyncConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.json")
	if err := os.WriteFile(path, []byte(`{"cache_ttl": 12, "default_job_prefix": "MTN"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SYNC_CONFIG_PATH", path)

	cfg := LoadSyncConfig()
	if cfg.CacheTTL != 12 {
		t.Errorf("CacheTTL = %d, want 12", cfg.CacheTTL)
	}
	if cfg.DefaultJobPrefix != "MTN" {
		t.Errorf("DefaultJobPrefix = %q, want MTN", cfg.DefaultJobPrefix)
	}
	if cfg.RemoteTimeout != 5 {
		t.Errorf("RemoteTimeout = %d, want default 5", cfg.RemoteTimeout)
	}
}

func TestLoadRemoteToggle(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	t.Setenv("PG_HOST", "")
	t.Setenv("REMOTE_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Enabled {
		t.Error("remote should be disabled without PG_HOST")
	}

	t.Setenv("PG_HOST", "db.internal")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Database.Enabled {
		t.Error("remote should be enabled when PG_HOST is set")
	}
	if cfg.Database.Embedded() {
		t.Error("non-localhost host must not be embedded")
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without JWT_SECRET in production")
	}
}
