package app

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/models"
	"github.com/xelth-com/maintdesk/internal/storage"
)

func TestNewOffline(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := &config.Config{
		Local: config.LocalConfig{Path: filepath.Join(dir, "data", "mirror.db")},
	}
	syncCfg := &config.SyncConfig{CacheTTL: 30, RemoteTimeout: 1, DefaultJobPrefix: "JOB"}

	a, err := New(ctx, cfg, syncCfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.DB != nil || a.Engine.HasRemote() {
		t.Error("No remote should be configured")
	}
	if a.Invalidator != nil {
		t.Error("No invalidator without REDIS_ADDR")
	}
	if _, ok := a.Sink.(*storage.FileSink); !ok {
		t.Errorf("Expected a file sink, got %T", a.Sink)
	}

	tech := models.Technician{Name: "Somchai"}
	if err := a.Engine.SaveTechnician(ctx, &tech); err != nil {
		t.Fatalf("SaveTechnician failed: %v", err)
	}
	techs, err := a.Engine.GetTechnicians(ctx)
	if err != nil || len(techs) != 1 {
		t.Errorf("Expected 1 technician, got %d, %v", len(techs), err)
	}
}
