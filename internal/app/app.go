// Package app wires configuration into a running data layer: local mirror,
// optional remote, sync engine, change fan-out and backup storage. Both the
// API server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/database"
	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/pubsub"
	"github.com/xelth-com/maintdesk/internal/storage"
	"github.com/xelth-com/maintdesk/internal/sync"
)

// App holds the components built from configuration
type App struct {
	Config      *config.Config
	Log         *zap.Logger
	Local       *localstore.Store
	DB          *database.DB // nil when no remote is configured
	Engine      *sync.SyncEngine
	Sink        storage.Sink
	Invalidator *pubsub.Invalidator // nil when REDIS_ADDR is unset

	redis *redis.Client
}

// New opens every configured component. A remote that cannot be reached at
// startup is logged and skipped; the node then serves from the local mirror.
func New(ctx context.Context, cfg *config.Config, syncCfg *config.SyncConfig, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	local, err := localstore.Open(ctx, cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local mirror: %w", err)
	}
	a.Local = local
	log.Info("💾 Local mirror ready", zap.String("path", local.Path()))

	// A typed nil *database.DB must not reach the engine as a Remote
	var remote sync.Remote
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			log.Warn("⚠️  Remote unavailable at startup, running off the local mirror", zap.Error(err))
		} else {
			a.DB = db
			remote = db
		}
	}

	a.Engine = sync.NewSyncEngine(local, remote, syncCfg, log)

	if cfg.Redis.Addr != "" {
		a.redis = pubsub.NewClient(cfg.Redis)
		a.Invalidator = pubsub.NewInvalidator(a.redis, cfg.Redis.Channel, a.Engine, log)
		a.Engine.AddNotifier(a.Invalidator)
	}

	sink, err := storage.New(ctx, cfg.MinIO, filepath.Join(filepath.Dir(cfg.Local.Path), "backups"))
	if err != nil {
		log.Warn("⚠️  Object storage unavailable, keeping backups on disk", zap.Error(err))
		sink = storage.NewFileSink(filepath.Join(filepath.Dir(cfg.Local.Path), "backups"))
	}
	a.Sink = sink

	return a, nil
}

// Close releases every component in reverse order of New
func (a *App) Close() error {
	a.Engine.Stop()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("Redis close error", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.Log.Info("🛑 Closing remote connection...")
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close error", zap.Error(err))
		}
	}
	return a.Local.Close()
}
