package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/app"
	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/handlers"
	"github.com/xelth-com/maintdesk/internal/logging"
	"github.com/xelth-com/maintdesk/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 2. Local mirror, optional remote, sync engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, config.LoadSyncConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to start data layer", zap.Error(err))
	}
	a.Engine.Start()

	// 3. Change feed and cross-process invalidation
	hub := websocket.NewHub(logger)
	go hub.Run()
	a.Engine.AddNotifier(hub)

	if a.Invalidator != nil {
		go func() {
			if err := a.Invalidator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("⚠️  Cache invalidation listener stopped", zap.Error(err))
			}
		}()
	}

	// 4. Set up HTTP router
	router := handlers.NewRouter(a.Engine, hub, a.Sink, cfg.JWTSecret, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		logger.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.Bool("remote", a.Engine.HasRemote()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	logger.Info("⚠️  Shutting down gracefully...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	cancel()
	hub.Stop()

	// Closes the remote too, which stops embedded PostgreSQL
	if err := a.Close(); err != nil {
		logger.Warn("Close error", zap.Error(err))
	}

	logger.Info("✅ Shutdown complete")
}
