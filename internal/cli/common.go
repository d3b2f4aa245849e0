// Package cli holds the maintctl commands. Every command opens the same
// data layer as the API server and runs one operation against it.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/logging"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// withApp loads configuration, opens the data layer, runs fn and closes it
// again. Logging stays at warn unless LOG_LEVEL is set or --verbose is given.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	if f := cmd.Flag("verbose"); f != nil && f.Value.String() == "true" {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, config.LoadSyncConfig(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// parseYear parses a positional year argument
func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}
