package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/buildinfo"
	"github.com/xelth-com/maintdesk/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "maintctl",
		Short:   "maintctl - maintenance desk data tool",
		Version: buildinfo.String(),
		Long: `maintctl runs maintenance operations against the same local mirror and
remote the API server uses: backups, archives, budget seeding, bulk renames.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	// Data operations
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.RetryCmd())
	rootCmd.AddCommand(cli.BackupCmd())
	rootCmd.AddCommand(cli.RestoreCmd())
	rootCmd.AddCommand(cli.ArchiveCmd())
	rootCmd.AddCommand(cli.BudgetCmd())
	rootCmd.AddCommand(cli.ExpensesCmd())
	rootCmd.AddCommand(cli.BulkCmd())
	rootCmd.AddCommand(cli.NextJobIDCmd())

	// Access
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
