package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
	"github.com/xelth-com/maintdesk/internal/utils"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local mirror and remote health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if a.Engine.HasRemote() {
					_ = a.Engine.CheckRemote(ctx)
				}
				report := a.Engine.Status(ctx)

				fmt.Fprintf(out, "Local mirror: %s (schema v%d)\n", a.Local.Path(), report.LocalSchemaVersion)
				switch {
				case !report.RemoteConfigured:
					fmt.Fprintf(out, "Remote:       %s not configured, serving from the local mirror\n", warnMark)
				case report.Remote.Available:
					fmt.Fprintf(out, "Remote:       %s online (%s)\n", okMark, report.Remote.AvgLatency.Round(time.Millisecond))
				default:
					fmt.Fprintf(out, "Remote:       %s offline: %s\n", failMark, report.Remote.LastError)
				}
				if report.PendingWrites > 0 {
					fmt.Fprintf(out, "Pending:      %s %d local writes not yet on the remote\n", warnMark, report.PendingWrites)
				}
				fmt.Fprintf(out, "Backups:      %s\n", a.Sink.Location(""))
				fmt.Fprintf(out, "Origin:       %s\n", report.Origin)
				fmt.Fprintf(out, "Year (BE):    %d\n", utils.ToBuddhistYear(time.Now().Year()))
				return nil
			})
		},
	}
}
