package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
)

// RetryCmd returns the retry command
func RetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Push local writes the remote rejected earlier",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if !a.Engine.HasRemote() {
					fmt.Fprintf(out, "%s Remote not configured, nothing to push\n", warnMark)
					return nil
				}

				res, err := a.Engine.RetryPending(ctx)
				if err != nil {
					return err
				}
				mark := okMark
				if res.Remaining > 0 {
					mark = warnMark
				}
				fmt.Fprintf(out, "%s Pushed %d, failed %d, still pending %d\n", mark, res.Pushed, res.Failed, res.Remaining)
				return nil
			})
		},
	}
}
