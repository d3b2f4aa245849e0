package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
)

// NextJobIDCmd returns the next-job-id command
func NextJobIDCmd() *cobra.Command {
	var (
		jobType string
		date    string
	)

	cmd := &cobra.Command{
		Use:   "next-job-id",
		Short: "Print the next job number for a job type and received date",
		Long: `Print the next job number, e.g. MTN03002/69 for the second maintenance
job received in March 2569. The number is not reserved; two callers racing
can get the same one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Engine.GenerateNextJobID(ctx, jobType, date)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&jobType, "type", "t", "", "Job type (matched against the configured job types)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date received, YYYY-MM-DD (default today)")
	return cmd
}

// BulkCmd returns the bulk command
func BulkCmd() *cobra.Command {
	var field, oldValue, newValue string

	cmd := &cobra.Command{
		Use:   "bulk <jobs|technicians|costs|pm-plans|technician-category>",
		Short: "Rename a value across every row that has it",
		Long: `Set --field to --new on every row where it equals --old.

  jobs, technicians, pm-plans   plain field rename
  costs                         rename a field inside job cost lines
  technician-category           rename a trade on technicians, jobs and cost lines (--field is ignored)`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"jobs", "technicians", "costs", "pm-plans", "technician-category"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldValue == "" {
				return fmt.Errorf("--old is required")
			}
			target := args[0]
			if target != "technician-category" && field == "" {
				return fmt.Errorf("--field is required")
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				e := a.Engine
				var (
					n   int
					err error
				)
				switch target {
				case "jobs":
					n, err = e.BulkUpdateJobField(ctx, field, oldValue, newValue)
				case "technicians":
					n, err = e.BulkUpdateTechnicianField(ctx, field, oldValue, newValue)
				case "costs":
					n, err = e.BulkUpdateCostField(ctx, field, oldValue, newValue)
				case "pm-plans":
					n, err = e.BulkUpdatePMPlanField(ctx, field, oldValue, newValue)
				case "technician-category":
					res, err := e.RenameTechnicianCategory(ctx, oldValue, newValue)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s Renamed %q to %q: technicians %d, jobs %d, cost lines %d\n",
						okMark, oldValue, newValue, res.Technicians, res.Jobs, res.CostLines)
					return nil
				default:
					return fmt.Errorf("unknown bulk target %q", target)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %d %s\n", okMark, n, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Field to rename")
	cmd.Flags().StringVar(&oldValue, "old", "", "Current value")
	cmd.Flags().StringVar(&newValue, "new", "", "Replacement value")
	return cmd
}
