package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
)

// BudgetCmd returns the budget command
func BudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget maintenance",
	}
	cmd.AddCommand(budgetSeedCmd())
	cmd.AddCommand(budgetCleanupCmd())
	return cmd
}

func budgetSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <year>",
		Short: "Create budget items for a Buddhist-era year",
		Long: `Create the budget items for a year: a copy of the previous year's items
(planned amounts kept, actuals zeroed) or one item per configured budget
category. A year that already has items is left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Engine.SeedBudgets(ctx, year)
				if err != nil && n == 0 {
					return fmt.Errorf("seed failed: %w", err)
				}
				switch {
				case err != nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s Created %d budget items for %d, remote not updated: %v\n", warnMark, n, year, err)
				case n == 0:
					fmt.Fprintf(cmd.OutOrStdout(), "%s Year %d already has budget items\n", okMark, year)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s Created %d budget items for %d\n", okMark, n, year)
				}
				return nil
			})
		},
	}
}

func budgetCleanupCmd() *cobra.Command {
	var keepFrom int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete budget items older than --keep-from",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepFrom <= 0 {
				return fmt.Errorf("--keep-from is required")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Engine.CleanupOldBudgets(ctx, keepFrom)
				if err != nil && n == 0 {
					return fmt.Errorf("cleanup failed: %w", err)
				}
				mark := okMark
				if err != nil {
					mark = warnMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %d budget items before %d\n", mark, n, keepFrom)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keepFrom, "keep-from", 0, "First year to keep")
	return cmd
}

// ExpensesCmd returns the expenses command
func ExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Daily expense maintenance",
	}

	var before int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete daily expenses older than --before",
		Long: `Delete every daily expense row whose year is before --before. Budget
actuals are not recomputed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if before <= 0 {
				return fmt.Errorf("--before is required")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Engine.CleanupHistoricalExpenses(ctx, before)
				if err != nil && n == 0 {
					return fmt.Errorf("cleanup failed: %w", err)
				}
				mark := okMark
				if err != nil {
					mark = warnMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %d expense rows before %d\n", mark, n, before)
				return nil
			})
		},
	}
	cleanup.Flags().IntVar(&before, "before", 0, "Delete rows with a year before this one")

	cmd.AddCommand(cleanup)
	return cmd
}
