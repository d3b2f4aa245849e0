package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xelth-com/maintdesk/internal/app"
	"github.com/xelth-com/maintdesk/internal/storage"
)

// BackupCmd returns the backup command
func BackupCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup of jobs, technicians, settings, PM plans and budgets",
		Long: `Write a full backup through the regular read path (remote when reachable,
local mirror otherwise).

Without --out the backup is stored in the backup sink (MinIO when configured,
the local backups directory otherwise). Use --out - to write to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var buf bytes.Buffer
				backup, err := a.Engine.WriteBackup(ctx, &buf)
				if err != nil {
					return fmt.Errorf("backup failed: %w", err)
				}

				switch out {
				case "":
					name := storage.BackupName(backup.Timestamp)
					if err := a.Sink.Put(ctx, name, buf.Bytes()); err != nil {
						return fmt.Errorf("failed to store backup: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s Backup stored at %s\n", okMark, a.Sink.Location(name))
				case "-":
					_, err := io.Copy(cmd.OutOrStdout(), &buf)
					return err
				default:
					if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", out, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s Backup written to %s\n", okMark, out)
				}

				d := backup.Data
				fmt.Fprintf(cmd.OutOrStdout(), "  jobs: %d  technicians: %d  pm plans: %d  budgets: %d  (%s)\n",
					len(d.Jobs), len(d.Technicians), len(d.PMPlans), len(d.Budgets), backup.Timestamp.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of the backup sink (- for stdout)")
	return cmd
}

// RestoreCmd returns the restore command
func RestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a backup file",
		Long: `Restore every entity set in a backup file. Each row is written to the
local mirror first; rows the remote rejects are counted, not fatal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer f.Close()

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Engine.RestoreBackup(ctx, f)
				if err != nil {
					return fmt.Errorf("restore failed: %w", err)
				}

				mark := okMark
				if res.RemoteFailures > 0 {
					mark = warnMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Restored jobs: %d  technicians: %d  pm plans: %d  budgets: %d\n",
					mark, res.Jobs, res.Technicians, res.PMPlans, res.Budgets)
				if res.RemoteFailures > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d rows were not written to the remote\n", res.RemoteFailures)
				}
				return nil
			})
		},
	}
	return cmd
}

// ArchiveCmd returns the archive command
func ArchiveCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "archive <year>",
		Short: "Archive and delete all jobs received in a Gregorian year",
		Long: `Export every job received in the given Gregorian year, then delete those
jobs. Nothing is deleted unless the export was written.

Without --out the export goes to the backup sink as archives/jobs-<year>.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					w        io.Writer
					location string
				)
				if out == "" {
					name := storage.ArchiveName(year)
					w = storage.NewObjectWriter(ctx, a.Sink, name)
					location = a.Sink.Location(name)
				} else {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", out, err)
					}
					defer f.Close()
					w = f
					location = out
				}

				n, err := a.Engine.ArchiveYear(ctx, year, w)
				if err != nil && n == 0 {
					return fmt.Errorf("archive failed: %w", err)
				}
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s Archived %d jobs from %d to %s: %v\n", warnMark, n, year, location, err)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Archived %d jobs from %d to %s\n", okMark, n, year, location)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the archive to this file instead of the backup sink")
	return cmd
}
