package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/models"
)

// Backup is the full-system backup document
type Backup struct {
	Version   string     `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      BackupData `json:"data"`
}

// BackupData holds the entity sets included in a backup
type BackupData struct {
	Jobs        []models.Job        `json:"jobs"`
	Technicians []models.Technician `json:"technicians"`
	Settings    models.AppSettings  `json:"settings"`
	PMPlans     []models.PMPlan     `json:"pmPlans"`
	Budgets     []models.BudgetItem `json:"budgets"`
}

// RestoreResult counts what RestoreBackup wrote
type RestoreResult struct {
	Jobs           int `json:"jobs"`
	Technicians    int `json:"technicians"`
	PMPlans        int `json:"pmPlans"`
	Budgets        int `json:"budgets"`
	RemoteFailures int `json:"remoteFailures"`
}

// CreateBackup collects a backup through the regular getters
func (e *SyncEngine) CreateBackup(ctx context.Context) (*Backup, error) {
	jobs, err := e.GetJobs(ctx)
	if err != nil {
		return nil, err
	}
	techs, err := e.GetTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := e.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := e.GetPMPlans(ctx, 0)
	if err != nil {
		return nil, err
	}
	budgets, err := e.GetBudgets(ctx, 0)
	if err != nil {
		return nil, err
	}

	return &Backup{
		Version:   e.config.BackupVersion,
		Timestamp: time.Now().UTC(),
		Data: BackupData{
			Jobs:        jobs,
			Technicians: techs,
			Settings:    settings,
			PMPlans:     plans,
			Budgets:     budgets,
		},
	}, nil
}

// WriteBackup creates a backup and writes it to w as indented JSON
func (e *SyncEngine) WriteBackup(ctx context.Context, w io.Writer) (*Backup, error) {
	backup, err := e.CreateBackup(ctx)
	if err != nil {
		return nil, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	e.log.Info("💾 Backup written",
		zap.Int("jobs", len(backup.Data.Jobs)),
		zap.Int("technicians", len(backup.Data.Technicians)),
		zap.Int("pm_plans", len(backup.Data.PMPlans)),
		zap.Int("budgets", len(backup.Data.Budgets)))
	return backup, nil
}

// RestoreBackup replays a backup document through the regular save path.
// Entities are upserted by id; nothing absent from the backup is deleted.
// Remote failures are counted, not returned.
func (e *SyncEngine) RestoreBackup(ctx context.Context, r io.Reader) (RestoreResult, error) {
	var result RestoreResult

	var backup Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return result, fmt.Errorf("failed to read backup: %w", err)
	}

	track := func(err error) error {
		if err == nil {
			return nil
		}
		if IsRemoteWriteError(err) {
			result.RemoteFailures++
			return nil
		}
		return err
	}

	settings := backup.Data.Settings
	if err := track(e.SaveSettings(ctx, &settings)); err != nil {
		return result, err
	}
	for i := range backup.Data.Technicians {
		if err := track(e.SaveTechnician(ctx, &backup.Data.Technicians[i])); err != nil {
			return result, err
		}
		result.Technicians++
	}
	for i := range backup.Data.Jobs {
		if err := track(e.SaveJob(ctx, &backup.Data.Jobs[i])); err != nil {
			return result, err
		}
		result.Jobs++
	}
	for i := range backup.Data.PMPlans {
		if err := track(e.SavePMPlan(ctx, &backup.Data.PMPlans[i])); err != nil {
			return result, err
		}
		result.PMPlans++
	}
	for i := range backup.Data.Budgets {
		if err := track(e.SaveBudget(ctx, &backup.Data.Budgets[i])); err != nil {
			return result, err
		}
		result.Budgets++
	}

	e.log.Info("♻️  Backup restored",
		zap.String("version", backup.Version),
		zap.Int("jobs", result.Jobs),
		zap.Int("remote_failures", result.RemoteFailures))
	return result, nil
}

// ExportYearArchive returns the jobs received in a Gregorian year, the
// content of a yearly archive file
func (e *SyncEngine) ExportYearArchive(ctx context.Context, year int) ([]models.Job, error) {
	return e.GetJobsForYear(ctx, year)
}

// ArchiveYear writes the year's jobs to w as a JSON array and then deletes
// them from both stores. Nothing is deleted if writing fails. Returns the
// number of jobs archived.
func (e *SyncEngine) ArchiveYear(ctx context.Context, year int, w io.Writer) (int, error) {
	jobs, err := e.ExportYearArchive(ctx, year)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return 0, fmt.Errorf("failed to write archive: %w", err)
	}

	var remoteErr error
	for i, j := range jobs {
		if err := e.DeleteJob(ctx, j.ID); err != nil {
			if !IsRemoteWriteError(err) {
				return i, err
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}
	}

	e.log.Info("📦 Archived year", zap.Int("year", year), zap.Int("jobs", len(jobs)))
	return len(jobs), remoteErr
}
