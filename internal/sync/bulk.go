package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/models"
)

// Accessors for the fields each bulk rename may rewrite

var jobFields = map[string]func(*models.Job) *string{
	"department":  func(j *models.Job) *string { return &j.Department },
	"jobType":     func(j *models.Job) *string { return &j.JobType },
	"repairGroup": func(j *models.Job) *string { return &j.RepairGroup },
	"status":      func(j *models.Job) *string { return (*string)(&j.Status) },
	"requester":   func(j *models.Job) *string { return &j.Requester },
}

var technicianFields = map[string]func(*models.Technician) *string{
	"category": func(t *models.Technician) *string { return &t.Category },
	"position": func(t *models.Technician) *string { return &t.Position },
}

var costFields = map[string]func(*models.Cost) *string{
	"category": func(c *models.Cost) *string { return &c.Category },
	"company":  func(c *models.Cost) *string { return &c.Company },
}

var pmPlanFields = map[string]func(*models.PMPlan) *string{
	"department": func(p *models.PMPlan) *string { return &p.Department },
	"category":   func(p *models.PMPlan) *string { return &p.Category },
	"machine":    func(p *models.PMPlan) *string { return &p.Machine },
}

// keepLocal swallows remote write failures of bulk rewrites after logging
// them; anything else aborts the rewrite
func (e *SyncEngine) keepLocal(err error, entity EntityType, id string) error {
	if err == nil {
		return nil
	}
	if IsRemoteWriteError(err) {
		e.log.Warn("⚠️  Bulk rename: remote write failed, kept locally",
			zap.String("entity", string(entity)), zap.String("id", id), zap.Error(err))
		return nil
	}
	return err
}

// BulkUpdateJobField rewrites field from oldValue to newValue on every job
// holding oldValue and returns the number of jobs changed
func (e *SyncEngine) BulkUpdateJobField(ctx context.Context, field, oldValue, newValue string) (int, error) {
	get, ok := jobFields[field]
	if !ok {
		return 0, fmt.Errorf("job field %q: %w", field, ErrUnknownField)
	}

	jobs, err := e.GetJobs(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range jobs {
		p := get(&jobs[i])
		if *p != oldValue {
			continue
		}
		*p = newValue
		if err := e.keepLocal(e.SaveJob(ctx, &jobs[i]), EntityTypeJob, jobs[i].ID); err != nil {
			return count, err
		}
		count++
	}

	e.log.Info("✏️  Bulk renamed job field", zap.String("field", field), zap.Int("count", count))
	return count, nil
}

// BulkUpdateTechnicianField rewrites field on every technician holding
// oldValue and returns the number changed
func (e *SyncEngine) BulkUpdateTechnicianField(ctx context.Context, field, oldValue, newValue string) (int, error) {
	get, ok := technicianFields[field]
	if !ok {
		return 0, fmt.Errorf("technician field %q: %w", field, ErrUnknownField)
	}

	techs, err := e.GetTechnicians(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range techs {
		p := get(&techs[i])
		if *p != oldValue {
			continue
		}
		*p = newValue
		if err := e.keepLocal(e.SaveTechnician(ctx, &techs[i]), EntityTypeTechnician, techs[i].ID); err != nil {
			return count, err
		}
		count++
	}

	e.log.Info("✏️  Bulk renamed technician field", zap.String("field", field), zap.Int("count", count))
	return count, nil
}

// BulkUpdateCostField rewrites field on every cost line embedded in any job.
// Returns the number of cost lines changed; each affected job is saved once.
func (e *SyncEngine) BulkUpdateCostField(ctx context.Context, field, oldValue, newValue string) (int, error) {
	get, ok := costFields[field]
	if !ok {
		return 0, fmt.Errorf("cost field %q: %w", field, ErrUnknownField)
	}

	jobs, err := e.GetJobs(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range jobs {
		changed := 0
		for c := range jobs[i].Costs {
			p := get(&jobs[i].Costs[c])
			if *p == oldValue {
				*p = newValue
				changed++
			}
		}
		if changed == 0 {
			continue
		}
		if err := e.keepLocal(e.SaveJob(ctx, &jobs[i]), EntityTypeJob, jobs[i].ID); err != nil {
			return count, err
		}
		count += changed
	}

	e.log.Info("✏️  Bulk renamed cost field", zap.String("field", field), zap.Int("count", count))
	return count, nil
}

// BulkUpdatePMPlanField rewrites field on every PM plan holding oldValue and
// returns the number changed
func (e *SyncEngine) BulkUpdatePMPlanField(ctx context.Context, field, oldValue, newValue string) (int, error) {
	get, ok := pmPlanFields[field]
	if !ok {
		return 0, fmt.Errorf("pm plan field %q: %w", field, ErrUnknownField)
	}

	plans, err := e.GetPMPlans(ctx, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range plans {
		p := get(&plans[i])
		if *p != oldValue {
			continue
		}
		*p = newValue
		if err := e.keepLocal(e.SavePMPlan(ctx, &plans[i]), EntityTypePMPlan, plans[i].ID); err != nil {
			return count, err
		}
		count++
	}

	e.log.Info("✏️  Bulk renamed PM plan field", zap.String("field", field), zap.Int("count", count))
	return count, nil
}

// CategoryRename reports what RenameTechnicianCategory touched
type CategoryRename struct {
	Technicians int `json:"technicians"`
	Jobs        int `json:"jobs"`
	CostLines   int `json:"costLines"`
}

// RenameTechnicianCategory renames a trade everywhere it is referenced:
// technician category, job type and cost line category
func (e *SyncEngine) RenameTechnicianCategory(ctx context.Context, oldValue, newValue string) (CategoryRename, error) {
	var result CategoryRename
	var err error

	if result.Technicians, err = e.BulkUpdateTechnicianField(ctx, "category", oldValue, newValue); err != nil {
		return result, err
	}
	if result.Jobs, err = e.BulkUpdateJobField(ctx, "jobType", oldValue, newValue); err != nil {
		return result, err
	}
	if result.CostLines, err = e.BulkUpdateCostField(ctx, "category", oldValue, newValue); err != nil {
		return result, err
	}
	return result, nil
}
