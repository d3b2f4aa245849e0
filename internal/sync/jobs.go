package sync

import (
	"context"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var jobDesc = newEntityDesc(EntityTypeJob, localstore.TableJobs,
	func(j *models.Job, id string) { j.ID = id },
	text("id"),
	text("jobNumber"),
	text("department"),
	text("jobType"),
	text("repairGroup"),
	text("status"),
	text("dateReceived"),
	text("dueDate"),
	text("dateFinished"),
	jsonField("costs"),
	jsonField("attachments"),
	jsonField("technicianIds"),
	text("requester"),
	text("description"),
	text("cause"),
	text("solution"),
	text("note"),
	number("evaluationScore"),
)

// GetJobs returns every job
func (e *SyncEngine) GetJobs(ctx context.Context) ([]models.Job, error) {
	return readEntities(ctx, e, jobDesc, nil)
}

// GetJobsByStatus returns the jobs in one lifecycle state
func (e *SyncEngine) GetJobsByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	return readEntities(ctx, e, jobDesc, where("status", string(status)))
}

// GetJob returns one job by id
func (e *SyncEngine) GetJob(ctx context.Context, id string) (models.Job, error) {
	return getEntity(ctx, e, jobDesc, id)
}

// GetJobsForYear returns the jobs received in the given Gregorian year
func (e *SyncEngine) GetJobsForYear(ctx context.Context, year int) ([]models.Job, error) {
	jobs, err := e.GetJobs(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.ReceivedYear() == year {
			result = append(result, j)
		}
	}
	return result, nil
}

// SaveJob upserts a job, assigning an id when it has none
func (e *SyncEngine) SaveJob(ctx context.Context, job *models.Job) error {
	return saveEntity(ctx, e, jobDesc, job)
}

// DeleteJob removes a job
func (e *SyncEngine) DeleteJob(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, jobDesc, id)
}
