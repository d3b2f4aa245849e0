package models

import "github.com/xelth-com/maintdesk/internal/utils"

// JobStatus is the lifecycle state of a repair job
type JobStatus string

const (
	JobStatusInProgress        JobStatus = "in_progress"
	JobStatusWaitingInspection JobStatus = "waiting_inspection"
	JobStatusFinished          JobStatus = "finished"
	JobStatusCancelled         JobStatus = "cancelled"
	JobStatusUnrepairable      JobStatus = "unrepairable"
)

// Valid reports whether s is one of the known job states
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusInProgress, JobStatusWaitingInspection, JobStatusFinished,
		JobStatusCancelled, JobStatusUnrepairable:
		return true
	}
	return false
}

// Job is a repair ticket
type Job struct {
	ID              string       `gorm:"primaryKey;type:text" json:"id"`
	JobNumber       string       `gorm:"index" json:"jobNumber"` // MTN03001/69
	Department      string       `gorm:"index" json:"department"`
	JobType         string       `json:"jobType"`
	RepairGroup     string       `json:"repairGroup"`
	Status          JobStatus    `gorm:"index" json:"status"`
	DateReceived    string       `gorm:"index" json:"dateReceived"` // YYYY-MM-DD
	DueDate         string       `json:"dueDate"`
	DateFinished    string       `json:"dateFinished"`
	Costs           []Cost       `gorm:"type:jsonb;serializer:json" json:"costs"`
	Attachments     []Attachment `gorm:"type:jsonb;serializer:json" json:"attachments"`
	TechnicianIDs   []string     `gorm:"type:jsonb;serializer:json" json:"technicianIds"`
	Requester       string       `json:"requester"`
	Description     string       `json:"description"`
	Cause           string       `json:"cause"`
	Solution        string       `json:"solution"`
	Note            string       `json:"note"`
	EvaluationScore float64      `json:"evaluationScore"`
}

// Cost is a cost line embedded in a job
type Cost struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Company     string  `json:"company"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	Date        string  `json:"date"`
}

// Attachment references a file stored outside the data layer
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

func (Job) TableName() string { return "jobs" }

// GetEntityID implements SyncableEntity interface
func (j Job) GetEntityID() string { return j.ID }

// GetEntityType implements SyncableEntity interface
func (j Job) GetEntityType() string { return "jobs" }

// ReceivedYear returns the Gregorian year of DateReceived, or 0 if unparseable
func (j Job) ReceivedYear() int {
	return utils.YearOf(j.DateReceived)
}
