package sync

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EntityType names an entity kind; it prefixes every cache key of that kind
type EntityType string

const (
	EntityTypeJob          EntityType = "jobs"
	EntityTypeTechnician   EntityType = "technicians"
	EntityTypeSettings     EntityType = "settings"
	EntityTypePMPlan       EntityType = "pm_plans"
	EntityTypeHoliday      EntityType = "factory_holidays"
	EntityTypeUserRole     EntityType = "user_roles"
	EntityTypeBudget       EntityType = "budgets"
	EntityTypeDailyExpense EntityType = "daily_expenses"
	EntityTypeStandardItem EntityType = "standard_items"
)

var (
	// ErrNotFound is returned when a single entity lookup has no match
	ErrNotFound = errors.New("entity not found")

	// ErrUnknownField is returned by bulk rename for a field it cannot rewrite
	ErrUnknownField = errors.New("unknown field")
)

// RemoteWriteError reports that a write reached the local mirror but the
// remote upsert or delete failed. The local copy is kept.
type RemoteWriteError struct {
	Entity EntityType
	ID     string
	Op     Operation
	Err    error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s of %s %s failed (kept locally): %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// IsRemoteWriteError reports whether err carries a RemoteWriteError
func IsRemoteWriteError(err error) bool {
	var rwe *RemoteWriteError
	return errors.As(err, &rwe)
}

// Operation is the kind of change applied to an entity
type Operation string

const (
	OpSave   Operation = "save"
	OpDelete Operation = "delete"
)

// ChangeEvent describes one successful local write
type ChangeEvent struct {
	Entity EntityType `json:"entity"`
	ID     string     `json:"id"`
	Op     Operation  `json:"op"`
	At     time.Time  `json:"at"`
	Origin string     `json:"origin"`
}

// Notifier receives change events after local writes. Implementations must
// not block; delivery is advisory.
type Notifier interface {
	Notify(ev ChangeEvent)
}

// Remote is the Remote System of Record as seen by the engine: row maps keyed
// by column name, filtered by column equality.
type Remote interface {
	Select(ctx context.Context, table string, where map[string]interface{}) ([]map[string]interface{}, error)
	Upsert(ctx context.Context, table string, row map[string]interface{}) error
	Delete(ctx context.Context, table, id string) error
	Ping(ctx context.Context) error
}
