package sync

import (
	"context"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
	"github.com/xelth-com/maintdesk/internal/utils"
)

var pmPlanDesc = newEntityDesc(EntityTypePMPlan, localstore.TablePMPlans,
	func(p *models.PMPlan, id string) { p.ID = id },
	text("id"),
	integer("year"),
	text("machine"),
	text("department"),
	text("category"),
	text("frequency"),
	jsonField("months"),
	text("technicianId"),
	text("note"),
)

var holidayDesc = newEntityDesc(EntityTypeHoliday, localstore.TableFactoryHolidays,
	func(h *models.FactoryHoliday, id string) { h.ID = id },
	text("id"),
	text("date"),
	integer("year"),
	text("name"),
)

// GetPMPlans returns the preventive-maintenance plans of a year, or all
// plans when year is 0
func (e *SyncEngine) GetPMPlans(ctx context.Context, year int) ([]models.PMPlan, error) {
	if year == 0 {
		return readEntities(ctx, e, pmPlanDesc, nil)
	}
	return readEntities(ctx, e, pmPlanDesc, where("year", year))
}

// SavePMPlan upserts a plan, assigning an id when it has none
func (e *SyncEngine) SavePMPlan(ctx context.Context, p *models.PMPlan) error {
	return saveEntity(ctx, e, pmPlanDesc, p)
}

// DeletePMPlan removes a plan
func (e *SyncEngine) DeletePMPlan(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, pmPlanDesc, id)
}

// GetHolidays returns the factory holidays of a year, or all when year is 0
func (e *SyncEngine) GetHolidays(ctx context.Context, year int) ([]models.FactoryHoliday, error) {
	if year == 0 {
		return readEntities(ctx, e, holidayDesc, nil)
	}
	return readEntities(ctx, e, holidayDesc, where("year", year))
}

// SaveHoliday upserts a holiday, assigning an id when it has none
func (e *SyncEngine) SaveHoliday(ctx context.Context, h *models.FactoryHoliday) error {
	if h.Year == 0 {
		h.Year = utils.YearOf(h.Date)
	}
	return saveEntity(ctx, e, holidayDesc, h)
}

// DeleteHoliday removes a holiday
func (e *SyncEngine) DeleteHoliday(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, holidayDesc, id)
}
