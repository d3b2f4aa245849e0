package sync

import (
	"context"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var settingsDesc = newEntityDesc(EntityTypeSettings, localstore.TableSettings,
	func(s *models.AppSettings, id string) { s.ID = id },
	text("id"),
	jsonField("departments"),
	jsonField("categories"),
	jsonField("companies"),
	jsonField("budgetCategories"),
	jsonField("repairGroups"),
	jsonField("divisions"),
	jsonField("divisionMappings"),
	jsonField("factoryGroups"),
	jsonField("jobTypePrefixes"),
	text("theme"),
)

// GetSettings returns the settings singleton, or defaults when none was saved
func (e *SyncEngine) GetSettings(ctx context.Context) (models.AppSettings, error) {
	items, err := readEntities(ctx, e, settingsDesc, where("id", models.SettingsID))
	if err != nil {
		return models.AppSettings{}, err
	}
	if len(items) == 0 {
		return models.DefaultSettings(), nil
	}
	return fillSettingsDefaults(items[0]), nil
}

// SaveSettings replaces the settings singleton. The id is always forced to
// the singleton id.
func (e *SyncEngine) SaveSettings(ctx context.Context, s *models.AppSettings) error {
	s.ID = models.SettingsID
	return saveEntity(ctx, e, settingsDesc, s)
}

// fillSettingsDefaults replaces nil taxonomies so callers can range and
// index without checks
func fillSettingsDefaults(s models.AppSettings) models.AppSettings {
	d := models.DefaultSettings()
	if s.Departments == nil {
		s.Departments = d.Departments
	}
	if s.Categories == nil {
		s.Categories = d.Categories
	}
	if s.Companies == nil {
		s.Companies = d.Companies
	}
	if s.BudgetCategories == nil {
		s.BudgetCategories = d.BudgetCategories
	}
	if s.RepairGroups == nil {
		s.RepairGroups = d.RepairGroups
	}
	if s.Divisions == nil {
		s.Divisions = d.Divisions
	}
	if s.DivisionMappings == nil {
		s.DivisionMappings = d.DivisionMappings
	}
	if s.FactoryGroups == nil {
		s.FactoryGroups = d.FactoryGroups
	}
	if s.JobTypePrefixes == nil {
		s.JobTypePrefixes = d.JobTypePrefixes
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	return s
}
