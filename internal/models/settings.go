package models

// SettingsID is the fixed id of the AppSettings singleton
const SettingsID = "1"

// AppSettings holds every configurable taxonomy. Exactly one row exists.
type AppSettings struct {
	ID               string            `gorm:"primaryKey;type:text" json:"id"`
	Departments      []string          `gorm:"type:jsonb;serializer:json" json:"departments"`
	Categories       []string          `gorm:"type:jsonb;serializer:json" json:"categories"`
	Companies        []string          `gorm:"type:jsonb;serializer:json" json:"companies"`
	BudgetCategories []string          `gorm:"type:jsonb;serializer:json" json:"budgetCategories"`
	RepairGroups     []string          `gorm:"type:jsonb;serializer:json" json:"repairGroups"`
	Divisions        []string          `gorm:"type:jsonb;serializer:json" json:"divisions"`
	DivisionMappings map[string]string `gorm:"type:jsonb;serializer:json" json:"divisionMappings"` // department -> division
	FactoryGroups    map[string]string `gorm:"type:jsonb;serializer:json" json:"factoryGroups"`    // department -> factory group
	JobTypePrefixes  map[string]string `gorm:"type:jsonb;serializer:json" json:"jobTypePrefixes"`  // job type -> job number prefix
	Theme            string            `json:"theme"`
}

func (AppSettings) TableName() string { return "app_settings" }

// GetEntityID implements SyncableEntity interface
func (s AppSettings) GetEntityID() string { return s.ID }

// GetEntityType implements SyncableEntity interface
func (s AppSettings) GetEntityType() string { return "settings" }

// DefaultSettings returns the settings used before any have been saved
func DefaultSettings() AppSettings {
	return AppSettings{
		ID:               SettingsID,
		Departments:      []string{},
		Categories:       []string{},
		Companies:        []string{},
		BudgetCategories: []string{},
		RepairGroups:     []string{},
		Divisions:        []string{},
		DivisionMappings: map[string]string{},
		FactoryGroups:    map[string]string{},
		JobTypePrefixes:  map[string]string{},
		Theme:            "light",
	}
}
