package models

// PMPlan is a preventive-maintenance plan line for one machine
type PMPlan struct {
	ID           string   `gorm:"primaryKey;type:text" json:"id"`
	Year         int      `gorm:"index" json:"year"`
	Machine      string   `json:"machine"`
	Department   string   `gorm:"index" json:"department"`
	Category     string   `json:"category"`
	Frequency    string   `json:"frequency"`
	Months       [12]bool `gorm:"type:jsonb;serializer:json" json:"months"`
	TechnicianID string   `json:"technicianId"`
	Note         string   `json:"note"`
}

func (PMPlan) TableName() string { return "pm_plans" }

// GetEntityID implements SyncableEntity interface
func (p PMPlan) GetEntityID() string { return p.ID }

// GetEntityType implements SyncableEntity interface
func (p PMPlan) GetEntityType() string { return "pm_plans" }

// FactoryHoliday is a non-working day
type FactoryHoliday struct {
	ID   string `gorm:"primaryKey;type:text" json:"id"`
	Date string `gorm:"index" json:"date"` // YYYY-MM-DD
	Year int    `gorm:"index" json:"year"`
	Name string `json:"name"`
}

func (FactoryHoliday) TableName() string { return "factory_holidays" }

// GetEntityID implements SyncableEntity interface
func (h FactoryHoliday) GetEntityID() string { return h.ID }

// GetEntityType implements SyncableEntity interface
func (h FactoryHoliday) GetEntityType() string { return "factory_holidays" }
