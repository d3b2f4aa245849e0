package models

import "gorm.io/datatypes"

// Technician is a maintenance staff record
type Technician struct {
	ID       string            `gorm:"primaryKey;type:text" json:"id"`
	Name     string            `json:"name"`
	Nickname string            `json:"nickname"`
	Position string            `json:"position"`
	Category string            `gorm:"index" json:"category"` // trade
	Phone    string            `json:"phone"`
	Active   bool              `json:"active"`
	Schedule datatypes.JSONMap `gorm:"type:jsonb" json:"schedule"`
}

func (Technician) TableName() string { return "technicians" }

// GetEntityID implements SyncableEntity interface
func (t Technician) GetEntityID() string { return t.ID }

// GetEntityType implements SyncableEntity interface
func (t Technician) GetEntityType() string { return "technicians" }
