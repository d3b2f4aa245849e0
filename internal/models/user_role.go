package models

// UserRole is an authorization level
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleViewer     UserRole = "viewer"
)

// UserRoleProfile maps an authenticated user to a role
type UserRoleProfile struct {
	ID          string   `gorm:"primaryKey;type:text" json:"id"`
	Email       string   `gorm:"uniqueIndex" json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
	Department  string   `json:"department"`
}

func (UserRoleProfile) TableName() string { return "user_roles" }

// GetEntityID implements SyncableEntity interface
func (u UserRoleProfile) GetEntityID() string { return u.ID }

// GetEntityType implements SyncableEntity interface
func (u UserRoleProfile) GetEntityType() string { return "user_roles" }
