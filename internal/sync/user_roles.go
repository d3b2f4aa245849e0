package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var userRoleDesc = newEntityDesc(EntityTypeUserRole, localstore.TableUserRoles,
	func(u *models.UserRoleProfile, id string) { u.ID = id },
	text("id"),
	text("email"),
	text("displayName"),
	text("role"),
	text("department"),
)

// GetUserRoles returns every user role profile
func (e *SyncEngine) GetUserRoles(ctx context.Context) ([]models.UserRoleProfile, error) {
	return readEntities(ctx, e, userRoleDesc, nil)
}

// GetUserRoleByEmail returns the profile for an email address
func (e *SyncEngine) GetUserRoleByEmail(ctx context.Context, email string) (models.UserRoleProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	items, err := readEntities(ctx, e, userRoleDesc, where("email", email))
	if err != nil {
		return models.UserRoleProfile{}, err
	}
	if len(items) == 0 {
		return models.UserRoleProfile{}, fmt.Errorf("user role %s: %w", email, ErrNotFound)
	}
	return items[0], nil
}

// SaveUserRole upserts a profile, assigning an id when it has none. Emails
// are stored lower-cased.
func (e *SyncEngine) SaveUserRole(ctx context.Context, u *models.UserRoleProfile) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleViewer
	}
	return saveEntity(ctx, e, userRoleDesc, u)
}

// DeleteUserRole removes a profile
func (e *SyncEngine) DeleteUserRole(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, userRoleDesc, id)
}
