package sync

import (
	"context"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var technicianDesc = newEntityDesc(EntityTypeTechnician, localstore.TableTechnicians,
	func(t *models.Technician, id string) { t.ID = id },
	text("id"),
	text("name"),
	text("nickname"),
	text("position"),
	text("category"),
	text("phone"),
	boolean("active"),
	jsonField("schedule"),
)

// GetTechnicians returns every technician
func (e *SyncEngine) GetTechnicians(ctx context.Context) ([]models.Technician, error) {
	return readEntities(ctx, e, technicianDesc, nil)
}

// GetTechnician returns one technician by id
func (e *SyncEngine) GetTechnician(ctx context.Context, id string) (models.Technician, error) {
	return getEntity(ctx, e, technicianDesc, id)
}

// SaveTechnician upserts a technician, assigning an id when it has none
func (e *SyncEngine) SaveTechnician(ctx context.Context, t *models.Technician) error {
	return saveEntity(ctx, e, technicianDesc, t)
}

// DeleteTechnician removes a technician
func (e *SyncEngine) DeleteTechnician(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, technicianDesc, id)
}
