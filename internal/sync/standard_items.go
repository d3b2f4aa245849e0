package sync

import (
	"context"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var standardItemDesc = newEntityDesc(EntityTypeStandardItem, localstore.TableStandardItems,
	func(s *models.StandardItem, id string) { s.ID = id },
	text("id"),
	text("code"),
	text("name"),
	text("unit"),
	number("defaultPrice"),
	text("budgetId"),
	text("budgetCode"),
	text("category"),
	boolean("active"),
)

// GetStandardItems returns the whole standard item catalog
func (e *SyncEngine) GetStandardItems(ctx context.Context) ([]models.StandardItem, error) {
	return readEntities(ctx, e, standardItemDesc, nil)
}

// GetStandardItemsForBudget returns the catalog rows linked to one budget item
func (e *SyncEngine) GetStandardItemsForBudget(ctx context.Context, budgetID string) ([]models.StandardItem, error) {
	return readEntities(ctx, e, standardItemDesc, where("budget_id", budgetID))
}

// SaveStandardItem upserts a catalog row, assigning an id when it has none
func (e *SyncEngine) SaveStandardItem(ctx context.Context, s *models.StandardItem) error {
	return saveEntity(ctx, e, standardItemDesc, s)
}

// DeleteStandardItem removes a catalog row
func (e *SyncEngine) DeleteStandardItem(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, standardItemDesc, id)
}
