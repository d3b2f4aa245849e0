package sync

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var dailyExpenseDesc = newEntityDesc(EntityTypeDailyExpense, localstore.TableDailyExpenses,
	func(d *models.DailyExpense, id string) { d.ID = id },
	text("id"),
	text("budgetId"),
	text("standardItemId"),
	integer("year"),
	integer("month"),
	text("division"),
	jsonField("quantities"),
	number("unitPrice"),
	number("totalPrice"),
	text("note"),
)

// budgetTarget identifies the budget month a daily expense feeds
type budgetTarget struct {
	budgetID string
	year     int
	month    int
}

func targetOf(d models.DailyExpense) budgetTarget {
	return budgetTarget{budgetID: d.BudgetID, year: d.Year, month: d.Month}
}

// GetDailyExpenses returns the daily expense rows of a year and month.
// year 0 means every year; a negative month means every month of the year.
func (e *SyncEngine) GetDailyExpenses(ctx context.Context, year, month int) ([]models.DailyExpense, error) {
	switch {
	case year == 0:
		return readEntities(ctx, e, dailyExpenseDesc, nil)
	case month < 0:
		return readEntities(ctx, e, dailyExpenseDesc, where("year", year))
	default:
		return readEntities(ctx, e, dailyExpenseDesc, where("year", year, "month", month))
	}
}

// SaveDailyExpense upserts a row and recomputes the budget actual it feeds.
// When the row moved to another budget, year or month, the old target is
// recomputed too.
func (e *SyncEngine) SaveDailyExpense(ctx context.Context, d *models.DailyExpense) error {
	var previous *models.DailyExpense
	if d.ID != "" {
		if prev, err := e.localDailyExpense(ctx, d.ID); err == nil {
			previous = &prev
		}
	}

	saveErr := saveEntity(ctx, e, dailyExpenseDesc, d)
	if saveErr != nil && !IsRemoteWriteError(saveErr) {
		return saveErr
	}

	targets := []budgetTarget{targetOf(*d)}
	if previous != nil && targetOf(*previous) != targets[0] {
		targets = append(targets, targetOf(*previous))
	}

	return e.recomputeTargets(ctx, saveErr, targets...)
}

// DeleteDailyExpense removes a row and recomputes the budget actual it fed
func (e *SyncEngine) DeleteDailyExpense(ctx context.Context, id string) error {
	previous, lookupErr := e.localDailyExpense(ctx, id)

	deleteErr := deleteEntity(ctx, e, dailyExpenseDesc, id)
	if deleteErr != nil && !IsRemoteWriteError(deleteErr) {
		return deleteErr
	}

	if lookupErr != nil {
		e.log.Warn("⚠️  Deleted expense was not mirrored locally, budget actual not recomputed",
			zap.String("id", id), zap.Error(lookupErr))
		return deleteErr
	}
	return e.recomputeTargets(ctx, deleteErr, targetOf(previous))
}

// CleanupHistoricalExpenses deletes every daily expense row with a year
// before beforeYear. Budget actuals are left as they are.
func (e *SyncEngine) CleanupHistoricalExpenses(ctx context.Context, beforeYear int) (int, error) {
	rows, err := e.GetDailyExpenses(ctx, 0, -1)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var remoteErr error
	for _, d := range rows {
		if d.Year >= beforeYear {
			continue
		}
		if err := deleteEntity(ctx, e, dailyExpenseDesc, d.ID); err != nil {
			if !IsRemoteWriteError(err) {
				return deleted, err
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}
		deleted++
	}

	e.log.Info("🧹 Cleaned up historical expenses", zap.Int("before_year", beforeYear), zap.Int("deleted", deleted))
	return deleted, remoteErr
}

// recomputeTargets runs SyncBudgetActual for each target. writeErr is the
// outcome of the triggering write and takes precedence in the result.
func (e *SyncEngine) recomputeTargets(ctx context.Context, writeErr error, targets ...budgetTarget) error {
	var errs []error
	if writeErr != nil {
		errs = append(errs, writeErr)
	}
	for _, t := range targets {
		if err := e.SyncBudgetActual(ctx, t.budgetID, t.year, t.month); err != nil {
			e.log.Warn("⚠️  Budget actual recompute failed",
				zap.String("budget_id", t.budgetID), zap.Int("year", t.year), zap.Int("month", t.month), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

func (e *SyncEngine) localDailyExpense(ctx context.Context, id string) (models.DailyExpense, error) {
	doc, err := e.local.Get(ctx, localstore.TableDailyExpenses, id)
	if err != nil {
		return models.DailyExpense{}, err
	}
	return dailyExpenseDesc.decode(doc)
}

// sumTotalPrice adds totals in decimal so repeated sums do not drift
func sumTotalPrice(rows []models.DailyExpense) float64 {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(decimal.NewFromFloat(r.TotalPrice))
	}
	return sum.InexactFloat64()
}
