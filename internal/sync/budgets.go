package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var budgetDesc = newEntityDesc(EntityTypeBudget, localstore.TableBudgets,
	func(b *models.BudgetItem, id string) { b.ID = id },
	text("id"),
	integer("year"),
	text("category"),
	text("code"),
	text("name"),
	number("totalBudget"),
	jsonField("monthlyPlan"),
	jsonField("monthlyActual"),
)

// GetBudgets returns the budget items of a year, or every item when year is 0
func (e *SyncEngine) GetBudgets(ctx context.Context, year int) ([]models.BudgetItem, error) {
	if year == 0 {
		return readEntities(ctx, e, budgetDesc, nil)
	}
	return readEntities(ctx, e, budgetDesc, where("year", year))
}

// GetBudget returns one budget item by id
func (e *SyncEngine) GetBudget(ctx context.Context, id string) (models.BudgetItem, error) {
	return getEntity(ctx, e, budgetDesc, id)
}

// SaveBudget upserts a budget item, assigning an id when it has none.
// Monthly actuals are derived from daily expenses; change them through
// SaveDailyExpense and DeleteDailyExpense.
func (e *SyncEngine) SaveBudget(ctx context.Context, b *models.BudgetItem) error {
	return saveEntity(ctx, e, budgetDesc, b)
}

// SaveBudgetPlan saves the planned side of a budget item coming from a
// client. An existing item keeps its stored actuals; a new one gets actuals
// summed from the daily expenses already in the local mirror.
func (e *SyncEngine) SaveBudgetPlan(ctx context.Context, b *models.BudgetItem) error {
	if b.ID != "" {
		existing, err := e.GetBudget(ctx, b.ID)
		if err == nil {
			b.MonthlyActual = existing.MonthlyActual
			return e.SaveBudget(ctx, b)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	b.MonthlyActual = [12]float64{}
	if b.ID != "" && b.Year != 0 {
		docs, err := e.local.Find(ctx, localstore.TableDailyExpenses,
			localstore.Eq("budget_id", b.ID), localstore.Eq("year", b.Year))
		if err != nil {
			return fmt.Errorf("failed to read expenses of budget %s: %w", b.ID, err)
		}
		var byMonth [12][]models.DailyExpense
		for _, d := range decodeDocs(e, dailyExpenseDesc, docs) {
			if d.Month >= 0 && d.Month < 12 {
				byMonth[d.Month] = append(byMonth[d.Month], d)
			}
		}
		for m, rows := range byMonth {
			b.MonthlyActual[m] = sumTotalPrice(rows)
		}
	}
	return e.SaveBudget(ctx, b)
}

// DeleteBudget removes a budget item
func (e *SyncEngine) DeleteBudget(ctx context.Context, id string) error {
	return deleteEntity(ctx, e, budgetDesc, id)
}

// SeedBudgets creates the budget items of year when it has none: a copy of
// the previous year's items with actuals cleared, or one empty item per
// budget category in settings. Returns the number of items created.
func (e *SyncEngine) SeedBudgets(ctx context.Context, year int) (int, error) {
	existing, err := e.GetBudgets(ctx, year)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		e.log.Info("ℹ️  Budgets already exist, skipping seed", zap.Int("year", year), zap.Int("items", len(existing)))
		return 0, nil
	}

	previous, err := e.GetBudgets(ctx, year-1)
	if err != nil {
		return 0, err
	}

	var seeds []models.BudgetItem
	if len(previous) > 0 {
		for _, p := range previous {
			seeds = append(seeds, models.BudgetItem{
				Year:        year,
				Category:    p.Category,
				Code:        p.Code,
				Name:        p.Name,
				TotalBudget: p.TotalBudget,
				MonthlyPlan: p.MonthlyPlan,
			})
		}
	} else {
		settings, err := e.GetSettings(ctx)
		if err != nil {
			return 0, err
		}
		for i, category := range settings.BudgetCategories {
			seeds = append(seeds, models.BudgetItem{
				Year:     year,
				Category: category,
				Code:     fmt.Sprintf("%02d", i+1),
				Name:     category,
			})
		}
	}

	created := 0
	var remoteErr error
	for i := range seeds {
		if err := e.SaveBudget(ctx, &seeds[i]); err != nil {
			if !IsRemoteWriteError(err) {
				return created, err
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}
		created++
	}

	e.log.Info("🌱 Seeded budgets", zap.Int("year", year), zap.Int("items", created))
	return created, remoteErr
}

// CleanupOldBudgets deletes every budget item with a year before
// keepFromYear. Returns the number deleted.
func (e *SyncEngine) CleanupOldBudgets(ctx context.Context, keepFromYear int) (int, error) {
	items, err := e.GetBudgets(ctx, 0)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var remoteErr error
	for _, b := range items {
		if b.Year >= keepFromYear {
			continue
		}
		if err := e.DeleteBudget(ctx, b.ID); err != nil {
			if !IsRemoteWriteError(err) {
				return deleted, err
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}
		deleted++
	}

	e.log.Info("🧹 Cleaned up old budgets", zap.Int("before_year", keepFromYear), zap.Int("deleted", deleted))
	return deleted, remoteErr
}

// SyncBudgetActual recomputes one month's actual of a budget item as the sum
// of totalPrice over all daily expenses in the local mirror with the same
// budget, year and month
func (e *SyncEngine) SyncBudgetActual(ctx context.Context, budgetID string, year, month int) error {
	if budgetID == "" {
		return nil
	}
	if month < 0 || month > 11 {
		return fmt.Errorf("month %d out of range 0-11", month)
	}

	budget, err := e.GetBudget(ctx, budgetID)
	if errors.Is(err, ErrNotFound) {
		e.log.Warn("⚠️  Expense references unknown budget item", zap.String("budget_id", budgetID))
		return nil
	}
	if err != nil {
		return err
	}

	// Refresh the mirror from the remote first; the sum itself comes from the
	// mirror, which also holds the writes the remote rejected
	f := where("budget_id", budgetID, "year", year, "month", month)
	if _, err := readEntities(ctx, e, dailyExpenseDesc, f); err != nil {
		return err
	}
	docs, err := e.local.Find(ctx, localstore.TableDailyExpenses, f.local()...)
	if err != nil {
		return fmt.Errorf("failed to read expenses of budget %s: %w", budgetID, err)
	}
	expenses := decodeDocs(e, dailyExpenseDesc, docs)

	actual := sumTotalPrice(expenses)
	if budget.MonthlyActual[month] == actual {
		return nil
	}

	budget.MonthlyActual[month] = actual
	return e.SaveBudget(ctx, &budget)
}
