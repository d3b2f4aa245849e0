package sync

import (
	"context"
	"testing"

	"github.com/xelth-com/maintdesk/internal/models"
)

func TestBudgetActualRecompute(t *testing.T) {
	ctx := context.Background()

	for _, withRemote := range []bool{false, true} {
		name := "offline"
		if withRemote {
			name = "remote"
		}
		t.Run(name, func(t *testing.T) {
			var e *SyncEngine
			if withRemote {
				e = newTestEngine(t, newFakeRemote())
			} else {
				e = newOfflineEngine(t)
			}

			budget := models.BudgetItem{ID: "b1", Year: 2569, Category: "consumables", Code: "01"}
			if err := e.SaveBudget(ctx, &budget); err != nil {
				t.Fatalf("SaveBudget failed: %v", err)
			}

			first := models.DailyExpense{BudgetID: "b1", Year: 2569, Month: 3, TotalPrice: 100}
			second := models.DailyExpense{BudgetID: "b1", Year: 2569, Month: 3, TotalPrice: 250}
			for _, d := range []*models.DailyExpense{&first, &second} {
				if err := e.SaveDailyExpense(ctx, d); err != nil {
					t.Fatalf("SaveDailyExpense failed: %v", err)
				}
			}

			assertActual(t, e, 3, 350)

			if err := e.DeleteDailyExpense(ctx, second.ID); err != nil {
				t.Fatalf("DeleteDailyExpense failed: %v", err)
			}
			assertActual(t, e, 3, 100)
		})
	}
}

func TestBudgetActualFollowsMovedExpense(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	budget := models.BudgetItem{ID: "b1", Year: 2569}
	if err := e.SaveBudget(ctx, &budget); err != nil {
		t.Fatalf("SaveBudget failed: %v", err)
	}

	d := models.DailyExpense{BudgetID: "b1", Year: 2569, Month: 3, TotalPrice: 80}
	if err := e.SaveDailyExpense(ctx, &d); err != nil {
		t.Fatalf("SaveDailyExpense failed: %v", err)
	}
	assertActual(t, e, 3, 80)

	d.Month = 4
	if err := e.SaveDailyExpense(ctx, &d); err != nil {
		t.Fatalf("SaveDailyExpense failed: %v", err)
	}
	assertActual(t, e, 3, 0)
	assertActual(t, e, 4, 80)
}

func TestBudgetActualSumsWithoutDrift(t *testing.T) {
	rows := []models.DailyExpense{{TotalPrice: 0.1}, {TotalPrice: 0.2}}
	if got := sumTotalPrice(rows); got != 0.3 {
		t.Errorf("sumTotalPrice = %v, want 0.3", got)
	}
}

func TestSyncBudgetActualRejectsBadMonth(t *testing.T) {
	e := newOfflineEngine(t)
	if err := e.SyncBudgetActual(context.Background(), "b1", 2569, 12); err == nil {
		t.Error("Expected error for month 12")
	}
}

func TestSaveBudgetPlan(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	// Expenses recorded before their budget item exists
	d := models.DailyExpense{BudgetID: "b1", Year: 2569, Month: 2, TotalPrice: 75}
	if err := e.SaveDailyExpense(ctx, &d); err != nil {
		t.Fatalf("SaveDailyExpense failed: %v", err)
	}

	plan := models.BudgetItem{ID: "b1", Year: 2569, Code: "01"}
	plan.MonthlyActual[2] = 1
	plan.MonthlyActual[5] = 500
	if err := e.SaveBudgetPlan(ctx, &plan); err != nil {
		t.Fatalf("SaveBudgetPlan failed: %v", err)
	}
	assertActual(t, e, 2, 75)
	assertActual(t, e, 5, 0)

	plan.Code = "02"
	plan.MonthlyActual = [12]float64{}
	if err := e.SaveBudgetPlan(ctx, &plan); err != nil {
		t.Fatalf("SaveBudgetPlan failed: %v", err)
	}
	assertActual(t, e, 2, 75)

	stored, err := e.GetBudget(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if stored.Code != "02" {
		t.Errorf("Code = %q, want 02", stored.Code)
	}

	fresh := models.BudgetItem{Year: 2569}
	fresh.MonthlyActual[0] = 10
	if err := e.SaveBudgetPlan(ctx, &fresh); err != nil {
		t.Fatalf("SaveBudgetPlan without id failed: %v", err)
	}
	if fresh.ID == "" || fresh.MonthlyActual != ([12]float64{}) {
		t.Errorf("New item should get an id and zero actuals: %+v", fresh)
	}
}

func assertActual(t *testing.T, e *SyncEngine, month int, want float64) {
	t.Helper()
	budgets, err := e.GetBudgets(context.Background(), 2569)
	if err != nil {
		t.Fatalf("GetBudgets failed: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(budgets))
	}
	if got := budgets[0].MonthlyActual[month]; got != want {
		t.Errorf("MonthlyActual[%d] = %v, want %v", month, got, want)
	}
}

func TestSeedBudgets(t *testing.T) {
	ctx := context.Background()

	t.Run("from settings", func(t *testing.T) {
		e := newOfflineEngine(t)
		settings := models.DefaultSettings()
		settings.BudgetCategories = []string{"spare parts", "consumables"}
		if err := e.SaveSettings(ctx, &settings); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}

		n, err := e.SeedBudgets(ctx, 2569)
		if err != nil {
			t.Fatalf("SeedBudgets failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 seeded items, got %d", n)
		}

		// Seeding again is a no-op
		n, err = e.SeedBudgets(ctx, 2569)
		if err != nil || n != 0 {
			t.Errorf("Second seed should do nothing, got %d, %v", n, err)
		}
	})

	t.Run("from previous year", func(t *testing.T) {
		e := newOfflineEngine(t)
		prev := models.BudgetItem{Year: 2568, Category: "spare parts", Code: "01", TotalBudget: 1200}
		prev.MonthlyPlan[0] = 100
		prev.MonthlyActual[0] = 95
		if err := e.SaveBudget(ctx, &prev); err != nil {
			t.Fatalf("SaveBudget failed: %v", err)
		}

		n, err := e.SeedBudgets(ctx, 2569)
		if err != nil || n != 1 {
			t.Fatalf("Expected 1 seeded item, got %d, %v", n, err)
		}

		seeded, err := e.GetBudgets(ctx, 2569)
		if err != nil || len(seeded) != 1 {
			t.Fatalf("Expected 1 budget for 2569, got %d, %v", len(seeded), err)
		}
		b := seeded[0]
		if b.ID == prev.ID {
			t.Error("Seeded item must get a new id")
		}
		if b.TotalBudget != 1200 || b.MonthlyPlan[0] != 100 {
			t.Errorf("Plan should be copied: %+v", b)
		}
		if b.MonthlyActual[0] != 0 {
			t.Error("Actuals must start at zero")
		}
	})
}

func TestCleanupOldBudgetsAndExpenses(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	for _, year := range []int{2566, 2567, 2568, 2569} {
		b := models.BudgetItem{Year: year}
		if err := e.SaveBudget(ctx, &b); err != nil {
			t.Fatalf("SaveBudget failed: %v", err)
		}
		d := models.DailyExpense{Year: year, Month: 0, TotalPrice: 1}
		if err := e.SaveDailyExpense(ctx, &d); err != nil {
			t.Fatalf("SaveDailyExpense failed: %v", err)
		}
	}

	n, err := e.CleanupOldBudgets(ctx, 2568)
	if err != nil || n != 2 {
		t.Errorf("Expected 2 budgets removed, got %d, %v", n, err)
	}
	remaining, _ := e.GetBudgets(ctx, 0)
	if len(remaining) != 2 {
		t.Errorf("Expected 2 budgets left, got %d", len(remaining))
	}

	n, err = e.CleanupHistoricalExpenses(ctx, 2569)
	if err != nil || n != 3 {
		t.Errorf("Expected 3 expense rows removed, got %d, %v", n, err)
	}
	rows, _ := e.GetDailyExpenses(ctx, 0, -1)
	if len(rows) != 1 || rows[0].Year != 2569 {
		t.Errorf("Only 2569 rows should remain, got %+v", rows)
	}
}
