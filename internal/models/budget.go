package models

// BudgetItem is one line of a yearly budget plan. Year is in the Thai
// Buddhist calendar (2569 = 2026). Index i of the monthly arrays is month i,
// 0 = January.
type BudgetItem struct {
	ID            string      `gorm:"primaryKey;type:text" json:"id"`
	Year          int         `gorm:"index" json:"year"`
	Category      string      `gorm:"index" json:"category"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	TotalBudget   float64     `json:"totalBudget"`
	MonthlyPlan   [12]float64 `gorm:"type:jsonb;serializer:json" json:"monthlyPlan"`
	MonthlyActual [12]float64 `gorm:"type:jsonb;serializer:json" json:"monthlyActual"`
}

func (BudgetItem) TableName() string { return "budgets" }

// GetEntityID implements SyncableEntity interface
func (b BudgetItem) GetEntityID() string { return b.ID }

// GetEntityType implements SyncableEntity interface
func (b BudgetItem) GetEntityType() string { return "budgets" }

// DailyExpense is one row of per-day quantities for a standard item in a
// given year, month and division. Month uses the same 0-based index as the
// budget monthly arrays.
type DailyExpense struct {
	ID             string      `gorm:"primaryKey;type:text" json:"id"`
	BudgetID       string      `gorm:"index" json:"budgetId"`
	StandardItemID string      `json:"standardItemId"`
	Year           int         `gorm:"index:idx_daily_year_month" json:"year"`
	Month          int         `gorm:"index:idx_daily_year_month" json:"month"`
	Division       string      `json:"division"`
	Quantities     [31]float64 `gorm:"type:jsonb;serializer:json" json:"quantities"`
	UnitPrice      float64     `json:"unitPrice"`
	TotalPrice     float64     `json:"totalPrice"`
	Note           string      `json:"note"`
}

func (DailyExpense) TableName() string { return "daily_expenses" }

// GetEntityID implements SyncableEntity interface
func (d DailyExpense) GetEntityID() string { return d.ID }

// GetEntityType implements SyncableEntity interface
func (d DailyExpense) GetEntityType() string { return "daily_expenses" }

// TotalQuantity sums the per-day quantities
func (d DailyExpense) TotalQuantity() float64 {
	var sum float64
	for _, q := range d.Quantities {
		sum += q
	}
	return sum
}

// StandardItem is a master-data catalog row, valid across all months and years
type StandardItem struct {
	ID           string  `gorm:"primaryKey;type:text" json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	DefaultPrice float64 `json:"defaultPrice"`
	BudgetID     string  `gorm:"index" json:"budgetId"`
	BudgetCode   string  `json:"budgetCode"`
	Category     string  `json:"category"`
	Active       bool    `json:"active"`
}

func (StandardItem) TableName() string { return "standard_items" }

// GetEntityID implements SyncableEntity interface
func (s StandardItem) GetEntityID() string { return s.ID }

// GetEntityType implements SyncableEntity interface
func (s StandardItem) GetEntityType() string { return "standard_items" }
