package localstore

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a schema migration. Migrations are additive only:
// a new version may create tables and indexes, never alter or drop one.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_jobs_technicians_settings",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_pm_plans_and_factory_holidays",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_user_roles",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_budgets_and_daily_expenses",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "add_standard_items",
		Up:      migrationV5,
	},
	{
		Version: 6,
		Name:    "add_pending_writes",
		Up:      migrationV6,
	},
}

// LatestVersion is the schema version after all migrations have run
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// migrate brings the schema up to date, one transaction per migration
func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func execAll(tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the original three tables
func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			job_number TEXT,
			status TEXT,
			department TEXT,
			date_received TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_department ON jobs(department)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_date_received ON jobs(date_received)`,
		`CREATE TABLE IF NOT EXISTS technicians (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			category TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_technicians_category ON technicians(category)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL
		)`,
	)
}

// migrationV2 adds preventive maintenance plans and factory holidays
func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS pm_plans (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			year INTEGER,
			department TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pm_plans_year ON pm_plans(year)`,
		`CREATE TABLE IF NOT EXISTS factory_holidays (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			year INTEGER,
			date TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_factory_holidays_year ON factory_holidays(year)`,
	)
}

// migrationV3 adds user role profiles
func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS user_roles (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			email TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_roles_email ON user_roles(email)`,
	)
}

// migrationV4 adds budgets and the daily expense rows that feed their actuals
func migrationV4(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS budgets (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			year INTEGER,
			category TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_year ON budgets(year)`,
		`CREATE TABLE IF NOT EXISTS daily_expenses (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			year INTEGER,
			month INTEGER,
			budget_id TEXT,
			division TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_expenses_year_month ON daily_expenses(year, month)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_expenses_budget ON daily_expenses(budget_id)`,
	)
}

// migrationV5 adds the standard item catalog
func migrationV5(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS standard_items (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			budget_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_standard_items_budget ON standard_items(budget_id)`,
	)
}

// migrationV6 adds the queue of local writes the remote has not accepted yet
func migrationV6(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS pending_writes (
			entity_table TEXT NOT NULL,
			id TEXT NOT NULL,
			op TEXT NOT NULL,
			queued_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (entity_table, id)
		)`,
	)
}
