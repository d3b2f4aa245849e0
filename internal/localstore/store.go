// Package localstore is the Local Mirror Store: an embedded SQLite database
// holding the last known copy of every entity. Each table keeps the entity
// as a JSON document plus a few typed columns that can be filtered on.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no record has the requested id
var ErrNotFound = errors.New("record not found")

// Table names one entity table
type Table string

const (
	TableJobs            Table = "jobs"
	TableTechnicians     Table = "technicians"
	TableSettings        Table = "app_settings"
	TablePMPlans         Table = "pm_plans"
	TableFactoryHolidays Table = "factory_holidays"
	TableUserRoles       Table = "user_roles"
	TableBudgets         Table = "budgets"
	TableDailyExpenses   Table = "daily_expenses"
	TableStandardItems   Table = "standard_items"
)

// indexColumns lists the filterable columns of each table, in schema order
var indexColumns = map[Table][]string{
	TableJobs:            {"job_number", "status", "department", "date_received"},
	TableTechnicians:     {"category"},
	TableSettings:        {},
	TablePMPlans:         {"year", "department"},
	TableFactoryHolidays: {"year", "date"},
	TableUserRoles:       {"email"},
	TableBudgets:         {"year", "category"},
	TableDailyExpenses:   {"year", "month", "budget_id", "division"},
	TableStandardItems:   {"budget_id"},
}

// Record is one row to upsert: the JSON document and its index values.
// Index keys must be columns of the target table; missing ones are stored NULL.
type Record struct {
	ID    string
	Data  []byte
	Index map[string]interface{}
}

// Store wraps the SQLite connection
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the mirror at path and runs pending
// migrations. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create mirror directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	// Single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate mirror: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the file the mirror lives in
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the highest applied migration
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Get returns the JSON document stored under id
func (s *Store) Get(ctx context.Context, table Table, id string) ([]byte, error) {
	if _, err := columnsOf(table); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table), id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", table, id, err)
	}

	return []byte(data), nil
}

// All returns every document in the table ordered by id
func (s *Store) All(ctx context.Context, table Table) ([][]byte, error) {
	return s.Find(ctx, table)
}

// Find returns the documents matching all conditions, ordered by id
func (s *Store) Find(ctx context.Context, table Table, conds ...Condition) ([][]byte, error) {
	where, args, err := buildWhere(table, conds)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT data FROM %s%s ORDER BY id", table, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		docs = append(docs, []byte(data))
	}

	return docs, rows.Err()
}

// Count returns the number of rows matching all conditions
func (s *Store) Count(ctx context.Context, table Table, conds ...Condition) (int, error) {
	where, args, err := buildWhere(table, conds)
	if err != nil {
		return 0, err
	}

	var n int
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Put inserts or replaces one record by id
func (s *Store) Put(ctx context.Context, table Table, rec Record) error {
	return s.PutMany(ctx, table, []Record{rec})
}

// PutMany upserts records in a single transaction
func (s *Store) PutMany(ctx context.Context, table Table, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	cols, err := columnsOf(table)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == "" {
			return fmt.Errorf("cannot store %s record without id", table)
		}
		for key := range rec.Index {
			if !contains(cols, key) {
				return fmt.Errorf("unknown index column %q for %s", key, table)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL(table, cols))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare upsert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		args := make([]interface{}, 0, len(cols)+2)
		args = append(args, rec.ID, string(rec.Data))
		for _, col := range cols {
			args = append(args, rec.Index[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert %s %s: %w", table, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s upsert: %w", table, err)
	}
	return nil
}

// Delete removes a record by id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, table Table, id string) error {
	if _, err := columnsOf(table); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}
	return nil
}

// DeleteWhere removes every record matching all conditions
func (s *Store) DeleteWhere(ctx context.Context, table Table, conds ...Condition) (int64, error) {
	where, args, err := buildWhere(table, conds)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", table, where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return res.RowsAffected()
}

func upsertSQL(table Table, cols []string) string {
	all := append([]string{"id", "data"}, cols...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")

	updates := make([]string, 0, len(all)-1)
	for _, col := range all[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		table, strings.Join(all, ", "), placeholders, strings.Join(updates, ", "),
	)
}

// Columns returns the filterable index columns of table
func Columns(table Table) []string {
	return append([]string(nil), indexColumns[table]...)
}

func columnsOf(table Table) ([]string, error) {
	cols, ok := indexColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
