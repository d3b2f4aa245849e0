package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// Select returns every row of table matching the equality filter, as
// column -> value maps. JSON columns come back as raw bytes or strings and
// are decoded by the caller's normalizer.
func (db *DB) Select(ctx context.Context, table string, where map[string]interface{}) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}

	q := db.WithContext(ctx).Table(table)
	if len(where) > 0 {
		q = q.Where(where)
	}
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	return rows, nil
}

// Upsert inserts row or, on id conflict, overwrites every other column
func (db *DB) Upsert(ctx context.Context, table string, row map[string]interface{}) error {
	values, cols, err := encodeRow(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", table, err)
	}

	err = db.WithContext(ctx).Table(table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(values).Error
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}

	return nil
}

// Delete removes the row with the given id. A missing row is not an error.
func (db *DB) Delete(ctx context.Context, table, id string) error {
	err := db.WithContext(ctx).Exec("DELETE FROM ? WHERE id = ?", clause.Table{Name: table}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// Ping checks that the remote answers
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// encodeRow converts nested values into jsonb-ready datatypes.JSON and
// returns the non-key columns in a stable order for the conflict update
func encodeRow(row map[string]interface{}) (map[string]interface{}, []string, error) {
	if _, ok := row["id"]; !ok {
		return nil, nil, fmt.Errorf("row has no id")
	}

	values := make(map[string]interface{}, len(row))
	cols := make([]string, 0, len(row))
	for col, v := range row {
		switch v.(type) {
		case map[string]interface{}, []interface{}, []string, map[string]string:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, nil, fmt.Errorf("column %s: %w", col, err)
			}
			values[col] = datatypes.JSON(raw)
		default:
			values[col] = v
		}
		if col != "id" {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	return values, cols, nil
}
