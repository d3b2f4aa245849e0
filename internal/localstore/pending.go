package localstore

import (
	"context"
	"fmt"
)

// Pending write operations
const (
	PendingSave   = "save"
	PendingDelete = "delete"
)

// PendingWrite is one local write the remote has not accepted yet
type PendingWrite struct {
	Table Table
	ID    string
	Op    string
}

// MarkPending records that the latest local write of id still has to reach
// the remote. A later mark for the same id replaces the earlier one.
func (s *Store) MarkPending(ctx context.Context, table Table, id, op string) error {
	if _, err := columnsOf(table); err != nil {
		return err
	}
	if op != PendingSave && op != PendingDelete {
		return fmt.Errorf("unknown pending op %q", op)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_writes (entity_table, id, op) VALUES (?, ?, ?)
		ON CONFLICT(entity_table, id) DO UPDATE SET op = excluded.op, queued_at = CURRENT_TIMESTAMP`,
		string(table), id, op)
	if err != nil {
		return fmt.Errorf("failed to mark %s %s pending: %w", table, id, err)
	}
	return nil
}

// ClearPending forgets the pending write of id. Clearing an id with nothing
// pending is not an error.
func (s *Store) ClearPending(ctx context.Context, table Table, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_writes WHERE entity_table = ? AND id = ?", string(table), id)
	if err != nil {
		return fmt.Errorf("failed to clear pending %s %s: %w", table, id, err)
	}
	return nil
}

// Pending returns the pending ops of one table keyed by id
func (s *Store) Pending(ctx context.Context, table Table) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, op FROM pending_writes WHERE entity_table = ?", string(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending %s: %w", table, err)
	}
	defer rows.Close()

	pending := make(map[string]string)
	for rows.Next() {
		var id, op string
		if err := rows.Scan(&id, &op); err != nil {
			return nil, fmt.Errorf("failed to scan pending %s: %w", table, err)
		}
		pending[id] = op
	}
	return pending, rows.Err()
}

// AllPending returns every pending write, oldest first
func (s *Store) AllPending(ctx context.Context) ([]PendingWrite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entity_table, id, op FROM pending_writes ORDER BY queued_at, entity_table, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pending writes: %w", err)
	}
	defer rows.Close()

	var out []PendingWrite
	for rows.Next() {
		var w PendingWrite
		var table string
		if err := rows.Scan(&table, &w.ID, &w.Op); err != nil {
			return nil, fmt.Errorf("failed to scan pending write: %w", err)
		}
		w.Table = Table(table)
		out = append(out, w)
	}
	return out, rows.Err()
}
