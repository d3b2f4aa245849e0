package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRunsAllMigrations(t *testing.T) {
	s := openTestStore(t)

	version, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestVersion() {
		t.Errorf("Expected schema version %d, got %d", LatestVersion(), version)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mirror.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	if err := s.Put(ctx, TableJobs, Record{ID: "j1", Data: []byte(`{"id":"j1"}`)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Mirror file should exist: %v", err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, TableJobs, "j1"); err != nil {
		t.Errorf("Data should survive reopen: %v", err)
	}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Get(ctx, TableTechnicians, "t1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	rec := Record{ID: "t1", Data: []byte(`{"id":"t1","name":"Somchai"}`), Index: map[string]interface{}{"category": "electrical"}}
	if err := s.Put(ctx, TableTechnicians, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := s.Get(ctx, TableTechnicians, "t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"id":"t1","name":"Somchai"}` {
		t.Errorf("Unexpected document: %s", data)
	}

	// Upsert replaces the document and the index value
	rec.Data = []byte(`{"id":"t1","name":"Somchai K."}`)
	rec.Index["category"] = "mechanical"
	if err := s.Put(ctx, TableTechnicians, rec); err != nil {
		t.Fatalf("Second put failed: %v", err)
	}

	n, err := s.Count(ctx, TableTechnicians)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Upsert should not duplicate, got %d rows", n)
	}

	docs, err := s.Find(ctx, TableTechnicians, Eq("category", "mechanical"))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 1 || string(docs[0]) != `{"id":"t1","name":"Somchai K."}` {
		t.Errorf("Unexpected find result: %q", docs)
	}

	if err := s.Delete(ctx, TableTechnicians, "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, TableTechnicians, "t1"); err != nil {
		t.Errorf("Deleting a missing id should not fail: %v", err)
	}
	if _, err := s.Get(ctx, TableTechnicians, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestPutManyAndConditions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	recs := []Record{
		{ID: "e3", Data: []byte(`{"id":"e3"}`), Index: map[string]interface{}{"year": 2024, "month": 2, "budget_id": "b1"}},
		{ID: "e1", Data: []byte(`{"id":"e1"}`), Index: map[string]interface{}{"year": 2024, "month": 0, "budget_id": "b1"}},
		{ID: "e2", Data: []byte(`{"id":"e2"}`), Index: map[string]interface{}{"year": 2023, "month": 11, "budget_id": "b2"}},
	}
	if err := s.PutMany(ctx, TableDailyExpenses, recs); err != nil {
		t.Fatalf("PutMany failed: %v", err)
	}

	all, err := s.All(ctx, TableDailyExpenses)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 || string(all[0]) != `{"id":"e1"}` {
		t.Errorf("Expected 3 rows ordered by id, got %q", all)
	}

	docs, err := s.Find(ctx, TableDailyExpenses, Eq("year", 2024), Between("month", 0, 1))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 1 || string(docs[0]) != `{"id":"e1"}` {
		t.Errorf("Unexpected rows: %q", docs)
	}

	n, err := s.Count(ctx, TableDailyExpenses, Gte("year", 2024))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows for 2024+, got %d", n)
	}

	removed, err := s.DeleteWhere(ctx, TableDailyExpenses, Lt("year", 2024))
	if err != nil {
		t.Fatalf("DeleteWhere failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 row removed, got %d", removed)
	}
}

func TestHasPrefixEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	recs := []Record{
		{ID: "a", Data: []byte(`{}`), Index: map[string]interface{}{"job_number": "PM_01001/67"}},
		{ID: "b", Data: []byte(`{}`), Index: map[string]interface{}{"job_number": "PMX01002/67"}},
	}
	if err := s.PutMany(ctx, TableJobs, recs); err != nil {
		t.Fatalf("PutMany failed: %v", err)
	}

	n, err := s.Count(ctx, TableJobs, HasPrefix("job_number", "PM_"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Underscore should match literally, got %d rows", n)
	}
}

func TestRejectsUnknownColumnsAndTables(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Find(ctx, TableJobs, Eq("data; DROP TABLE jobs", 1)); err == nil {
		t.Error("Expected error for unknown filter column")
	}
	if err := s.Put(ctx, TableJobs, Record{ID: "x", Data: []byte(`{}`), Index: map[string]interface{}{"nope": 1}}); err == nil {
		t.Error("Expected error for unknown index column")
	}
	if err := s.Put(ctx, TableJobs, Record{Data: []byte(`{}`)}); err == nil {
		t.Error("Expected error for missing id")
	}
	if _, err := s.All(ctx, Table("widgets")); err == nil {
		t.Error("Expected error for unknown table")
	}
}
