package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	gosync "sync"
	"testing"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

var errRemoteDown = errors.New("remote unreachable")

// fakeRemote is an in-memory Remote. Rows are stored exactly as upserted or
// seeded, so tests can plant camelCase or snake_case columns.
type fakeRemote struct {
	mu         gosync.Mutex
	tables     map[string]map[string]map[string]interface{}
	fail       bool
	// failWrites rejects Upsert and Delete while Select and Ping succeed.
	failWrites bool
	block      bool
	calls      int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tables: make(map[string]map[string]map[string]interface{})}
}

func (f *fakeRemote) seed(table string, row map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[table] == nil {
		f.tables[table] = make(map[string]map[string]interface{})
	}
	f.tables[table][fmt.Sprint(row["id"])] = row
}

func (f *fakeRemote) row(table, id string) (map[string]interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.tables[table][id]
	return r, ok
}

func (f *fakeRemote) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeRemote) setFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *fakeRemote) setBlock(block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = block
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) gate(ctx context.Context, write bool) error {
	f.mu.Lock()
	f.calls++
	fail, block := f.fail || (write && f.failWrites), f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail {
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) Select(ctx context.Context, table string, where map[string]interface{}) ([]map[string]interface{}, error) {
	if err := f.gate(ctx, false); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.tables[table]))
	for id := range f.tables[table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []map[string]interface{}
	for _, id := range ids {
		row := f.tables[table][id]
		match := true
		for col, want := range where {
			if fmt.Sprint(row[col]) != fmt.Sprint(want) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		cp := make(map[string]interface{}, len(row))
		for k, v := range row {
			cp[k] = v
		}
		rows = append(rows, cp)
	}
	return rows, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, row map[string]interface{}) error {
	if err := f.gate(ctx, true); err != nil {
		return err
	}
	f.seed(table, row)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table, id string) error {
	if err := f.gate(ctx, true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tables[table], id)
	return nil
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	return f.gate(ctx, false)
}

func testSyncConfig() *config.SyncConfig {
	return &config.SyncConfig{
		CacheTTL:         30,
		RemoteTimeout:    1,
		DefaultJobPrefix: "JOB",
		BackupVersion:    "2.0",
	}
}

func openTestMirror(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Failed to open local mirror: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEngine(t *testing.T, remote *fakeRemote) *SyncEngine {
	t.Helper()
	return NewSyncEngine(openTestMirror(t), remote, testSyncConfig(), zap.NewNop())
}

func newOfflineEngine(t *testing.T) *SyncEngine {
	t.Helper()
	return NewSyncEngine(openTestMirror(t), nil, testSyncConfig(), zap.NewNop())
}

func sampleJob(id, department string) models.Job {
	return models.Job{
		ID:           id,
		JobNumber:    "MTN03001/69",
		Department:   department,
		JobType:      "electrical",
		RepairGroup:  "line-1",
		Status:       models.JobStatusInProgress,
		DateReceived: "2026-03-15",
		Costs: []models.Cost{
			{ID: "c1", Category: "parts", Company: "ACME", Quantity: 2, UnitPrice: 50, Total: 100, Date: "2026-03-16"},
		},
		TechnicianIDs:   []string{"t1"},
		Requester:       "Somchai",
		Description:     "Conveyor motor overheating",
		EvaluationScore: 4.5,
	}
}

func TestReadFallsBackToLocalForEveryEntity(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		save  func(e *SyncEngine) error
		count func(e *SyncEngine) (int, error)
	}{
		{"jobs", func(e *SyncEngine) error {
			j := sampleJob("j1", "A")
			return e.SaveJob(ctx, &j)
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetJobs(ctx)
			return len(v), err
		}},
		{"technicians", func(e *SyncEngine) error {
			return e.SaveTechnician(ctx, &models.Technician{ID: "t1", Name: "Somchai", Category: "electrical"})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetTechnicians(ctx)
			return len(v), err
		}},
		{"settings", func(e *SyncEngine) error {
			s := models.DefaultSettings()
			s.Theme = "dark"
			return e.SaveSettings(ctx, &s)
		}, func(e *SyncEngine) (int, error) {
			s, err := e.GetSettings(ctx)
			if s.Theme != "dark" {
				return 0, err
			}
			return 1, err
		}},
		{"pm_plans", func(e *SyncEngine) error {
			return e.SavePMPlan(ctx, &models.PMPlan{ID: "p1", Year: 2569, Machine: "Press 4"})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetPMPlans(ctx, 2569)
			return len(v), err
		}},
		{"holidays", func(e *SyncEngine) error {
			return e.SaveHoliday(ctx, &models.FactoryHoliday{ID: "h1", Date: "2026-04-13", Name: "Songkran"})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetHolidays(ctx, 2026)
			return len(v), err
		}},
		{"user_roles", func(e *SyncEngine) error {
			return e.SaveUserRole(ctx, &models.UserRoleProfile{ID: "u1", Email: "Admin@Example.com", Role: models.RoleAdmin})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetUserRoles(ctx)
			return len(v), err
		}},
		{"budgets", func(e *SyncEngine) error {
			return e.SaveBudget(ctx, &models.BudgetItem{ID: "b1", Year: 2569, Category: "spare parts"})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetBudgets(ctx, 2569)
			return len(v), err
		}},
		{"daily_expenses", func(e *SyncEngine) error {
			return e.SaveDailyExpense(ctx, &models.DailyExpense{ID: "d1", Year: 2569, Month: 2, TotalPrice: 10})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetDailyExpenses(ctx, 2569, 2)
			return len(v), err
		}},
		{"standard_items", func(e *SyncEngine) error {
			return e.SaveStandardItem(ctx, &models.StandardItem{ID: "s1", Code: "GL-01", Name: "Gloves"})
		}, func(e *SyncEngine) (int, error) {
			v, err := e.GetStandardItems(ctx)
			return len(v), err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := newFakeRemote()
			e := newTestEngine(t, remote)

			if err := tc.save(e); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			remote.setFail(true)
			e.Cache().Clear()

			n, err := tc.count(e)
			if err != nil {
				t.Fatalf("Read should not fail when remote is down: %v", err)
			}
			if n != 1 {
				t.Errorf("Expected 1 row from local mirror, got %d", n)
			}
		})
	}
}

func TestReadFallsBackOnRemoteTimeout(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	e := newTestEngine(t, remote)

	job := sampleJob("j1", "A")
	if err := e.SaveJob(ctx, &job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	remote.setBlock(true)
	e.Cache().Clear()

	jobs, err := e.GetJobs(ctx)
	if err != nil {
		t.Fatalf("GetJobs should fall back on timeout: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "j1" {
		t.Errorf("Expected local job j1, got %+v", jobs)
	}

	if e.Status(ctx).Remote.Available {
		t.Error("Remote should be reported unavailable after a timeout")
	}
}

func TestReadReturnsErrorOnlyForCancellation(t *testing.T) {
	remote := newFakeRemote()
	remote.setBlock(true)
	e := newTestEngine(t, remote)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.GetJobs(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWriteDurabilityWithFailingRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.setFail(true)
	e := newTestEngine(t, remote)

	job := sampleJob("", "A")
	err := e.SaveJob(ctx, &job)

	var rwe *RemoteWriteError
	if !errors.As(err, &rwe) {
		t.Fatalf("Expected RemoteWriteError, got %v", err)
	}
	if !errors.Is(err, errRemoteDown) {
		t.Error("RemoteWriteError should wrap the remote cause")
	}
	if job.ID == "" {
		t.Fatal("SaveJob should assign an id")
	}

	doc, err := e.Local().Get(ctx, localstore.TableJobs, job.ID)
	if err != nil {
		t.Fatalf("Job should be in the local mirror: %v", err)
	}
	stored, err := jobDesc.decode(doc)
	if err != nil {
		t.Fatalf("Failed to decode local job: %v", err)
	}
	if !reflect.DeepEqual(stored, job) {
		t.Errorf("Local copy differs:\n got  %+v\n want %+v", stored, job)
	}
}

func TestDeleteKeepsLocalDeleteWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	e := newTestEngine(t, remote)

	job := sampleJob("j1", "A")
	if err := e.SaveJob(ctx, &job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	remote.setFail(true)
	err := e.DeleteJob(ctx, "j1")
	if !IsRemoteWriteError(err) {
		t.Fatalf("Expected RemoteWriteError, got %v", err)
	}

	if _, err := e.Local().Get(ctx, localstore.TableJobs, "j1"); !errors.Is(err, localstore.ErrNotFound) {
		t.Errorf("Job should be gone locally, got %v", err)
	}
	if _, ok := remote.row("jobs", "j1"); !ok {
		t.Error("Remote row should survive the failed delete")
	}
}

func TestCacheCoherenceAfterSave(t *testing.T) {
	ctx := context.Background()

	for _, withRemote := range []bool{false, true} {
		t.Run(fmt.Sprintf("remote=%v", withRemote), func(t *testing.T) {
			var e *SyncEngine
			if withRemote {
				e = newTestEngine(t, newFakeRemote())
			} else {
				e = newOfflineEngine(t)
			}

			job := sampleJob("j1", "A")
			if err := e.SaveJob(ctx, &job); err != nil {
				t.Fatalf("SaveJob failed: %v", err)
			}

			// Warm the cache
			if _, err := e.GetJobs(ctx); err != nil {
				t.Fatalf("GetJobs failed: %v", err)
			}

			job.Department = "B"
			if err := e.SaveJob(ctx, &job); err != nil {
				t.Fatalf("SaveJob failed: %v", err)
			}

			jobs, err := e.GetJobs(ctx)
			if err != nil {
				t.Fatalf("GetJobs failed: %v", err)
			}
			if len(jobs) != 1 || jobs[0].Department != "B" {
				t.Errorf("Expected fresh department B, got %+v", jobs)
			}
		})
	}
}

func TestCachedReadSkipsRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	e := newTestEngine(t, remote)

	if _, err := e.GetTechnicians(ctx); err != nil {
		t.Fatalf("GetTechnicians failed: %v", err)
	}
	calls := remote.callCount()

	if _, err := e.GetTechnicians(ctx); err != nil {
		t.Fatalf("GetTechnicians failed: %v", err)
	}
	if remote.callCount() != calls {
		t.Error("Second read within the freshness window should not reach the remote")
	}
}

func TestIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newFakeRemote())

	tech := models.Technician{ID: "t1", Name: "Somchai", Category: "electrical", Active: true}
	for i := 0; i < 2; i++ {
		if err := e.SaveTechnician(ctx, &tech); err != nil {
			t.Fatalf("SaveTechnician #%d failed: %v", i+1, err)
		}
	}

	n, err := e.Local().Count(ctx, localstore.TableTechnicians)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected exactly one record, got %d", n)
	}
}

func TestRemoteRowsAreNormalizedAndMirrored(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.seed("budgets", map[string]interface{}{
		"id":             "b1",
		"year":           int64(2569),
		"category":       "spare parts",
		"total_budget":   "1500.50",
		"monthly_plan":   `[100, 200, 300]`,
		"monthly_actual": []byte(`[0, 0, 0, 50]`),
	})
	remote.seed("budgets", map[string]interface{}{
		"id":          "b2",
		"year":        2569,
		"totalBudget": 10.0,
		"monthlyPlan": []interface{}{1.0},
	})
	e := newTestEngine(t, remote)

	budgets, err := e.GetBudgets(ctx, 2569)
	if err != nil {
		t.Fatalf("GetBudgets failed: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(budgets))
	}

	b := budgets[0]
	if b.TotalBudget != 1500.5 {
		t.Errorf("TotalBudget = %v, want 1500.5", b.TotalBudget)
	}
	if b.MonthlyPlan[1] != 200 {
		t.Errorf("MonthlyPlan[1] = %v, want 200", b.MonthlyPlan[1])
	}
	if b.MonthlyActual[3] != 50 {
		t.Errorf("MonthlyActual[3] = %v, want 50", b.MonthlyActual[3])
	}
	if budgets[1].TotalBudget != 10 || budgets[1].MonthlyPlan[0] != 1 {
		t.Errorf("camelCase row not normalized: %+v", budgets[1])
	}

	// The normalized rows are mirrored locally in canonical form
	doc, err := e.Local().Get(ctx, localstore.TableBudgets, "b1")
	if err != nil {
		t.Fatalf("Remote row should be mirrored locally: %v", err)
	}
	mirrored, err := budgetDesc.decode(doc)
	if err != nil {
		t.Fatalf("Failed to decode mirrored budget: %v", err)
	}
	if !reflect.DeepEqual(mirrored, b) {
		t.Errorf("Mirrored budget differs:\n got  %+v\n want %+v", mirrored, b)
	}

	n, err := e.Local().Count(ctx, localstore.TableBudgets, localstore.Eq("year", 2569))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Mirrored rows should be indexed by year, got %d", n)
	}
}

func TestSaveWritesSnakeCaseColumns(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	e := newTestEngine(t, remote)

	b := models.BudgetItem{ID: "b1", Year: 2569, TotalBudget: 900}
	if err := e.SaveBudget(ctx, &b); err != nil {
		t.Fatalf("SaveBudget failed: %v", err)
	}

	row, ok := remote.row("budgets", "b1")
	if !ok {
		t.Fatal("Budget should reach the remote")
	}
	if row["total_budget"] != 900.0 {
		t.Errorf("total_budget = %v, want 900", row["total_budget"])
	}
	if row["year"] != int64(2569) {
		t.Errorf("year = %#v, want int64 2569", row["year"])
	}
	if _, ok := row["totalBudget"]; ok {
		t.Error("camelCase column must not be written to the remote")
	}
}

func TestChangeNotifications(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	rec := &recordingNotifier{}
	e.AddNotifier(rec)

	h := models.FactoryHoliday{Date: "2026-12-31", Name: "New Year's Eve"}
	if err := e.SaveHoliday(ctx, &h); err != nil {
		t.Fatalf("SaveHoliday failed: %v", err)
	}
	if err := e.DeleteHoliday(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHoliday failed: %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(rec.events))
	}
	if rec.events[0].Op != OpSave || rec.events[1].Op != OpDelete {
		t.Errorf("Unexpected ops: %+v", rec.events)
	}
	if rec.events[0].Entity != EntityTypeHoliday || rec.events[0].ID != h.ID {
		t.Errorf("Unexpected event: %+v", rec.events[0])
	}
	if rec.events[0].Origin != e.Origin() {
		t.Error("Events should carry the engine origin")
	}
}

type recordingNotifier struct {
	events []ChangeEvent
}

func (r *recordingNotifier) Notify(ev ChangeEvent) {
	r.events = append(r.events, ev)
}
