package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/storage"
)

// bulkRequest is the body of every /api/bulk endpoint
type bulkRequest struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

func (r *Router) registerOperationRoutes(api *mux.Router) {
	e := r.engine

	r.admin(api, "/bulk/jobs", r.bulk(e.BulkUpdateJobField), "POST")
	r.admin(api, "/bulk/technicians", r.bulk(e.BulkUpdateTechnicianField), "POST")
	r.admin(api, "/bulk/costs", r.bulk(e.BulkUpdateCostField), "POST")
	r.admin(api, "/bulk/pm-plans", r.bulk(e.BulkUpdatePMPlanField), "POST")
	r.admin(api, "/bulk/technician-category", r.renameTechnicianCategory, "POST")

	r.write(api, "/budgets/seed", r.seedBudgets, "POST")
	r.admin(api, "/budgets/cleanup", r.cleanupBudgets, "POST")
	r.admin(api, "/daily-expenses/cleanup", r.cleanupExpenses, "POST")

	r.admin(api, "/backup", r.backup, "GET")
	r.admin(api, "/restore", r.restore, "POST")
	r.admin(api, "/archive/{year}", r.archive, "GET")
}

// nextJobID serves GET /api/jobs/next-id?type=&date=
func (r *Router) nextJobID(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	date := q.Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	id, err := r.engine.GenerateNextJobID(req.Context(), q.Get("type"), date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"jobNumber": id})
}

func (r *Router) bulk(update func(ctx context.Context, field, oldValue, newValue string) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body bulkRequest
		if !decodeBody(w, req, &body) {
			return
		}
		if body.Field == "" || body.OldValue == "" {
			respondError(w, http.StatusBadRequest, "field and oldValue are required")
			return
		}

		n, err := update(req.Context(), body.Field, body.OldValue, body.NewValue)
		if err != nil {
			r.respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"updated": n})
	}
}

func (r *Router) renameTechnicianCategory(w http.ResponseWriter, req *http.Request) {
	var body bulkRequest
	if !decodeBody(w, req, &body) {
		return
	}
	if body.OldValue == "" {
		respondError(w, http.StatusBadRequest, "oldValue is required")
		return
	}

	res, err := r.engine.RenameTechnicianCategory(req.Context(), body.OldValue, body.NewValue)
	if err != nil {
		r.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (r *Router) seedBudgets(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Year int `json:"year"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.Year <= 0 {
		respondError(w, http.StatusBadRequest, "year is required")
		return
	}

	n, err := r.engine.SeedBudgets(req.Context(), body.Year)
	if err != nil {
		r.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"created": n})
}

func (r *Router) cleanupBudgets(w http.ResponseWriter, req *http.Request) {
	var body struct {
		KeepFromYear int `json:"keepFromYear"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.KeepFromYear <= 0 {
		respondError(w, http.StatusBadRequest, "keepFromYear is required")
		return
	}

	n, err := r.engine.CleanupOldBudgets(req.Context(), body.KeepFromYear)
	if err != nil {
		r.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (r *Router) cleanupExpenses(w http.ResponseWriter, req *http.Request) {
	var body struct {
		BeforeYear int `json:"beforeYear"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.BeforeYear <= 0 {
		respondError(w, http.StatusBadRequest, "beforeYear is required")
		return
	}

	n, err := r.engine.CleanupHistoricalExpenses(req.Context(), body.BeforeYear)
	if err != nil {
		r.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// backup streams a full backup. With ?store=true a copy is also kept in the
// backup sink.
func (r *Router) backup(w http.ResponseWriter, req *http.Request) {
	var buf bytes.Buffer
	backup, err := r.engine.WriteBackup(req.Context(), &buf)
	if err != nil {
		r.respondEngineError(w, err)
		return
	}

	name := storage.BackupName(backup.Timestamp)
	if req.URL.Query().Get("store") == "true" && r.sink != nil {
		if err := r.sink.Put(req.Context(), name, buf.Bytes()); err != nil {
			r.log.Error("Failed to store backup", zap.String("name", name), zap.Error(err))
			respondError(w, http.StatusBadGateway, "Failed to store backup")
			return
		}
		w.Header().Set("X-Backup-Location", r.sink.Location(name))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "maintdesk-backup-"+backup.Timestamp.Format("20060102-150405")+".json"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (r *Router) restore(w http.ResponseWriter, req *http.Request) {
	res, err := r.engine.RestoreBackup(req.Context(), req.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// archive writes the year's jobs to the backup sink, then deletes them
func (r *Router) archive(w http.ResponseWriter, req *http.Request) {
	year, err := strconv.Atoi(mux.Vars(req)["year"])
	if err != nil || year <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid year")
		return
	}
	if r.sink == nil {
		respondError(w, http.StatusServiceUnavailable, "No archive storage configured")
		return
	}

	name := storage.ArchiveName(year)
	n, err := r.engine.ArchiveYear(req.Context(), year, storage.NewObjectWriter(req.Context(), r.sink, name))
	if err != nil && n == 0 {
		r.respondEngineError(w, err)
		return
	}

	body := map[string]interface{}{
		"year":     year,
		"archived": n,
		"location": r.sink.Location(name),
	}
	if err != nil {
		body["warning"] = err.Error()
		respondJSON(w, http.StatusAccepted, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
