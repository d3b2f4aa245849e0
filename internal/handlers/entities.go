package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/maintdesk/internal/models"
)

// listEntities serves a read that may fail only on bad query parameters or
// cancellation
func (r *Router) listEntities(list func(req *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		items, err := list(req)
		if err != nil {
			if req.Context().Err() != nil {
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}

// saveEntity decodes a T from the body and passes it to save
func saveEntity[T any](r *Router, save func(ctx context.Context, item *T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var item T
		if !decodeBody(w, req, &item) {
			return
		}
		err := save(req.Context(), &item)
		r.respondWrite(w, item, err)
	}
}

// getEntity serves GET /{id}
func getEntity[T any](r *Router, get func(ctx context.Context, id string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		item, err := get(req.Context(), mux.Vars(req)["id"])
		if err != nil {
			r.respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// deleteEntity serves DELETE /{id}
func (r *Router) deleteEntity(del func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		err := del(req.Context(), id)
		r.respondWrite(w, map[string]string{"id": id}, err)
	}
}

func (r *Router) registerEntityRoutes(api *mux.Router) {
	e := r.engine

	// Jobs
	api.HandleFunc("/jobs", r.listEntities(func(req *http.Request) (interface{}, error) {
		if status := req.URL.Query().Get("status"); status != "" {
			return e.GetJobsByStatus(req.Context(), models.JobStatus(status))
		}
		year, err := queryInt(req, "year", 0)
		if err != nil {
			return nil, err
		}
		if year != 0 {
			return e.GetJobsForYear(req.Context(), year)
		}
		return e.GetJobs(req.Context())
	})).Methods("GET")
	api.HandleFunc("/jobs/next-id", r.nextJobID).Methods("GET")
	api.HandleFunc("/jobs/{id}", getEntity(r, e.GetJob)).Methods("GET")
	r.write(api, "/jobs", saveEntity(r, e.SaveJob), "POST")
	r.write(api, "/jobs/{id}", r.deleteEntity(e.DeleteJob), "DELETE")

	// Technicians
	api.HandleFunc("/technicians", r.listEntities(func(req *http.Request) (interface{}, error) {
		return e.GetTechnicians(req.Context())
	})).Methods("GET")
	api.HandleFunc("/technicians/{id}", getEntity(r, e.GetTechnician)).Methods("GET")
	r.write(api, "/technicians", saveEntity(r, e.SaveTechnician), "POST")
	r.write(api, "/technicians/{id}", r.deleteEntity(e.DeleteTechnician), "DELETE")

	// Settings
	api.HandleFunc("/settings", r.listEntities(func(req *http.Request) (interface{}, error) {
		return e.GetSettings(req.Context())
	})).Methods("GET")
	r.write(api, "/settings", saveEntity(r, e.SaveSettings), "PUT")

	// Preventive maintenance plans
	api.HandleFunc("/pm-plans", r.listEntities(func(req *http.Request) (interface{}, error) {
		year, err := queryInt(req, "year", 0)
		if err != nil {
			return nil, err
		}
		return e.GetPMPlans(req.Context(), year)
	})).Methods("GET")
	r.write(api, "/pm-plans", saveEntity(r, e.SavePMPlan), "POST")
	r.write(api, "/pm-plans/{id}", r.deleteEntity(e.DeletePMPlan), "DELETE")

	// Factory holidays
	api.HandleFunc("/holidays", r.listEntities(func(req *http.Request) (interface{}, error) {
		year, err := queryInt(req, "year", 0)
		if err != nil {
			return nil, err
		}
		return e.GetHolidays(req.Context(), year)
	})).Methods("GET")
	r.write(api, "/holidays", saveEntity(r, e.SaveHoliday), "POST")
	r.write(api, "/holidays/{id}", r.deleteEntity(e.DeleteHoliday), "DELETE")

	// User roles
	api.HandleFunc("/user-roles", r.listEntities(func(req *http.Request) (interface{}, error) {
		if email := req.URL.Query().Get("email"); email != "" {
			profile, err := e.GetUserRoleByEmail(req.Context(), email)
			if err != nil {
				return []models.UserRoleProfile{}, nil
			}
			return []models.UserRoleProfile{profile}, nil
		}
		return e.GetUserRoles(req.Context())
	})).Methods("GET")
	r.admin(api, "/user-roles", saveEntity(r, e.SaveUserRole), "POST")
	r.admin(api, "/user-roles/{id}", r.deleteEntity(e.DeleteUserRole), "DELETE")

	// Budgets
	api.HandleFunc("/budgets", r.listEntities(func(req *http.Request) (interface{}, error) {
		year, err := queryInt(req, "year", 0)
		if err != nil {
			return nil, err
		}
		return e.GetBudgets(req.Context(), year)
	})).Methods("GET")
	api.HandleFunc("/budgets/{id}", getEntity(r, e.GetBudget)).Methods("GET")
	r.write(api, "/budgets", saveEntity(r, e.SaveBudgetPlan), "POST")
	r.write(api, "/budgets/{id}", r.deleteEntity(e.DeleteBudget), "DELETE")

	// Daily expenses
	api.HandleFunc("/daily-expenses", r.listEntities(func(req *http.Request) (interface{}, error) {
		year, err := queryInt(req, "year", 0)
		if err != nil {
			return nil, err
		}
		month, err := queryInt(req, "month", -1)
		if err != nil {
			return nil, err
		}
		return e.GetDailyExpenses(req.Context(), year, month)
	})).Methods("GET")
	r.write(api, "/daily-expenses", saveEntity(r, e.SaveDailyExpense), "POST")
	r.write(api, "/daily-expenses/{id}", r.deleteEntity(e.DeleteDailyExpense), "DELETE")

	// Standard items
	api.HandleFunc("/standard-items", r.listEntities(func(req *http.Request) (interface{}, error) {
		if budgetID := req.URL.Query().Get("budgetId"); budgetID != "" {
			return e.GetStandardItemsForBudget(req.Context(), budgetID)
		}
		return e.GetStandardItems(req.Context())
	})).Methods("GET")
	r.write(api, "/standard-items", saveEntity(r, e.SaveStandardItem), "POST")
	r.write(api, "/standard-items/{id}", r.deleteEntity(e.DeleteStandardItem), "DELETE")
}
