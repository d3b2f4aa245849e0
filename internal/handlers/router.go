package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/buildinfo"
	"github.com/xelth-com/maintdesk/internal/middleware"
	"github.com/xelth-com/maintdesk/internal/models"
	"github.com/xelth-com/maintdesk/internal/storage"
	"github.com/xelth-com/maintdesk/internal/sync"
	"github.com/xelth-com/maintdesk/internal/websocket"
)

// Router wraps the mux router and the sync engine
type Router struct {
	*mux.Router
	engine *sync.SyncEngine
	hub    *websocket.Hub
	sink   storage.Sink
	log    *zap.Logger

	authenticated func(http.Handler) http.Handler
	adminOnly     func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router with all routes. An empty jwtSecret
// leaves mutating routes open (development only). hub and sink may be nil.
func NewRouter(engine *sync.SyncEngine, hub *websocket.Hub, sink storage.Sink, jwtSecret string, log *zap.Logger) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		engine: engine,
		hub:    hub,
		sink:   sink,
		log:    log.Named("http"),
	}

	if jwtSecret == "" {
		r.log.Warn("⚠️  JWT_SECRET is not set, mutating endpoints are unauthenticated")
		open := func(next http.Handler) http.Handler { return next }
		r.authenticated, r.adminOnly = open, open
	} else {
		auth := middleware.AuthMiddleware(jwtSecret)
		admin := middleware.RequireRole(engine, models.RoleAdmin)
		r.authenticated = auth
		r.adminOnly = func(next http.Handler) http.Handler { return auth(admin(next)) }
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sync/status", r.getSyncStatus).Methods("GET")
	r.admin(api, "/sync/retry", r.retryPending, "POST")

	r.registerEntityRoutes(api)
	r.registerOperationRoutes(api)

	return r
}

// write registers a handler that requires authentication
func (r *Router) write(api *mux.Router, path string, h http.HandlerFunc, method string) {
	api.Handle(path, r.authenticated(h)).Methods(method)
}

// admin registers a handler that requires the admin role
func (r *Router) admin(api *mux.Router, path string, h http.HandlerFunc, method string) {
	api.Handle(path, r.adminOnly(h)).Methods(method)
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	server := "local"
	if r.engine.HasRemote() {
		server = "remote"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"server":  server,
		"version": buildinfo.String(),
		"started": buildinfo.StartTime,
	})
}

// getSyncStatus returns remote health and local mirror information
func (r *Router) getSyncStatus(w http.ResponseWriter, req *http.Request) {
	report := r.engine.Status(req.Context())
	body := map[string]interface{}{
		"sync": report,
	}
	if r.hub != nil {
		body["wsClients"] = r.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, body)
}

// retryPending pushes the queued local writes to the remote now instead of
// waiting for the next healthy ping
func (r *Router) retryPending(w http.ResponseWriter, req *http.Request) {
	res, err := r.engine.RetryPending(req.Context())
	if err != nil {
		r.log.Error("Pending write replay failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// saveResponse is returned by every create/update endpoint. A failed remote
// write is reported as 202 with remoteSynced=false; the local copy is kept.
type saveResponse struct {
	Data         interface{} `json:"data"`
	RemoteSynced bool        `json:"remoteSynced"`
	Warning      string      `json:"warning,omitempty"`
}

// respondWrite maps a write result to a response
func (r *Router) respondWrite(w http.ResponseWriter, data interface{}, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, saveResponse{Data: data, RemoteSynced: r.engine.HasRemote()})
		return
	}
	if sync.IsRemoteWriteError(err) {
		respondJSON(w, http.StatusAccepted, saveResponse{Data: data, RemoteSynced: false, Warning: err.Error()})
		return
	}
	r.respondEngineError(w, err)
}

// respondEngineError maps engine errors to status codes
func (r *Router) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sync.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sync.ErrUnknownField):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		r.log.Error("Request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter
func queryInt(req *http.Request, key string, def int) (int, error) {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
