package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/ecktables/internal/buildinfo"
	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/metrics"
	"github.com/xelth-com/ecktables/internal/middleware"
	"github.com/xelth-com/ecktables/internal/models"
	"github.com/xelth-com/ecktables/internal/websocket"
	"go.uber.org/zap"
)

// TableRepository is the storage the REST surface needs.
type TableRepository interface {
	ListEntities(ctx context.Context, hallID string) ([]floorplan.Entity, error)
	GetTable(ctx context.Context, id string) (models.RestaurantTable, error)
	UpdatePosition(ctx context.Context, id string, u floorplan.PositionUpdate) error
	ListHalls(ctx context.Context, tenantID string) ([]models.DiningHall, error)
	GetHall(ctx context.Context, id string) (models.DiningHall, error)
}

// Deps are the collaborators of the router.
type Deps struct {
	Tables      TableRepository
	Canvas      floorplan.Canvas
	Bus         events.Bus
	Hub         *websocket.Hub
	Limiter     *middleware.RateLimiter
	Logger      *zap.Logger
	JWTSecret   string
	FrontendDir string
}

// Router wraps the mux router and its dependencies
type Router struct {
	*mux.Router
	deps Deps
	log  *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	r := &Router{
		Router: mux.NewRouter(),
		deps:   deps,
		log:    deps.Logger,
	}
	r.Use(middleware.MetricsMiddleware, middleware.LoggingMiddleware(r.log))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/status", r.limit(http.HandlerFunc(r.getStatus))).Methods("GET")
	api.Handle("/floorplan/constants", r.limit(http.HandlerFunc(r.getConstants))).Methods("GET")

	// Floor plan routes (protected when JWT_SECRET is set)
	api.Handle("/halls", r.protect(r.listHalls)).Methods("GET")
	api.Handle("/halls/{hallId}/tables", r.protect(r.listTables)).Methods("GET")
	api.Handle("/halls/{hallId}/scene", r.protect(r.getScene)).Methods("GET")
	api.Handle("/halls/{hallId}/floorplan.pdf", r.protect(r.printFloorPlan)).Methods("GET")
	api.Handle("/tables/{id}/position", r.protect(r.updatePosition)).Methods("PUT")

	// Live drag editing
	if deps.Hub != nil {
		r.Handle("/ws", r.authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(deps.Hub, w, req)
		}))).Methods("GET")
	}

	// Static files
	if deps.FrontendDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(deps.FrontendDir)))
	}

	return r
}

// protect rate limits an API route after authentication, so the limiter
// keys on the token subject when there is one
func (r *Router) protect(h http.HandlerFunc) http.Handler {
	return r.authenticate(r.limit(h))
}

// authenticate applies token auth when a secret is configured
func (r *Router) authenticate(h http.Handler) http.Handler {
	if r.deps.JWTSecret == "" {
		return h
	}
	return middleware.AuthMiddleware(r.deps.JWTSecret)(h)
}

func (r *Router) limit(h http.Handler) http.Handler {
	if r.deps.Limiter == nil {
		return h
	}
	return r.deps.Limiter.Handler(h)
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"build":  buildinfo.Get(),
	})
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
