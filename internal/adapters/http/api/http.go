// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/planner"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/validation"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlanAllocation(ctx context.Context, req service.PlanRequest) (*planner.Plan, error)
	ApplyPlan(ctx context.Context, req service.ApplyRequest) ([]model.AppliedAllocation, error)
	ValidateCapacity(ctx context.Context, req service.ValidateRequest) (*validation.Result, error)
	ListResources(ctx context.Context, teams, excludeIDs []string) ([]*model.Resource, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	planHandler      *PlanHandler
	applyHandler     *ApplyHandler
	validateHandler  *ValidateHandler
	resourcesHandler *ResourcesHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		planHandler:      NewPlanHandler(deps),
		applyHandler:     NewApplyHandler(deps),
		validateHandler:  NewValidateHandler(deps),
		resourcesHandler: NewResourcesHandler(deps),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/plan", MetricsMiddleware(s.planHandler.HandlePlan, "plan"))
	mux.HandleFunc("/api/v1/apply", MetricsMiddleware(s.applyHandler.HandleApply, "apply"))
	mux.HandleFunc("/api/v1/validate", MetricsMiddleware(s.validateHandler.HandleValidate, "validate"))
	mux.HandleFunc("/api/v1/resources", MetricsMiddleware(s.resourcesHandler.HandleListResources, "resources"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
