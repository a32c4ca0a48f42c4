// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/adapters/repository"
	service "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

// ApplyHandler handles plan apply requests.
type ApplyHandler struct {
	deps Dependencies
}

// NewApplyHandler creates a new apply handler.
func NewApplyHandler(deps Dependencies) *ApplyHandler {
	return &ApplyHandler{deps: deps}
}

// applyRequest mirrors the JSON schema for POST /api/v1/apply.
type applyRequest struct {
	ProjectID string              `json:"project_id"`
	BlockID   string              `json:"block_id"`
	Entries   []applyEntryPayload `json:"entries"`
}

type applyEntryPayload struct {
	ResourceID string  `json:"resource_id"`
	WeekStart  string  `json:"week_start"`
	Hours      float64 `json:"hours"`
}

func (r applyRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ProjectID) == "":
		return errors.New("missing project_id")
	case strings.TrimSpace(r.BlockID) == "":
		return errors.New("missing block_id")
	case len(r.Entries) == 0:
		return errors.New("entries must not be empty")
	}
	for _, e := range r.Entries {
		switch {
		case strings.TrimSpace(e.ResourceID) == "":
			return errors.New("entry missing resource_id")
		case strings.TrimSpace(e.WeekStart) == "":
			return errors.New("entry missing week_start")
		case e.Hours < 0:
			return errors.New("entry hours must not be negative")
		}
	}
	return nil
}

type appliedAllocationPayload struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	BlockID      string  `json:"block_id"`
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Team         string  `json:"team,omitempty"`
	WeekStart    string  `json:"week_start"`
	Hours        float64 `json:"hours"`
}

type applyResponse struct {
	Applied []appliedAllocationPayload `json:"applied"`
}

// HandleApply handles POST /api/v1/apply requests.
func (h *ApplyHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	const op = "api.apply"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	entries := make([]model.ApplyEntry, len(req.Entries))
	for i, e := range req.Entries {
		weekStart, err := parseDate(e.WeekStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		entries[i] = model.ApplyEntry{
			ResourceID: e.ResourceID,
			WeekStart:  weekStart,
			Hours:      e.Hours,
		}
	}

	applied, err := h.deps.ApplyPlan(r.Context(), service.ApplyRequest{
		ProjectID: req.ProjectID,
		BlockID:   req.BlockID,
		Entries:   entries,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrResourceNotFound):
			writeError(w, http.StatusNotFound, "resource_not_found", Wrap(op, err))
		case errors.Is(err, service.ErrInvalidApply):
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	resp := applyResponse{Applied: make([]appliedAllocationPayload, 0, len(applied))}
	for _, a := range applied {
		resp.Applied = append(resp.Applied, appliedAllocationPayload{
			ID:           a.ID,
			ProjectID:    a.ProjectID,
			BlockID:      a.BlockID,
			ResourceID:   a.ResourceID,
			ResourceName: a.ResourceName,
			Team:         a.Team,
			WeekStart:    a.WeekStart.Format(time.RFC3339),
			Hours:        a.Hours,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
