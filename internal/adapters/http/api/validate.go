// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/validation"
)

// ValidateHandler handles capacity validation requests.
type ValidateHandler struct {
	deps Dependencies
}

// NewValidateHandler creates a new validate handler.
func NewValidateHandler(deps Dependencies) *ValidateHandler {
	return &ValidateHandler{deps: deps}
}

// validateRequest mirrors the JSON schema for POST /api/v1/validate.
// Proposed maps block id -> resource id -> hours.
type validateRequest struct {
	ProjectID   string                        `json:"project_id"`
	WindowStart string                        `json:"window_start"`
	WindowEnd   string                        `json:"window_end"`
	Proposed    map[string]map[string]float64 `json:"proposed"`
}

func (r validateRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ProjectID) == "":
		return errors.New("missing project_id")
	case strings.TrimSpace(r.WindowStart) == "":
		return errors.New("missing window_start")
	case strings.TrimSpace(r.WindowEnd) == "":
		return errors.New("missing window_end")
	case len(r.Proposed) == 0:
		return errors.New("proposed must not be empty")
	}
	return nil
}

type conflictPayload struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	ResourceID string `json:"resource_id"`
	Message    string `json:"message"`
}

type resourceReportPayload struct {
	ResourceID       string  `json:"resource_id"`
	ProposedHours    float64 `json:"proposed_hours"`
	ExistingHours    float64 `json:"existing_hours"`
	TotalHours       float64 `json:"total_hours"`
	MaxCapacityHours float64 `json:"max_capacity_hours"`
	UtilizationPct   float64 `json:"utilization_pct"`
}

type validateResponse struct {
	IsValid               bool                    `json:"is_valid"`
	Errors                []conflictPayload       `json:"errors"`
	Warnings              []conflictPayload       `json:"warnings"`
	Suggestions           []conflictPayload       `json:"suggestions"`
	Resources             []resourceReportPayload `json:"resources"`
	ProjectUtilizationPct float64                 `json:"project_utilization_pct"`
	Notes                 []string                `json:"notes"`
}

// HandleValidate handles POST /api/v1/validate requests.
func (h *ValidateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	start, err := parseDate(req.WindowStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	end, err := parseDate(req.WindowEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.ValidateCapacity(r.Context(), service.ValidateRequest{
		ProjectID:   req.ProjectID,
		WindowStart: start,
		WindowEnd:   end,
		Proposed:    req.Proposed,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "invalid_range", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, renderValidation(result))
}

func renderValidation(res *validation.Result) validateResponse {
	resp := validateResponse{
		IsValid:               res.IsValid,
		Errors:                renderConflicts(res.Errors),
		Warnings:              renderConflicts(res.Warnings),
		Suggestions:           renderConflicts(res.Suggestions),
		Resources:             make([]resourceReportPayload, 0, len(res.Resources)),
		ProjectUtilizationPct: res.ProjectUtilizationPct,
		Notes:                 res.Notes,
	}
	if resp.Notes == nil {
		resp.Notes = []string{}
	}
	for _, rr := range res.Resources {
		resp.Resources = append(resp.Resources, resourceReportPayload{
			ResourceID:       rr.ResourceID,
			ProposedHours:    rr.ProposedHours,
			ExistingHours:    rr.ExistingHours,
			TotalHours:       rr.TotalHours,
			MaxCapacityHours: rr.MaxCapacityHours,
			UtilizationPct:   rr.UtilizationPct,
		})
	}
	return resp
}

func renderConflicts(conflicts []validation.Conflict) []conflictPayload {
	out := make([]conflictPayload, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, conflictPayload{
			Type:       string(c.Type),
			Severity:   string(c.Severity),
			ResourceID: c.ResourceID,
			Message:    c.Message,
		})
	}
	return out
}
