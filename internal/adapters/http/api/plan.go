// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/planner"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
)

// PlanHandler handles planning requests.
type PlanHandler struct {
	deps Dependencies
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps Dependencies) *PlanHandler {
	return &PlanHandler{deps: deps}
}

// planRequest mirrors the JSON schema for POST /api/v1/plan.
type planRequest struct {
	ProjectID    string               `json:"project_id"`
	BlockID      string               `json:"block_id"`
	WindowStart  string               `json:"window_start"`
	WindowEnd    string               `json:"window_end"`
	Requirements []requirementPayload `json:"requirements"`
	Preferences  *preferencesPayload  `json:"preferences,omitempty"`
}

type requirementPayload struct {
	SkillID  string  `json:"skill_id"`
	MinLevel int     `json:"min_level"`
	Hours    float64 `json:"hours"`
	Priority string  `json:"priority,omitempty"`
}

// preferencesPayload uses pointers so an absent field stays distinguishable
// from an explicit false or zero all the way into the service, where the
// configured defaults fill the gaps.
type preferencesPayload struct {
	PreferredTeams         []string `json:"preferred_teams,omitempty"`
	ExcludeResources       []string `json:"exclude_resources,omitempty"`
	MaxUtilizationPct      *float64 `json:"max_utilization_pct,omitempty"`
	AllowOverallocation    *bool    `json:"allow_overallocation,omitempty"`
	PrioritizeSkillLevel   *bool    `json:"prioritize_skill_level,omitempty"`
	PrioritizeAvailability *bool    `json:"prioritize_availability,omitempty"`
}

func (p *preferencesPayload) toOverrides() service.PreferenceOverrides {
	if p == nil {
		return service.PreferenceOverrides{}
	}
	return service.PreferenceOverrides{
		PreferredTeams:         p.PreferredTeams,
		ExcludeResources:       p.ExcludeResources,
		MaxUtilizationPct:      p.MaxUtilizationPct,
		AllowOverallocation:    p.AllowOverallocation,
		PrioritizeSkillLevel:   p.PrioritizeSkillLevel,
		PrioritizeAvailability: p.PrioritizeAvailability,
	}
}

func (r planRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ProjectID) == "":
		return errors.New("missing project_id")
	case strings.TrimSpace(r.WindowStart) == "":
		return errors.New("missing window_start")
	case strings.TrimSpace(r.WindowEnd) == "":
		return errors.New("missing window_end")
	}
	for _, req := range r.Requirements {
		switch {
		case strings.TrimSpace(req.SkillID) == "":
			return errors.New("requirement missing skill_id")
		case req.MinLevel < 1 || req.MinLevel > 10:
			return errors.New("requirement min_level must be 1-10")
		case req.Hours <= 0:
			return errors.New("requirement hours must be positive")
		}
	}
	return nil
}

type planEntryPayload struct {
	ResourceID              string  `json:"resource_id"`
	ResourceName            string  `json:"resource_name"`
	SkillID                 string  `json:"skill_id"`
	WeekIndex               int     `json:"week_index"`
	WeekStart               string  `json:"week_start"`
	Hours                   float64 `json:"hours"`
	ResultingUtilizationPct float64 `json:"resulting_utilization_pct"`
	Overallocated           bool    `json:"overallocated"`
}

type requirementOutcomePayload struct {
	SkillID        string  `json:"skill_id"`
	MinLevel       int     `json:"min_level"`
	Hours          float64 `json:"hours"`
	Priority       string  `json:"priority,omitempty"`
	CanBeFulfilled bool    `json:"can_be_fulfilled"`
	ResourceID     string  `json:"resource_id,omitempty"`
	ResourceName   string  `json:"resource_name,omitempty"`
	CompositeScore float64 `json:"composite_score"`
	AllocatedHours float64 `json:"allocated_hours"`
}

type planSummaryPayload struct {
	TotalRequiredHours   float64  `json:"total_required_hours"`
	TotalAllocatedHours  float64  `json:"total_allocated_hours"`
	FulfillmentPct       float64  `json:"fulfillment_pct"`
	ResourcesUsed        int      `json:"resources_used"`
	OverallocatedEntries int      `json:"overallocated_entries"`
	Warnings             []string `json:"warnings"`
}

type planResponse struct {
	WindowStart  string                      `json:"window_start"`
	WindowEnd    string                      `json:"window_end"`
	Weeks        int                         `json:"weeks"`
	Entries      []planEntryPayload          `json:"entries"`
	Requirements []requirementOutcomePayload `json:"requirements"`
	Summary      planSummaryPayload          `json:"summary"`
}

// HandlePlan handles POST /api/v1/plan requests.
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.plan"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req planRequest
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

	requirements := make([]model.SkillRequirement, len(req.Requirements))
	for i, rp := range req.Requirements {
		requirements[i] = model.SkillRequirement{
			SkillID:  rp.SkillID,
			MinLevel: rp.MinLevel,
			Hours:    rp.Hours,
			Priority: model.Priority(rp.Priority),
		}
	}

	plan, err := h.deps.PlanAllocation(r.Context(), service.PlanRequest{
		ProjectID:    req.ProjectID,
		BlockID:      req.BlockID,
		WindowStart:  start,
		WindowEnd:    end,
		Requirements: requirements,
		Preferences:  req.Preferences.toOverrides(),
	})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "invalid_range", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, renderPlan(plan))
}

func renderPlan(p *planner.Plan) planResponse {
	resp := planResponse{
		WindowStart: p.WindowStart.Format(time.RFC3339),
		WindowEnd:   p.WindowEnd.Format(time.RFC3339),
		Weeks:       len(p.Weeks),
		Entries:     make([]planEntryPayload, 0, len(p.Entries)),
		Summary: planSummaryPayload{
			TotalRequiredHours:   p.Summary.TotalRequiredHours,
			TotalAllocatedHours:  p.Summary.TotalAllocatedHours,
			FulfillmentPct:       p.Summary.FulfillmentPct,
			ResourcesUsed:        p.Summary.ResourcesUsed,
			OverallocatedEntries: p.Summary.OverallocatedEntries,
			Warnings:             p.Summary.Warnings,
		},
	}
	if resp.Summary.Warnings == nil {
		resp.Summary.Warnings = []string{}
	}
	for _, e := range p.Entries {
		resp.Entries = append(resp.Entries, planEntryPayload{
			ResourceID:              e.ResourceID,
			ResourceName:            e.ResourceName,
			SkillID:                 e.SkillID,
			WeekIndex:               e.Week.Index,
			WeekStart:               e.Week.Start.Format(time.RFC3339),
			Hours:                   e.Hours,
			ResultingUtilizationPct: e.ResultingUtilizationPct,
			Overallocated:           e.Overallocated,
		})
	}
	for _, o := range p.Requirements {
		resp.Requirements = append(resp.Requirements, requirementOutcomePayload{
			SkillID:        o.Requirement.SkillID,
			MinLevel:       o.Requirement.MinLevel,
			Hours:          o.Requirement.Hours,
			Priority:       string(o.Requirement.Priority),
			CanBeFulfilled: o.CanBeFulfilled,
			ResourceID:     o.ResourceID,
			ResourceName:   o.ResourceName,
			CompositeScore: o.CompositeScore,
			AllocatedHours: o.AllocatedHours,
		})
	}
	return resp
}
