// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ResourcesHandler handles catalog listing requests.
type ResourcesHandler struct {
	deps Dependencies
}

// NewResourcesHandler creates a new resources handler.
func NewResourcesHandler(deps Dependencies) *ResourcesHandler {
	return &ResourcesHandler{deps: deps}
}

type resourcePayload struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Team                string              `json:"team,omitempty"`
	EmploymentType      string              `json:"employment_type,omitempty"`
	WeeklyCapacityHours float64             `json:"weekly_capacity_hours"`
	Skills              []skillLevelPayload `json:"skills"`
}

type skillLevelPayload struct {
	SkillID string `json:"skill_id"`
	Level   int    `json:"level"`
}

// HandleListResources handles GET /api/v1/resources requests. Optional
// query params: teams (comma-separated), exclude (comma-separated ids).
func (h *ResourcesHandler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	const op = "api.resources"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resources, err := h.deps.ListResources(r.Context(),
		splitParam(r.URL.Query().Get("teams")),
		splitParam(r.URL.Query().Get("exclude")),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	out := make([]resourcePayload, 0, len(resources))
	for _, res := range resources {
		p := resourcePayload{
			ID:                  res.ID,
			Name:                res.Name,
			Team:                res.Team,
			EmploymentType:      res.EmploymentType,
			WeeklyCapacityHours: res.WeeklyCapacityHours,
			Skills:              make([]skillLevelPayload, 0, len(res.Skills)),
		}
		for _, sl := range res.Skills {
			p.Skills = append(p.Skills, skillLevelPayload{SkillID: sl.SkillID, Level: sl.Level})
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func splitParam(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
