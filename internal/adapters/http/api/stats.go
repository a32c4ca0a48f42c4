// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsProvider exposes the service's internal counters.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves service counters for quick operational checks.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a stats handler backed by provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{stats: provider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
