// Package matching filters eligible resources for a skill requirement and
// ranks them by a composite score of skill fit and availability.
package matching

import (
	"sort"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

// Scoring constants.
const (
	maxSkillLevel = 10
	maxScore      = 100
	// flatSkillScore is used when skill level is not prioritized.
	flatSkillScore = 50
	// overUtilizationPenalty is applied per week once utilization exceeds
	// the preferred ceiling and overallocation is disallowed. Averaged over
	// enough penalized weeks the availability score can go negative.
	overUtilizationPenalty = -20
	primaryWeight          = 0.7
	secondaryWeight        = 0.3
)

// Match is one eligible resource scored against a requirement.
type Match struct {
	Snapshot          *availability.Snapshot
	SkillLevel        int
	SkillScore        float64
	AvailabilityScore float64
	CompositeScore    float64
}

// Result is the ranked outcome for one requirement.
type Result struct {
	Requirement model.SkillRequirement
	// Ranked is sorted descending by composite score; ties keep pool order.
	Ranked []Match
	// Best is the top-ranked match, nil when no resource is eligible.
	Best *Match
	// CanBeFulfilled reports whether the best match alone has enough
	// available hours for the whole requirement. Allocation is
	// single-assignee: two partially-free resources are never combined.
	CanBeFulfilled bool
}

// Rank scores the pool against a requirement. Eligibility is binary: the
// resource must carry the skill at or above the required level. The pool
// slice fixes discovery order for tie-breaking.
func Rank(req model.SkillRequirement, pool []*model.Resource, snaps map[string]*availability.Snapshot, prefs model.Preferences) Result {
	res := Result{Requirement: req}

	for _, r := range pool {
		level, ok := r.LevelFor(req.SkillID)
		if !ok || level < req.MinLevel {
			continue
		}
		snap := snaps[r.ID]
		if snap == nil {
			continue
		}
		m := Match{
			Snapshot:          snap,
			SkillLevel:        level,
			SkillScore:        skillScore(level, prefs),
			AvailabilityScore: availabilityScore(snap, prefs),
		}
		m.CompositeScore = composite(m.SkillScore, m.AvailabilityScore, prefs)
		res.Ranked = append(res.Ranked, m)
	}

	// Stable sort keeps pool order for equal scores, which makes repeated
	// planning runs deterministic.
	sort.SliceStable(res.Ranked, func(i, j int) bool {
		return res.Ranked[i].CompositeScore > res.Ranked[j].CompositeScore
	})

	if len(res.Ranked) > 0 {
		res.Best = &res.Ranked[0]
		res.CanBeFulfilled = res.Best.Snapshot.TotalAvailable() >= req.Hours
	}
	return res
}

func skillScore(level int, prefs model.Preferences) float64 {
	if prefs.PrioritizeSkillLevel {
		return float64(level) / maxSkillLevel * maxScore
	}
	return flatSkillScore
}

// availabilityScore averages a per-week score: free capacity as a
// percentage, capped at 100, or a flat penalty for weeks already past the
// preferred utilization ceiling when overallocation is off the table.
func availabilityScore(snap *availability.Snapshot, prefs model.Preferences) float64 {
	weeks := snap.Weeks()
	if weeks == 0 {
		return 0
	}
	capacity := snap.Resource.WeeklyCapacityHours
	var sum float64
	for w := 0; w < weeks; w++ {
		utilizationPct := snap.Utilization(w) * 100
		if utilizationPct > prefs.MaxUtilizationPct && !prefs.AllowOverallocation {
			sum += overUtilizationPenalty
			continue
		}
		score := float64(maxScore)
		if capacity > 0 {
			score = snap.Available[w] / capacity * maxScore
			if score > maxScore {
				score = maxScore
			}
		}
		sum += score
	}
	return sum / float64(weeks)
}

func composite(skill, avail float64, prefs model.Preferences) float64 {
	if prefs.PrioritizeAvailability {
		return secondaryWeight*skill + primaryWeight*avail
	}
	return primaryWeight*skill + secondaryWeight*avail
}
