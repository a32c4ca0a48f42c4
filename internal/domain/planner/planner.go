// Package planner turns ranked skill matches into a time-phased allocation
// plan. Requirements are processed strictly in input order against a shared
// committed-hours accumulator, so the pass is order-significant and must not
// be parallelized.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/matching"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
)

// OverallocationBuffer is the multiplier applied to raw weekly capacity when
// overallocation is allowed. Entries placed inside the buffer are still
// flagged once the resulting total exceeds raw capacity.
const OverallocationBuffer = 1.2

// Entry is one planned assignment of hours to a resource for one week.
// Entries are transient; they become Allocation rows only through an apply.
type Entry struct {
	ResourceID   string
	ResourceName string
	SkillID      string
	Week         schedule.Week
	Hours        float64
	// ResultingUtilizationPct is the resource's total committed hours for
	// the week (existing + this pass) over raw capacity, as a percentage.
	ResultingUtilizationPct float64
	Overallocated           bool
}

// RequirementOutcome records how one requirement fared, in input order.
type RequirementOutcome struct {
	Requirement    model.SkillRequirement
	CanBeFulfilled bool
	ResourceID     string
	ResourceName   string
	CompositeScore float64
	AllocatedHours float64
}

// Summary aggregates the plan for the caller.
type Summary struct {
	TotalRequiredHours   float64
	TotalAllocatedHours  float64
	FulfillmentPct       float64
	ResourcesUsed        int
	OverallocatedEntries int
	Warnings             []string
}

// Plan is the planner's full output for one window.
type Plan struct {
	WindowStart  time.Time
	WindowEnd    time.Time
	Weeks        []schedule.Week
	Entries      []Entry
	Requirements []RequirementOutcome
	Summary      Summary
}

// pass holds the mutable scheduling state for one planning run. The
// committed map accumulates across all requirements, which is what gives
// earlier requirements first claim on contested resources.
type pass struct {
	weeks     []schedule.Week
	pool      []*model.Resource
	snaps     map[string]*availability.Snapshot
	prefs     model.Preferences
	committed map[string][]float64
}

// Build plans all requirements against the pool. The pool slice order is
// the tie-break order for equal match scores.
func Build(weeks []schedule.Week, pool []*model.Resource, snaps map[string]*availability.Snapshot, reqs []model.SkillRequirement, prefs model.Preferences) *Plan {
	p := &pass{
		weeks:     weeks,
		pool:      pool,
		snaps:     snaps,
		prefs:     prefs,
		committed: make(map[string][]float64),
	}

	plan := &Plan{Weeks: weeks}
	if len(weeks) > 0 {
		plan.WindowStart = weeks[0].Start
		plan.WindowEnd = weeks[len(weeks)-1].End
	}

	for _, req := range reqs {
		outcome := p.planRequirement(req, plan)
		plan.Requirements = append(plan.Requirements, outcome)
	}

	summarize(plan)
	return plan
}

// planRequirement assigns the requirement's hours to its best-ranked
// resource, distributing a flat ceil(hours/weeks) per week subject to the
// capacity rules. Unfulfillable requirements are recorded, never an error.
func (p *pass) planRequirement(req model.SkillRequirement, plan *Plan) RequirementOutcome {
	outcome := RequirementOutcome{Requirement: req}

	result := matching.Rank(req, p.pool, p.snaps, p.prefs)
	outcome.CanBeFulfilled = result.CanBeFulfilled
	if result.Best == nil {
		return outcome
	}

	best := result.Best
	resource := best.Snapshot.Resource
	outcome.ResourceID = resource.ID
	outcome.ResourceName = resource.Name
	outcome.CompositeScore = best.CompositeScore

	hoursPerWeek := math.Ceil(req.Hours / float64(len(p.weeks)))
	capacity := resource.WeeklyCapacityHours
	maxAllowable := capacity
	if p.prefs.AllowOverallocation {
		maxAllowable = capacity * OverallocationBuffer
	}

	committed, ok := p.committed[resource.ID]
	if !ok {
		committed = make([]float64, len(p.weeks))
		p.committed[resource.ID] = committed
	}

	for _, week := range p.weeks {
		already := committed[week.Index] + best.Snapshot.Existing[week.Index]
		available := maxAllowable - already
		if available < 0 {
			available = 0
		}
		toAllocate := math.Min(hoursPerWeek, available)
		if toAllocate <= 0 {
			continue
		}

		resulting := already + toAllocate
		utilizationPct := 0.0
		if capacity > 0 {
			utilizationPct = resulting / capacity * 100
		}
		plan.Entries = append(plan.Entries, Entry{
			ResourceID:              resource.ID,
			ResourceName:            resource.Name,
			SkillID:                 req.SkillID,
			Week:                    week,
			Hours:                   toAllocate,
			ResultingUtilizationPct: utilizationPct,
			// Flag against raw capacity even when the overallocation
			// buffer is what let the hours land.
			Overallocated: resulting > capacity,
		})
		committed[week.Index] += toAllocate
		outcome.AllocatedHours += toAllocate
	}

	return outcome
}

func summarize(plan *Plan) {
	s := &plan.Summary

	for _, o := range plan.Requirements {
		s.TotalRequiredHours += o.Requirement.Hours
	}

	used := make(map[string]struct{})
	for _, e := range plan.Entries {
		s.TotalAllocatedHours += e.Hours
		used[e.ResourceID] = struct{}{}
		if e.Overallocated {
			s.OverallocatedEntries++
		}
	}
	s.ResourcesUsed = len(used)

	if s.TotalRequiredHours > 0 {
		s.FulfillmentPct = s.TotalAllocatedHours / s.TotalRequiredHours * 100
	}

	if s.OverallocatedEntries > 0 {
		s.Warnings = append(s.Warnings,
			fmt.Sprintf("%d week assignments exceed raw capacity", s.OverallocatedEntries))
	}
	if s.FulfillmentPct < 100 {
		s.Warnings = append(s.Warnings,
			fmt.Sprintf("only %.1f%% of required hours could be allocated", s.FulfillmentPct))
	}
	for _, o := range plan.Requirements {
		if !o.CanBeFulfilled {
			s.Warnings = append(s.Warnings,
				fmt.Sprintf("requirement for skill %s cannot be fully covered by a single resource", o.Requirement.SkillID))
		}
	}
}
