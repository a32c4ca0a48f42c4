// Package validation audits proposed allocation maps for capacity conflicts.
// It is independent of the planner and can be run against hand-edited
// allocations. Conflicts are reported as data, never as errors.
package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
)

// StandardWeeklyHours is the fixed weekly capacity used by BasisStandardWeek.
// The planner uses each resource's own capacity; the validator historically
// used this constant instead. The basis keeps that choice explicit.
const StandardWeeklyHours = 40.0

// Basis selects what counts as a resource's full weekly capacity.
type Basis int

// Capacity bases.
const (
	// BasisStandardWeek uses the fixed StandardWeeklyHours for every
	// resource, matching the historical validator behavior.
	BasisStandardWeek Basis = iota
	// BasisResourceCapacity uses each resource's configured weekly hours,
	// matching what the planner enforces.
	BasisResourceCapacity
)

// Utilization thresholds, as percentages of full capacity.
const (
	overallocationThresholdPct   = 100.0
	highUtilizationThresholdPct  = 90.0
	underutilizationThresholdPct = 60.0
	// highSeverityOverageFraction is the share of capacity the overage must
	// exceed before an overallocation is escalated from medium to high.
	highSeverityOverageFraction = 0.2
	// overlapHighSeverityProjects is the count of distinct other projects
	// above which an overlap is escalated to high severity.
	overlapHighSeverityProjects = 2
	lowProjectUtilizationPct    = 50.0
	highProjectUtilizationPct   = 90.0
)

// Severity grades a conflict.
type Severity string

// Severity values.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ConflictType names the conflict classes the validator reports.
type ConflictType string

// Conflict types.
const (
	ConflictOverallocation   ConflictType = "overallocation"
	ConflictHighUtilization  ConflictType = "high_utilization"
	ConflictProjectOverlap   ConflictType = "project_overlap"
	ConflictUnderutilization ConflictType = "underutilization"
)

// Conflict is one detected issue for one resource.
type Conflict struct {
	Type       ConflictType
	Severity   Severity
	ResourceID string
	Message    string
}

// ResourceReport is the derived utilization picture for one resource.
type ResourceReport struct {
	ResourceID       string
	ProposedHours    float64
	ExistingHours    float64
	TotalHours       float64
	MaxCapacityHours float64
	UtilizationPct   float64
}

// Input carries everything the validator needs; it consults no stores.
type Input struct {
	// ProjectID identifies the proposing project; existing allocations
	// under any other project count as overlaps.
	ProjectID   string
	WindowStart time.Time
	WindowEnd   time.Time
	// Proposed maps block id -> resource id -> hours to add in the window.
	Proposed map[string]map[string]float64
	// Resources holds the referenced resources, keyed by id. Only needed
	// for BasisResourceCapacity; missing entries fall back to the standard
	// week.
	Resources map[string]*model.Resource
	// Existing holds all in-window allocations for the referenced
	// resources, across every project.
	Existing []model.Allocation
	// Basis selects the capacity definition; zero value is the historical
	// standard week.
	Basis Basis
	// StandardWeeklyHours overrides the default constant when positive.
	StandardWeeklyHours float64
}

// Result is the full validation outcome. IsValid is false only when at
// least one error-class conflict exists; warnings and suggestions never
// invalidate a proposal.
type Result struct {
	IsValid               bool
	Errors                []Conflict
	Warnings              []Conflict
	Suggestions           []Conflict
	Resources             []ResourceReport
	ProjectUtilizationPct float64
	Notes                 []string
}

// Validate audits the proposed allocation map over the window. The only
// error path is an invalid window range; every capacity finding is data.
func Validate(in Input) (*Result, error) {
	weeks, err := schedule.Weeks(in.WindowStart, in.WindowEnd)
	if err != nil {
		return nil, err
	}
	durationWeeks := float64(len(weeks))

	standardWeek := in.StandardWeeklyHours
	if standardWeek <= 0 {
		standardWeek = StandardWeeklyHours
	}

	// Collapse the block dimension: capacity is per resource, not per block.
	proposedByResource := make(map[string]float64)
	for _, byResource := range in.Proposed {
		for resourceID, hours := range byResource {
			proposedByResource[resourceID] += hours
		}
	}

	existingByResource := make(map[string]float64)
	otherProjects := make(map[string]map[string]struct{})
	for _, a := range in.Existing {
		if a.WeekStart.Before(in.WindowStart) || !a.WeekStart.Before(in.WindowEnd) {
			continue
		}
		existingByResource[a.ResourceID] += a.Hours
		if a.ProjectID != in.ProjectID {
			set, ok := otherProjects[a.ResourceID]
			if !ok {
				set = make(map[string]struct{})
				otherProjects[a.ResourceID] = set
			}
			set[a.ProjectID] = struct{}{}
		}
	}

	resourceIDs := make([]string, 0, len(proposedByResource))
	for id := range proposedByResource {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	res := &Result{}
	var totalProposed, totalCapacity float64

	for _, id := range resourceIDs {
		weekly := standardWeek
		if in.Basis == BasisResourceCapacity {
			if r, ok := in.Resources[id]; ok && r.WeeklyCapacityHours > 0 {
				weekly = r.WeeklyCapacityHours
			}
		}
		maxCapacity := durationWeeks * weekly

		report := ResourceReport{
			ResourceID:       id,
			ProposedHours:    proposedByResource[id],
			ExistingHours:    existingByResource[id],
			MaxCapacityHours: maxCapacity,
		}
		report.TotalHours = report.ProposedHours + report.ExistingHours
		if maxCapacity > 0 {
			report.UtilizationPct = report.TotalHours / maxCapacity * 100
		}
		res.Resources = append(res.Resources, report)

		totalProposed += report.ProposedHours
		totalCapacity += maxCapacity

		classifyUtilization(res, report, maxCapacity)
		classifyOverlap(res, id, otherProjects[id])
	}

	if totalCapacity > 0 {
		res.ProjectUtilizationPct = totalProposed / totalCapacity * 100
	}
	if res.ProjectUtilizationPct < lowProjectUtilizationPct {
		res.Notes = append(res.Notes, "project is underutilizing available capacity")
	}
	if res.ProjectUtilizationPct > highProjectUtilizationPct {
		res.Notes = append(res.Notes, "project is near capacity limits")
	}

	res.IsValid = len(res.Errors) == 0
	return res, nil
}

// classifyUtilization buckets a resource into exactly one utilization class:
// overallocation (error), high utilization (warning) or underutilization
// (suggestion, only when new hours are actually proposed).
func classifyUtilization(res *Result, report ResourceReport, maxCapacity float64) {
	switch {
	case report.UtilizationPct > overallocationThresholdPct:
		overage := report.TotalHours - maxCapacity
		severity := SeverityMedium
		// Strictly greater: an overage of exactly 20% of capacity stays medium.
		if overage > highSeverityOverageFraction*maxCapacity {
			severity = SeverityHigh
		}
		res.Errors = append(res.Errors, Conflict{
			Type:       ConflictOverallocation,
			Severity:   severity,
			ResourceID: report.ResourceID,
			Message: fmt.Sprintf("allocated %.1fh against %.1fh capacity (%.1f%%)",
				report.TotalHours, maxCapacity, report.UtilizationPct),
		})
	case report.UtilizationPct > highUtilizationThresholdPct:
		res.Warnings = append(res.Warnings, Conflict{
			Type:       ConflictHighUtilization,
			Severity:   SeverityLow,
			ResourceID: report.ResourceID,
			Message:    fmt.Sprintf("utilization %.1f%% leaves little slack", report.UtilizationPct),
		})
	case report.UtilizationPct < underutilizationThresholdPct && report.ProposedHours > 0:
		res.Suggestions = append(res.Suggestions, Conflict{
			Type:       ConflictUnderutilization,
			Severity:   SeverityLow,
			ResourceID: report.ResourceID,
			Message:    fmt.Sprintf("utilization %.1f%%; resource could take on more hours", report.UtilizationPct),
		})
	}
}

// classifyOverlap reports concurrent commitments under other projects.
func classifyOverlap(res *Result, resourceID string, others map[string]struct{}) {
	if len(others) == 0 {
		return
	}
	severity := SeverityMedium
	if len(others) > overlapHighSeverityProjects {
		severity = SeverityHigh
	}
	res.Warnings = append(res.Warnings, Conflict{
		Type:       ConflictProjectOverlap,
		Severity:   severity,
		ResourceID: resourceID,
		Message:    fmt.Sprintf("resource has commitments under %d other project(s) in this window", len(others)),
	})
}
