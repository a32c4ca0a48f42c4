// Package model contains domain models passed between layers.
package model

import "time"

// Resource represents a staff member that can be allocated to project work.
type Resource struct {
	ID             string
	Name           string
	Team           string
	EmploymentType string
	// WeeklyCapacityHours is the resource's capacity per week. It is
	// constant across weeks and authoritative for the planner.
	WeeklyCapacityHours float64
	Active              bool
	Skills              []SkillLevel
}

// SkillLevel pairs a skill with a proficiency level from 1 to 10.
type SkillLevel struct {
	SkillID string
	Level   int
}

// LevelFor returns the resource's proficiency for a skill, and whether the
// resource carries the skill at all.
func (r *Resource) LevelFor(skillID string) (int, bool) {
	for _, s := range r.Skills {
		if s.SkillID == skillID {
			return s.Level, true
		}
	}
	return 0, false
}

// Skill is a catalog entry referenced by requirements and resource skills.
type Skill struct {
	ID       string
	Code     string
	Category string
}

// Allocation is a persisted assignment of hours to a resource for one week
// of one project block. At most one row exists per
// (BlockID, ResourceID, WeekStart); that triple is the upsert key.
type Allocation struct {
	ID         string
	ProjectID  string
	BlockID    string
	ResourceID string
	WeekStart  time.Time
	Hours      float64
}

// Priority tags a requirement for display. It does not reorder planning;
// requirements are processed strictly in input order.
type Priority string

// Priority values.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// SkillRequirement is a request-scoped need for a skill at a minimum level
// for a total number of hours. It is never persisted.
type SkillRequirement struct {
	SkillID  string
	MinLevel int
	Hours    float64
	Priority Priority
}

// Preferences tune matching and planning for one request.
type Preferences struct {
	PreferredTeams         []string
	ExcludeResources       []string
	MaxUtilizationPct      float64
	AllowOverallocation    bool
	PrioritizeSkillLevel   bool
	PrioritizeAvailability bool
}

// DefaultPreferences returns the documented preference defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		MaxUtilizationPct:      80,
		AllowOverallocation:    false,
		PrioritizeSkillLevel:   true,
		PrioritizeAvailability: true,
	}
}

// ApplyEntry is one caller-approved allocation to persist.
type ApplyEntry struct {
	ResourceID string
	WeekStart  time.Time
	Hours      float64
}

// AppliedAllocation is a persisted allocation joined with display data for
// the caller's convenience.
type AppliedAllocation struct {
	Allocation
	ResourceName string
	Team         string
}
