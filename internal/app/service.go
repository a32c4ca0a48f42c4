// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	repository "github.com/WGhaly/pmprg-system-sub001/internal/adapters/repository"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/planner"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/validation"
	"github.com/WGhaly/pmprg-system-sub001/pkg/logger"
	"github.com/WGhaly/pmprg-system-sub001/pkg/metrics"
)

// Service implements the allocation engine operations on top of a Store.
type Service struct {
	store repository.Store

	// Configuration
	defaultPrefs        model.Preferences
	capacityBasis       validation.Basis
	standardWeeklyHours float64

	// Stats
	plansComputed  atomic.Int64
	plansApplied   atomic.Int64
	rowsApplied    atomic.Int64
	validationsRun atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing catalog/allocation store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultPreferences sets the preference defaults applied when a
// request leaves them unspecified. A non-positive MaxUtilizationPct keeps
// the documented default.
func WithDefaultPreferences(prefs model.Preferences) Option {
	return func(s *Service) {
		if prefs.MaxUtilizationPct <= 0 {
			prefs.MaxUtilizationPct = s.defaultPrefs.MaxUtilizationPct
		}
		s.defaultPrefs = prefs
	}
}

// WithCapacityBasis selects the validator's capacity definition.
func WithCapacityBasis(basis validation.Basis) Option {
	return func(s *Service) {
		s.capacityBasis = basis
	}
}

// WithStandardWeeklyHours overrides the validator's standard week.
func WithStandardWeeklyHours(hours float64) Option {
	return func(s *Service) {
		if hours > 0 {
			s.standardWeeklyHours = hours
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultPrefs:        model.DefaultPreferences(),
		capacityBasis:       validation.BasisStandardWeek,
		standardWeeklyHours: validation.StandardWeeklyHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// PreferenceOverrides carries per-request preference fields. Nil pointers
// mean "not specified" and fall back to the service defaults, which is how
// the configured defaults survive requests that omit the preferences block.
type PreferenceOverrides struct {
	PreferredTeams         []string
	ExcludeResources       []string
	MaxUtilizationPct      *float64
	AllowOverallocation    *bool
	PrioritizeSkillLevel   *bool
	PrioritizeAvailability *bool
}

// PlanRequest describes one planning call.
type PlanRequest struct {
	ProjectID    string
	BlockID      string
	WindowStart  time.Time
	WindowEnd    time.Time
	Requirements []model.SkillRequirement
	Preferences  PreferenceOverrides
}

// PlanAllocation fetches the candidate pool and existing commitments once,
// then runs the pure matching and planning pass over them.
func (s *Service) PlanAllocation(ctx context.Context, req PlanRequest) (*planner.Plan, error) {
	started := time.Now()

	weeks, err := schedule.Weeks(req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, err
	}
	prefs := s.resolvePreferences(req.Preferences)

	pool, err := s.store.ListActiveResources(ctx, repository.Filter{
		Teams:      prefs.PreferredTeams,
		ExcludeIDs: prefs.ExcludeResources,
	})
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	ids := make([]string, len(pool))
	for i, r := range pool {
		ids[i] = r.ID
	}
	allocations, err := s.store.ListAllocations(ctx, ids, req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}

	existing := schedule.AggregateAllocations(req.WindowStart, len(weeks), allocations)
	snaps := availability.Build(pool, existing, len(weeks))
	plan := planner.Build(weeks, pool, snaps, req.Requirements, prefs)

	s.plansComputed.Add(1)
	durationMs := float64(time.Since(started).Milliseconds())
	metrics.RecordPlanComputed(len(plan.Entries), plan.Summary.FulfillmentPct, durationMs)
	metrics.RecordPlanWarnings(len(plan.Summary.Warnings))
	metrics.RecordOverallocatedEntries(plan.Summary.OverallocatedEntries)
	for _, o := range plan.Requirements {
		if !o.CanBeFulfilled {
			metrics.RecordUnfulfillableRequirement()
		}
	}

	s.logger.Info(ctx, "plan computed",
		logger.String("project", req.ProjectID),
		logger.Int("requirements", len(req.Requirements)),
		logger.Int("entries", len(plan.Entries)),
		logger.Float64("fulfillmentPct", plan.Summary.FulfillmentPct),
		logger.Int("warnings", len(plan.Summary.Warnings)),
	)
	return plan, nil
}

// ApplyRequest describes one caller-approved plan to persist.
type ApplyRequest struct {
	ProjectID string
	BlockID   string
	Entries   []model.ApplyEntry
}

// ApplyPlan persists the entries atomically; either every row lands or none
// does. Concurrent applies on overlapping keys race last-write-wins; callers
// needing stronger guarantees serialize per block externally.
func (s *Service) ApplyPlan(ctx context.Context, req ApplyRequest) ([]model.AppliedAllocation, error) {
	started := time.Now()

	for _, e := range req.Entries {
		if e.Hours < 0 {
			return nil, fmt.Errorf("%w: negative hours for resource %s", ErrInvalidApply, e.ResourceID)
		}
	}

	applied, err := s.store.ApplyPlan(ctx, req.ProjectID, req.BlockID, req.Entries)
	if err != nil {
		metrics.RecordApplyFailure()
		s.logger.Error(ctx, "plan apply rolled back",
			logger.String("project", req.ProjectID),
			logger.String("block", req.BlockID),
			logger.Error(err),
		)
		return nil, err
	}

	s.plansApplied.Add(1)
	s.rowsApplied.Add(int64(len(applied)))
	metrics.RecordPlanApplied(len(applied), float64(time.Since(started).Milliseconds()))

	s.logger.Info(ctx, "plan applied",
		logger.String("project", req.ProjectID),
		logger.String("block", req.BlockID),
		logger.Int("rows", len(applied)),
	)
	return applied, nil
}

// ValidateRequest describes one capacity audit.
type ValidateRequest struct {
	ProjectID   string
	WindowStart time.Time
	WindowEnd   time.Time
	// Proposed maps block id -> resource id -> hours.
	Proposed map[string]map[string]float64
}

// ValidateCapacity re-derives utilization for an arbitrary proposed
// allocation map and reports conflicts. It never mutates state.
func (s *Service) ValidateCapacity(ctx context.Context, req ValidateRequest) (*validation.Result, error) {
	idSet := make(map[string]struct{})
	for _, byResource := range req.Proposed {
		for id := range byResource {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	resources, err := s.store.ListResourcesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	byID := make(map[string]*model.Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}

	existing, err := s.store.ListAllocations(ctx, ids, req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}

	result, err := validation.Validate(validation.Input{
		ProjectID:           req.ProjectID,
		WindowStart:         req.WindowStart,
		WindowEnd:           req.WindowEnd,
		Proposed:            req.Proposed,
		Resources:           byID,
		Existing:            existing,
		Basis:               s.capacityBasis,
		StandardWeeklyHours: s.standardWeeklyHours,
	})
	if err != nil {
		return nil, err
	}

	s.validationsRun.Add(1)
	metrics.RecordValidationRun()
	for _, c := range result.Errors {
		metrics.RecordValidationConflict(string(c.Type), string(c.Severity))
	}
	for _, c := range result.Warnings {
		metrics.RecordValidationConflict(string(c.Type), string(c.Severity))
	}

	s.logger.Info(ctx, "capacity validated",
		logger.String("project", req.ProjectID),
		logger.Bool("valid", result.IsValid),
		logger.Int("errors", len(result.Errors)),
		logger.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// ListResources exposes the active catalog for the API layer.
func (s *Service) ListResources(ctx context.Context, teams, excludeIDs []string) ([]*model.Resource, error) {
	return s.store.ListActiveResources(ctx, repository.Filter{Teams: teams, ExcludeIDs: excludeIDs})
}

// GetStats returns service counters for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"plansComputed":  s.plansComputed.Load(),
		"plansApplied":   s.plansApplied.Load(),
		"rowsApplied":    s.rowsApplied.Load(),
		"validationsRun": s.validationsRun.Load(),
	}
}

// resolvePreferences layers request overrides onto the service defaults.
// Pointer fields distinguish an explicit false or zero from absence.
func (s *Service) resolvePreferences(o PreferenceOverrides) model.Preferences {
	prefs := s.defaultPrefs
	prefs.PreferredTeams = o.PreferredTeams
	prefs.ExcludeResources = o.ExcludeResources
	if o.MaxUtilizationPct != nil && *o.MaxUtilizationPct > 0 {
		prefs.MaxUtilizationPct = *o.MaxUtilizationPct
	}
	if o.AllowOverallocation != nil {
		prefs.AllowOverallocation = *o.AllowOverallocation
	}
	if o.PrioritizeSkillLevel != nil {
		prefs.PrioritizeSkillLevel = *o.PrioritizeSkillLevel
	}
	if o.PrioritizeAvailability != nil {
		prefs.PrioritizeAvailability = *o.PrioritizeAvailability
	}
	return prefs
}
