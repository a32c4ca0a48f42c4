// Package repository defines the catalog and allocation store interface and
// its SQLite implementation.
package repository

import (
	"context"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

// Filter narrows the active resource listing.
type Filter struct {
	// Teams restricts results to the given home teams when non-empty.
	Teams []string
	// ExcludeIDs drops specific resources from the listing.
	ExcludeIDs []string
}

// Store provides read/write access to the resource catalog and the
// persisted allocation state.
type Store interface {
	// ListActiveResources returns active resources with their skill levels,
	// in a stable order.
	ListActiveResources(ctx context.Context, filter Filter) ([]*model.Resource, error)

	// ListResourcesByIDs returns the named resources (active or not),
	// skipping unknown ids.
	ListResourcesByIDs(ctx context.Context, ids []string) ([]*model.Resource, error)

	// ListAllocations returns allocations for the given resources with
	// week starts inside [windowStart, windowEnd).
	ListAllocations(ctx context.Context, resourceIDs []string, windowStart, windowEnd time.Time) ([]model.Allocation, error)

	// ApplyPlan upserts the entries for one project block in a single
	// transaction. Each entry is keyed by (blockID, resourceID, weekStart);
	// existing rows get their hours replaced, last write wins. A missing or
	// inactive resource aborts the whole batch with ErrResourceNotFound.
	ApplyPlan(ctx context.Context, projectID, blockID string, entries []model.ApplyEntry) ([]model.AppliedAllocation, error)
}
