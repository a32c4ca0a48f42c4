// Package availability derives per-week available hours and utilization for
// a candidate resource pool. Pure; no side effects.
package availability

import (
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

// Snapshot holds one resource's week-by-week availability over a window.
type Snapshot struct {
	Resource *model.Resource
	// Existing holds already-allocated hours per week bucket.
	Existing []float64
	// Available holds max(0, capacity - existing) per week bucket.
	Available []float64
}

// Build computes snapshots for every resource in the pool. existing maps
// resource id to per-bucket allocated hours (missing resources have none).
func Build(pool []*model.Resource, existing map[string][]float64, weekCount int) map[string]*Snapshot {
	out := make(map[string]*Snapshot, len(pool))
	for _, r := range pool {
		s := &Snapshot{
			Resource:  r,
			Existing:  make([]float64, weekCount),
			Available: make([]float64, weekCount),
		}
		if alloc, ok := existing[r.ID]; ok {
			copy(s.Existing, alloc)
		}
		for i := 0; i < weekCount; i++ {
			avail := r.WeeklyCapacityHours - s.Existing[i]
			if avail < 0 {
				avail = 0
			}
			s.Available[i] = avail
		}
		out[r.ID] = s
	}
	return out
}

// Utilization returns existing allocated hours over capacity for one week,
// as a fraction. Zero-capacity resources report full utilization.
func (s *Snapshot) Utilization(week int) float64 {
	if s.Resource.WeeklyCapacityHours <= 0 {
		return 1
	}
	return s.Existing[week] / s.Resource.WeeklyCapacityHours
}

// TotalAvailable sums available hours across the whole window. Used as a
// coarse single-number fulfillment test.
func (s *Snapshot) TotalAvailable() float64 {
	var total float64
	for _, h := range s.Available {
		total += h
	}
	return total
}

// Weeks returns the number of buckets covered by the snapshot.
func (s *Snapshot) Weeks() int {
	return len(s.Available)
}
