// Package schedule converts planning windows into week buckets and
// aggregates existing allocations onto the bucket grid.
package schedule

import (
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

// WeekDuration is the length of one accounting bucket.
const WeekDuration = 7 * 24 * time.Hour

// Week is one 7-day bucket anchored at the planning window's start date.
// The final bucket of a window may cover fewer calendar days but is still
// treated as a full capacity week.
type Week struct {
	Index int
	Start time.Time
	End   time.Time
}

// Weeks splits [start, end) into ordered, contiguous 7-day buckets.
// The count is ceil((end-start)/7d). Returns ErrInvalidRange when end is
// not after start.
func Weeks(start, end time.Time) ([]Week, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	span := end.Sub(start)
	count := int((span + WeekDuration - 1) / WeekDuration)
	weeks := make([]Week, count)
	for i := 0; i < count; i++ {
		ws := start.Add(time.Duration(i) * WeekDuration)
		weeks[i] = Week{Index: i, Start: ws, End: ws.Add(WeekDuration)}
	}
	return weeks, nil
}

// BucketIndex maps a date onto the window's bucket grid using floor
// arithmetic, so allocations that are not exactly aligned to a bucket start
// still land in the covering bucket. Dates before windowStart return -1;
// the caller bounds-checks against the window's week count.
func BucketIndex(windowStart, t time.Time) int {
	if t.Before(windowStart) {
		return -1
	}
	return int(t.Sub(windowStart) / WeekDuration)
}

// AggregateAllocations sums allocation hours per resource per bucket.
// Allocations outside the window's bucket grid are ignored.
func AggregateAllocations(windowStart time.Time, weekCount int, allocations []model.Allocation) map[string][]float64 {
	out := make(map[string][]float64)
	for _, a := range allocations {
		idx := BucketIndex(windowStart, a.WeekStart)
		if idx < 0 || idx >= weekCount {
			continue
		}
		buckets, ok := out[a.ResourceID]
		if !ok {
			buckets = make([]float64, weekCount)
			out[a.ResourceID] = buckets
		}
		buckets[idx] += a.Hours
	}
	return out
}
