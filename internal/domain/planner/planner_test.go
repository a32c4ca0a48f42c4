package planner_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/planner"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func fourWeeks() []schedule.Week {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	weeks, _ := schedule.Weeks(start, start.AddDate(0, 0, 28))
	return weeks
}

func poolWith(capacity float64, level int) []*model.Resource {
	return []*model.Resource{{
		ID:                  "res-1",
		Name:                "Res One",
		WeeklyCapacityHours: capacity,
		Active:              true,
		Skills:              []model.SkillLevel{{SkillID: "skill-x", Level: level}},
	}}
}

func TestBuild(t *testing.T) {
	Convey("Given a four-week window and one level-5 requirement for 80 hours", t, func() {
		weeks := fourWeeks()
		reqs := []model.SkillRequirement{{SkillID: "skill-x", MinLevel: 5, Hours: 80}}
		prefs := model.DefaultPreferences()

		Convey("When the only eligible resource is fully free at 40h/week", func() {
			pool := poolWith(40, 5)
			snaps := availability.Build(pool, nil, len(weeks))
			plan := planner.Build(weeks, pool, snaps, reqs, prefs)

			Convey("Then 20 hours land in each of the four weeks", func() {
				So(plan.Entries, ShouldHaveLength, 4)
				for i, e := range plan.Entries {
					So(e.Week.Index, ShouldEqual, i)
					So(e.Hours, ShouldEqual, 20)
					So(e.Overallocated, ShouldBeFalse)
				}
			})

			Convey("And fulfillment is 100% with no warnings", func() {
				So(plan.Summary.TotalRequiredHours, ShouldEqual, 80)
				So(plan.Summary.TotalAllocatedHours, ShouldEqual, 80)
				So(plan.Summary.FulfillmentPct, ShouldEqual, 100)
				So(plan.Summary.OverallocatedEntries, ShouldEqual, 0)
				So(plan.Summary.Warnings, ShouldBeEmpty)
				So(plan.Summary.ResourcesUsed, ShouldEqual, 1)
			})

			Convey("And the requirement outcome names the resource", func() {
				So(plan.Requirements, ShouldHaveLength, 1)
				So(plan.Requirements[0].ResourceID, ShouldEqual, "res-1")
				So(plan.Requirements[0].CanBeFulfilled, ShouldBeTrue)
				So(plan.Requirements[0].AllocatedHours, ShouldEqual, 80)
			})
		})

		Convey("When the resource already has 30h/week committed elsewhere", func() {
			pool := poolWith(40, 5)
			existing := map[string][]float64{"res-1": {30, 30, 30, 30}}
			snaps := availability.Build(pool, existing, len(weeks))
			plan := planner.Build(weeks, pool, snaps, reqs, prefs)

			Convey("Then only the 10 free hours per week are planned", func() {
				So(plan.Entries, ShouldHaveLength, 4)
				for _, e := range plan.Entries {
					So(e.Hours, ShouldEqual, 10)
					So(e.Overallocated, ShouldBeFalse)
				}
			})

			Convey("And fulfillment drops below 100% with a warning", func() {
				So(plan.Summary.TotalAllocatedHours, ShouldEqual, 40)
				So(plan.Summary.FulfillmentPct, ShouldEqual, 50)
				So(plan.Summary.Warnings, ShouldNotBeEmpty)
			})
		})

		Convey("When overallocation is allowed against 35h/week of existing load", func() {
			relaxed := prefs
			relaxed.AllowOverallocation = true
			pool := poolWith(40, 5)
			existing := map[string][]float64{"res-1": {35, 35, 35, 35}}
			snaps := availability.Build(pool, existing, len(weeks))
			plan := planner.Build(weeks, pool, snaps, reqs, relaxed)

			Convey("Then each week gets the 13 hours the 20% buffer allows", func() {
				So(plan.Entries, ShouldHaveLength, 4)
				for _, e := range plan.Entries {
					So(e.Hours, ShouldEqual, 13)
					So(e.Overallocated, ShouldBeTrue)
					So(e.ResultingUtilizationPct, ShouldEqual, 120)
				}
			})

			Convey("And the overallocation is surfaced in the summary", func() {
				So(plan.Summary.OverallocatedEntries, ShouldEqual, 4)
				So(plan.Summary.Warnings, ShouldNotBeEmpty)
			})
		})

		Convey("When no resource is eligible", func() {
			pool := poolWith(40, 3)
			snaps := availability.Build(pool, nil, len(weeks))
			plan := planner.Build(weeks, pool, snaps, reqs, prefs)

			Convey("Then the requirement is recorded as unfulfillable, not an error", func() {
				So(plan.Entries, ShouldBeEmpty)
				So(plan.Requirements[0].CanBeFulfilled, ShouldBeFalse)
				So(plan.Requirements[0].ResourceID, ShouldBeEmpty)
				So(plan.Summary.FulfillmentPct, ShouldEqual, 0)
				So(plan.Summary.Warnings, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given two requirements competing for the same resource", t, func() {
		weeks := fourWeeks()
		pool := poolWith(40, 7)
		snaps := availability.Build(pool, nil, len(weeks))
		prefs := model.DefaultPreferences()
		reqs := []model.SkillRequirement{
			{SkillID: "skill-x", MinLevel: 5, Hours: 120, Priority: model.PriorityLow},
			{SkillID: "skill-x", MinLevel: 5, Hours: 80, Priority: model.PriorityCritical},
		}

		Convey("When the plan is built", func() {
			plan := planner.Build(weeks, pool, snaps, reqs, prefs)

			Convey("Then the first requirement claims its hours before the second, regardless of priority tags", func() {
				So(plan.Requirements[0].AllocatedHours, ShouldEqual, 120)
				// 30h/week are taken, leaving 10h/week for the second requirement.
				So(plan.Requirements[1].AllocatedHours, ShouldEqual, 40)
				So(plan.Summary.TotalAllocatedHours, ShouldEqual, 160)
			})
		})
	})

	Convey("Given identical inputs", t, func() {
		weeks := fourWeeks()
		pool := []*model.Resource{
			poolWith(40, 7)[0],
			{
				ID: "res-2", Name: "Res Two", WeeklyCapacityHours: 40, Active: true,
				Skills: []model.SkillLevel{{SkillID: "skill-x", Level: 7}},
			},
		}
		prefs := model.DefaultPreferences()
		reqs := []model.SkillRequirement{
			{SkillID: "skill-x", MinLevel: 5, Hours: 60},
			{SkillID: "skill-x", MinLevel: 7, Hours: 40},
		}

		Convey("When the plan is built twice", func() {
			first := planner.Build(weeks, pool, availability.Build(pool, nil, len(weeks)), reqs, prefs)
			second := planner.Build(weeks, pool, availability.Build(pool, nil, len(weeks)), reqs, prefs)

			Convey("Then the plans are identical", func() {
				So(reflect.DeepEqual(first, second), ShouldBeTrue)
			})
		})
	})

	Convey("Given increasing required hours against fixed capacity", t, func() {
		weeks := fourWeeks()
		pool := poolWith(40, 5)
		prefs := model.DefaultPreferences()

		Convey("When plans are built for 40 and then 80 hours", func() {
			small := planner.Build(weeks, pool, availability.Build(pool, nil, len(weeks)),
				[]model.SkillRequirement{{SkillID: "skill-x", MinLevel: 5, Hours: 40}}, prefs)
			large := planner.Build(weeks, pool, availability.Build(pool, nil, len(weeks)),
				[]model.SkillRequirement{{SkillID: "skill-x", MinLevel: 5, Hours: 80}}, prefs)

			Convey("Then the entry count never decreases", func() {
				So(len(large.Entries), ShouldBeGreaterThanOrEqualTo, len(small.Entries))
				So(large.Summary.TotalAllocatedHours, ShouldBeGreaterThanOrEqualTo, small.Summary.TotalAllocatedHours)
			})
		})
	})
}
