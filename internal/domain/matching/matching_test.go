package matching_test

import (
	"testing"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/matching"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func resource(id string, capacity float64, skillLevel int) *model.Resource {
	return &model.Resource{
		ID:                  id,
		Name:                id,
		WeeklyCapacityHours: capacity,
		Active:              true,
		Skills:              []model.SkillLevel{{SkillID: "skill-go", Level: skillLevel}},
	}
}

func TestRank(t *testing.T) {
	Convey("Given a requirement for skill-go at level 5", t, func() {
		req := model.SkillRequirement{SkillID: "skill-go", MinLevel: 5, Hours: 80}
		prefs := model.DefaultPreferences()

		Convey("When a resource lacks the skill or the level", func() {
			pool := []*model.Resource{
				resource("too-low", 40, 4),
				{ID: "no-skill", WeeklyCapacityHours: 40, Active: true},
			}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then nothing is eligible", func() {
				So(result.Ranked, ShouldBeEmpty)
				So(result.Best, ShouldBeNil)
				So(result.CanBeFulfilled, ShouldBeFalse)
			})
		})

		Convey("When skill level is prioritized", func() {
			pool := []*model.Resource{resource("r1", 40, 8)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then the skill score scales with level", func() {
				So(result.Ranked[0].SkillScore, ShouldEqual, 80)
			})

			Convey("And a fully free resource scores 100 on availability", func() {
				So(result.Ranked[0].AvailabilityScore, ShouldEqual, 100)
			})

			Convey("And the composite favors availability by default", func() {
				// 0.3*80 + 0.7*100
				So(result.Ranked[0].CompositeScore, ShouldAlmostEqual, 94)
			})
		})

		Convey("When skill level is not prioritized", func() {
			flat := prefs
			flat.PrioritizeSkillLevel = false
			pool := []*model.Resource{resource("r1", 40, 8)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, flat)

			Convey("Then the skill score is a flat 50", func() {
				So(result.Ranked[0].SkillScore, ShouldEqual, 50)
			})
		})

		Convey("When availability is not prioritized", func() {
			skewed := prefs
			skewed.PrioritizeAvailability = false
			pool := []*model.Resource{resource("r1", 40, 8)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, skewed)

			Convey("Then the composite weights flip to favor skill", func() {
				// 0.7*80 + 0.3*100
				So(result.Ranked[0].CompositeScore, ShouldAlmostEqual, 86)
			})
		})

		Convey("When every week is over the utilization ceiling", func() {
			pool := []*model.Resource{resource("r1", 40, 5)}
			existing := map[string][]float64{"r1": {36, 36, 36, 36}}
			snaps := availability.Build(pool, existing, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then the availability score is the flat penalty", func() {
				So(result.Ranked[0].AvailabilityScore, ShouldEqual, -20)
			})

			Convey("And the composite can be pulled near zero", func() {
				// 0.3*50 + 0.7*(-20)
				So(result.Ranked[0].CompositeScore, ShouldAlmostEqual, 1)
			})
		})

		Convey("When overallocation is allowed", func() {
			relaxed := prefs
			relaxed.AllowOverallocation = true
			pool := []*model.Resource{resource("r1", 40, 5)}
			existing := map[string][]float64{"r1": {36, 36, 36, 36}}
			snaps := availability.Build(pool, existing, 4)
			result := matching.Rank(req, pool, snaps, relaxed)

			Convey("Then no penalty applies and free capacity still scores", func() {
				So(result.Ranked[0].AvailabilityScore, ShouldAlmostEqual, 10)
			})
		})

		Convey("When two resources tie on the composite score", func() {
			pool := []*model.Resource{resource("first", 40, 6), resource("second", 40, 6)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then pool order breaks the tie", func() {
				So(result.Ranked, ShouldHaveLength, 2)
				So(result.Ranked[0].Snapshot.Resource.ID, ShouldEqual, "first")
				So(result.Ranked[1].Snapshot.Resource.ID, ShouldEqual, "second")
			})
		})

		Convey("When the best match cannot cover the hours alone", func() {
			pool := []*model.Resource{resource("small", 10, 9), resource("smaller", 10, 9)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then the requirement is unfulfillable even though two could cover it together", func() {
				So(result.Best, ShouldNotBeNil)
				So(result.CanBeFulfilled, ShouldBeFalse)
			})
		})

		Convey("When the best match has exactly the required hours", func() {
			pool := []*model.Resource{resource("exact", 20, 7)}
			snaps := availability.Build(pool, nil, 4)
			result := matching.Rank(req, pool, snaps, prefs)

			Convey("Then the requirement is fulfillable", func() {
				So(result.CanBeFulfilled, ShouldBeTrue)
			})
		})
	})
}
