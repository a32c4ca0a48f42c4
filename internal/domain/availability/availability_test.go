package availability_test

import (
	"testing"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/availability"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a pool with existing allocations", t, func() {
		pool := []*model.Resource{
			{ID: "r1", Name: "One", WeeklyCapacityHours: 40},
			{ID: "r2", Name: "Two", WeeklyCapacityHours: 24},
		}
		existing := map[string][]float64{
			"r1": {10, 40, 55, 0},
		}

		Convey("When snapshots are built over four weeks", func() {
			snaps := availability.Build(pool, existing, 4)

			Convey("Then available plus existing equals capacity while under capacity", func() {
				s := snaps["r1"]
				So(s.Available[0]+s.Existing[0], ShouldEqual, 40)
				So(s.Available[1]+s.Existing[1], ShouldEqual, 40)
				So(s.Available[3], ShouldEqual, 40)
			})

			Convey("Then overcommitted weeks clamp available hours to zero", func() {
				s := snaps["r1"]
				So(s.Available[2], ShouldEqual, 0)
				So(s.Existing[2], ShouldEqual, 55)
			})

			Convey("Then utilization is existing over capacity", func() {
				s := snaps["r1"]
				So(s.Utilization(0), ShouldEqual, 0.25)
				So(s.Utilization(1), ShouldEqual, 1)
				So(s.Utilization(3), ShouldEqual, 0)
			})

			Convey("Then resources without allocations are fully available", func() {
				s := snaps["r2"]
				So(s.TotalAvailable(), ShouldEqual, 96)
				So(s.Utilization(0), ShouldEqual, 0)
			})

			Convey("Then the window total sums every bucket", func() {
				So(snaps["r1"].TotalAvailable(), ShouldEqual, 30+0+0+40)
			})
		})
	})
}
