package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given manager options", t, func() {
		Convey("When constructed with a fresh registry", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(WithRegistry(reg))

			Convey("Then metrics register without panicking and defaults hold", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "pmprg")
				So(m.subsystem, ShouldEqual, "allocation")
			})
		})

		Convey("When namespace and subsystem are overridden", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithRegistry(reg),
				WithNamespace("custom"),
				WithSubsystem("engine"),
				WithHistogramBuckets([]float64{1, 5, 10}),
			)

			So(m.namespace, ShouldEqual, "custom")
			So(m.subsystem, ShouldEqual, "engine")
			So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
		})

		Convey("When empty option values are supplied", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithRegistry(reg),
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
			)

			Convey("Then the defaults are kept", func() {
				So(m.namespace, ShouldEqual, "pmprg")
				So(m.subsystem, ShouldEqual, "allocation")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When the package-level recorders run", func() {
			RecordPlanComputed(4, 100, 2.5)
			RecordPlanWarnings(2)
			RecordUnfulfillableRequirement()
			RecordOverallocatedEntries(1)
			RecordPlanApplied(4, 1.2)
			RecordApplyFailure()
			RecordValidationRun()
			RecordValidationConflict("overallocation", "high")
			RecordStoreQueryLatency(0.8)
			RecordHTTPRequest("plan", "POST", "200")
			RecordHTTPRequestDuration("plan", "POST", "200", 3.1)

			Convey("Then the custom registry gathers them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["pmprg_allocation_plans_computed_total"], ShouldBeTrue)
				So(names["pmprg_allocation_validation_conflicts_total"], ShouldBeTrue)
				So(names["pmprg_allocation_http_requests_total"], ShouldBeTrue)
			})
		})
	})
}
