package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/WGhaly/pmprg-system-sub001/internal/adapters/repository"
	service "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/schedule"
	"github.com/WGhaly/pmprg-system-sub001/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newService(t *testing.T) (*service.Service, *repository.SQLiteStore) {
	t.Helper()
	store, err := repository.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.CreateSkill(ctx, model.Skill{ID: "skill-x", Code: "X", Category: "engineering"}); err != nil {
		t.Fatalf("creating skill: %v", err)
	}
	if err := store.CreateResource(ctx, &model.Resource{
		ID: "res-1", Name: "Res One", Team: "platform",
		WeeklyCapacityHours: 40, Active: true,
		Skills: []model.SkillLevel{{SkillID: "skill-x", Level: 5}},
	}); err != nil {
		t.Fatalf("creating resource: %v", err)
	}
	return service.New(service.WithStore(store)), store
}

func TestPlanAllocation(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		svc, store := newService(t)
		ctx := context.Background()
		start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		req := service.PlanRequest{
			ProjectID:   "proj-1",
			BlockID:     "block-1",
			WindowStart: start,
			WindowEnd:   start.AddDate(0, 0, 28),
			Requirements: []model.SkillRequirement{
				{SkillID: "skill-x", MinLevel: 5, Hours: 80},
			},
		}

		Convey("When planning against a free resource", func() {
			plan, err := svc.PlanAllocation(ctx, req)

			Convey("Then the textbook 20h/week plan comes back", func() {
				So(err, ShouldBeNil)
				So(plan.Entries, ShouldHaveLength, 4)
				So(plan.Summary.FulfillmentPct, ShouldEqual, 100)
			})

			Convey("And planning again without store changes is deterministic", func() {
				again, err := svc.PlanAllocation(ctx, req)
				So(err, ShouldBeNil)
				So(again.Summary, ShouldResemble, plan.Summary)
				So(again.Entries, ShouldResemble, plan.Entries)
			})
		})

		Convey("When existing allocations occupy most of the capacity", func() {
			for i := 0; i < 4; i++ {
				err := store.UpsertAllocation(ctx, model.Allocation{
					ProjectID: "proj-other", BlockID: "block-other", ResourceID: "res-1",
					WeekStart: start.AddDate(0, 0, 7*i), Hours: 30,
				})
				So(err, ShouldBeNil)
			}
			plan, err := svc.PlanAllocation(ctx, req)

			Convey("Then the plan is capacity-limited with a warning", func() {
				So(err, ShouldBeNil)
				So(plan.Summary.TotalAllocatedHours, ShouldEqual, 40)
				So(plan.Summary.FulfillmentPct, ShouldEqual, 50)
				So(plan.Summary.Warnings, ShouldNotBeEmpty)
			})
		})

		Convey("When the service default allows overallocation", func() {
			overSvc := service.New(
				service.WithStore(store),
				service.WithDefaultPreferences(model.Preferences{
					AllowOverallocation:    true,
					PrioritizeSkillLevel:   true,
					PrioritizeAvailability: true,
				}),
			)
			for i := 0; i < 4; i++ {
				So(store.UpsertAllocation(ctx, model.Allocation{
					ProjectID: "proj-other", BlockID: "block-other", ResourceID: "res-1",
					WeekStart: start.AddDate(0, 0, 7*i), Hours: 35,
				}), ShouldBeNil)
			}

			Convey("And the request leaves preferences unspecified", func() {
				plan, err := overSvc.PlanAllocation(ctx, req)

				Convey("Then the configured default drives the buffer", func() {
					// 13h/week inside the 48h buffered ceiling, flagged.
					So(err, ShouldBeNil)
					So(plan.Summary.TotalAllocatedHours, ShouldEqual, 52)
					So(plan.Summary.OverallocatedEntries, ShouldEqual, 4)
				})
			})

			Convey("And the request explicitly disables overallocation", func() {
				disabled := false
				strict := req
				strict.Preferences = service.PreferenceOverrides{AllowOverallocation: &disabled}
				plan, err := overSvc.PlanAllocation(ctx, strict)

				Convey("Then the override beats the configured default", func() {
					So(err, ShouldBeNil)
					So(plan.Summary.TotalAllocatedHours, ShouldEqual, 20)
					So(plan.Summary.OverallocatedEntries, ShouldEqual, 0)
				})
			})
		})

		Convey("When the window is invalid", func() {
			bad := req
			bad.WindowEnd = bad.WindowStart

			_, err := svc.PlanAllocation(ctx, bad)

			Convey("Then the range error surfaces before any computation", func() {
				So(errors.Is(err, schedule.ErrInvalidRange), ShouldBeTrue)
			})
		})
	})
}

func TestApplyPlan(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		svc, store := newService(t)
		ctx := context.Background()
		start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		req := service.ApplyRequest{
			ProjectID: "proj-1",
			BlockID:   "block-1",
			Entries: []model.ApplyEntry{
				{ResourceID: "res-1", WeekStart: start, Hours: 20},
				{ResourceID: "res-1", WeekStart: start.AddDate(0, 0, 7), Hours: 20},
			},
		}

		Convey("When the plan is applied twice", func() {
			first, err := svc.ApplyPlan(ctx, req)
			So(err, ShouldBeNil)
			second, err := svc.ApplyPlan(ctx, req)
			So(err, ShouldBeNil)

			Convey("Then the final rows are identical, not duplicated", func() {
				So(first, ShouldHaveLength, 2)
				So(second, ShouldHaveLength, 2)
				rows, err := store.ListAllocations(ctx, []string{"res-1"}, start, start.AddDate(0, 0, 28))
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
			})
		})

		Convey("When an entry carries negative hours", func() {
			bad := req
			bad.Entries = []model.ApplyEntry{{ResourceID: "res-1", WeekStart: start, Hours: -1}}
			_, err := svc.ApplyPlan(ctx, bad)

			Convey("Then the request is rejected up front", func() {
				So(errors.Is(err, service.ErrInvalidApply), ShouldBeTrue)
			})
		})

		Convey("When a resource was deactivated after planning", func() {
			So(store.SetResourceActive(ctx, "res-1", false), ShouldBeNil)
			_, err := svc.ApplyPlan(ctx, req)

			Convey("Then the whole transaction is rejected", func() {
				So(errors.Is(err, repository.ErrResourceNotFound), ShouldBeTrue)
				rows, listErr := store.ListAllocations(ctx, []string{"res-1"}, start, start.AddDate(0, 0, 28))
				So(listErr, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}

func TestValidateCapacity(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		svc, store := newService(t)
		ctx := context.Background()
		start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

		So(store.UpsertAllocation(ctx, model.Allocation{
			ProjectID: "proj-other", BlockID: "block-other", ResourceID: "res-1",
			WeekStart: start, Hours: 10,
		}), ShouldBeNil)

		Convey("When a proposal overcommits a resource on the standard week", func() {
			res, err := svc.ValidateCapacity(ctx, service.ValidateRequest{
				ProjectID:   "proj-1",
				WindowStart: start,
				WindowEnd:   start.AddDate(0, 0, 7),
				Proposed:    map[string]map[string]float64{"block-1": {"res-1": 35}},
			})

			Convey("Then the overallocation is reported with the overlap", func() {
				So(err, ShouldBeNil)
				So(res.IsValid, ShouldBeFalse)
				So(res.Errors, ShouldHaveLength, 1)
				// 45h against the fixed 40h standard week.
				So(res.Resources[0].UtilizationPct, ShouldEqual, 112.5)
				So(res.Warnings, ShouldNotBeEmpty)
			})
		})
	})
}
