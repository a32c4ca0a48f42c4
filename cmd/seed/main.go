// Command seed creates the engine schema and loads a demo catalog of teams,
// skills and resources so the service can be exercised locally.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/WGhaly/pmprg-system-sub001/internal/adapters/repository"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
)

var (
	dbPath    string
	weekStart string
	baseline  bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the allocation engine database with demo data",
	Long:  "seed creates the SQLite schema and loads a demo catalog of skills and resources, optionally with baseline allocations for one project.",
	RunE:  runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "pmprg.db", "SQLite database path")
	rootCmd.Flags().StringVar(&weekStart, "week-start", "", "anchor date (YYYY-MM-DD) for baseline allocations; defaults to next Monday")
	rootCmd.Flags().BoolVar(&baseline, "baseline", false, "also create baseline allocations for a demo project")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := repository.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	skills := []model.Skill{
		{ID: "skill-go", Code: "GO", Category: "engineering"},
		{ID: "skill-sql", Code: "SQL", Category: "engineering"},
		{ID: "skill-pm", Code: "PM", Category: "delivery"},
		{ID: "skill-ux", Code: "UX", Category: "design"},
	}
	for _, s := range skills {
		if err := store.CreateSkill(ctx, s); err != nil {
			return fmt.Errorf("creating skill %s: %w", s.Code, err)
		}
	}

	resources := []*model.Resource{
		{
			ID: "res-amira", Name: "Amira Hassan", Team: "platform",
			EmploymentType: "full_time", WeeklyCapacityHours: 40, Active: true,
			Skills: []model.SkillLevel{{SkillID: "skill-go", Level: 8}, {SkillID: "skill-sql", Level: 6}},
		},
		{
			ID: "res-jonas", Name: "Jonas Weber", Team: "platform",
			EmploymentType: "full_time", WeeklyCapacityHours: 40, Active: true,
			Skills: []model.SkillLevel{{SkillID: "skill-go", Level: 5}, {SkillID: "skill-sql", Level: 9}},
		},
		{
			ID: "res-lena", Name: "Lena Novak", Team: "delivery",
			EmploymentType: "part_time", WeeklyCapacityHours: 24, Active: true,
			Skills: []model.SkillLevel{{SkillID: "skill-pm", Level: 7}},
		},
		{
			ID: "res-tariq", Name: "Tariq Aziz", Team: "design",
			EmploymentType: "contractor", WeeklyCapacityHours: 32, Active: true,
			Skills: []model.SkillLevel{{SkillID: "skill-ux", Level: 9}, {SkillID: "skill-pm", Level: 3}},
		},
	}
	for _, r := range resources {
		if err := store.CreateResource(ctx, r); err != nil {
			return fmt.Errorf("creating resource %s: %w", r.ID, err)
		}
	}

	fmt.Printf("seeded %d skills and %d resources into %s\n", len(skills), len(resources), dbPath)

	if !baseline {
		return nil
	}

	anchor, err := resolveWeekStart(weekStart)
	if err != nil {
		return err
	}
	for week := 0; week < 2; week++ {
		a := model.Allocation{
			ID:         uuid.NewString(),
			ProjectID:  "proj-demo",
			BlockID:    "block-demo-1",
			ResourceID: "res-jonas",
			WeekStart:  anchor.AddDate(0, 0, 7*week),
			Hours:      20,
		}
		if err := store.UpsertAllocation(ctx, a); err != nil {
			return fmt.Errorf("creating baseline allocation: %w", err)
		}
	}
	fmt.Printf("seeded baseline allocations for proj-demo starting %s\n", anchor.Format("2006-01-02"))
	return nil
}

// resolveWeekStart parses the flag or picks the next Monday in UTC.
func resolveWeekStart(flag string) (time.Time, error) {
	if flag != "" {
		t, err := time.Parse("2006-01-02", flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing --week-start: %w", err)
		}
		return t.UTC(), nil
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for now.Weekday() != time.Monday {
		now = now.AddDate(0, 0, 1)
	}
	return now, nil
}
