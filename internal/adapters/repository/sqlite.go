package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/pkg/metrics"
)

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			team TEXT NOT NULL DEFAULT '',
			employment_type TEXT NOT NULL DEFAULT '',
			weekly_capacity_hours REAL NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS resource_skills (
			resource_id TEXT NOT NULL REFERENCES resources(id),
			skill_id TEXT NOT NULL REFERENCES skills(id),
			level INTEGER NOT NULL,
			PRIMARY KEY (resource_id, skill_id)
		)`,
		`CREATE TABLE IF NOT EXISTS allocations (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			block_id TEXT NOT NULL,
			resource_id TEXT NOT NULL REFERENCES resources(id),
			week_start DATETIME NOT NULL,
			hours REAL NOT NULL,
			UNIQUE (block_id, resource_id, week_start)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// CreateSkill inserts a catalog skill.
func (s *SQLiteStore) CreateSkill(ctx context.Context, skill model.Skill) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skills (id, code, category) VALUES (?, ?, ?)`,
		skill.ID, skill.Code, skill.Category,
	)
	if err != nil {
		return fmt.Errorf("inserting skill: %w", err)
	}
	return nil
}

// CreateResource inserts a resource along with its skill levels.
func (s *SQLiteStore) CreateResource(ctx context.Context, r *model.Resource) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO resources (id, name, team, employment_type, weekly_capacity_hours, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Team, r.EmploymentType, r.WeeklyCapacityHours, boolToInt(r.Active),
	)
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	for _, sl := range r.Skills {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM skills WHERE id = ?`, sl.SkillID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ErrSkillNotFound, sl.SkillID)
		}
		if err != nil {
			return fmt.Errorf("looking up skill %s: %w", sl.SkillID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resource_skills (resource_id, skill_id, level) VALUES (?, ?, ?)`,
			r.ID, sl.SkillID, sl.Level,
		); err != nil {
			return fmt.Errorf("inserting resource skill: %w", err)
		}
	}
	return tx.Commit()
}

// SetResourceActive flips a resource's active flag.
func (s *SQLiteStore) SetResourceActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("updating resource: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}
	return nil
}

// UpsertAllocation writes a single allocation row, keyed by
// (blockID, resourceID, weekStart). Used by external CRUD and seeding.
func (s *SQLiteStore) UpsertAllocation(ctx context.Context, a model.Allocation) error {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO allocations (id, project_id, block_id, resource_id, week_start, hours)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (block_id, resource_id, week_start)
		 DO UPDATE SET hours = excluded.hours, project_id = excluded.project_id`,
		id, a.ProjectID, a.BlockID, a.ResourceID, formatWeek(a.WeekStart), a.Hours,
	)
	if err != nil {
		return fmt.Errorf("upserting allocation: %w", err)
	}
	return nil
}

// ListActiveResources returns active resources with skills, ordered by id
// so that ranking tie-breaks are deterministic across runs.
func (s *SQLiteStore) ListActiveResources(ctx context.Context, filter Filter) ([]*model.Resource, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	query := `SELECT id, name, team, employment_type, weekly_capacity_hours, active
	          FROM resources WHERE active = 1`
	var args []any
	if len(filter.Teams) > 0 {
		query += ` AND team IN (` + placeholders(len(filter.Teams)) + `)`
		for _, t := range filter.Teams {
			args = append(args, t)
		}
	}
	if len(filter.ExcludeIDs) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(filter.ExcludeIDs)) + `)`
		for _, id := range filter.ExcludeIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id`

	return s.queryResources(ctx, query, args...)
}

// ListResourcesByIDs returns the named resources regardless of active flag.
func (s *SQLiteStore) ListResourcesByIDs(ctx context.Context, ids []string) ([]*model.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, team, employment_type, weekly_capacity_hours, active
	          FROM resources WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryResources(ctx, query, args...)
}

func (s *SQLiteStore) queryResources(ctx context.Context, query string, args ...any) ([]*model.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var resources []*model.Resource
	byID := make(map[string]*model.Resource)
	for rows.Next() {
		var r model.Resource
		var active int
		if err := rows.Scan(&r.ID, &r.Name, &r.Team, &r.EmploymentType, &r.WeeklyCapacityHours, &active); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		r.Active = active != 0
		resources = append(resources, &r)
		byID[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	if len(resources) == 0 {
		return resources, nil
	}

	ids := make([]any, 0, len(resources))
	for _, r := range resources {
		ids = append(ids, r.ID)
	}
	skillRows, err := s.db.QueryContext(ctx,
		`SELECT resource_id, skill_id, level FROM resource_skills
		 WHERE resource_id IN (`+placeholders(len(ids))+`) ORDER BY resource_id, skill_id`,
		ids...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying resource skills: %w", err)
	}
	defer skillRows.Close()

	for skillRows.Next() {
		var resourceID string
		var sl model.SkillLevel
		if err := skillRows.Scan(&resourceID, &sl.SkillID, &sl.Level); err != nil {
			return nil, fmt.Errorf("scanning resource skill: %w", err)
		}
		if r, ok := byID[resourceID]; ok {
			r.Skills = append(r.Skills, sl)
		}
	}
	if err := skillRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resource skills: %w", err)
	}
	return resources, nil
}

// ListAllocations returns allocations for the resources whose week start
// falls in [windowStart, windowEnd).
func (s *SQLiteStore) ListAllocations(ctx context.Context, resourceIDs []string, windowStart, windowEnd time.Time) ([]model.Allocation, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	if len(resourceIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(resourceIDs)+2)
	for _, id := range resourceIDs {
		args = append(args, id)
	}
	args = append(args, formatWeek(windowStart), formatWeek(windowEnd))

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, block_id, resource_id, week_start, hours FROM allocations
		 WHERE resource_id IN (`+placeholders(len(resourceIDs))+`)
		   AND week_start >= ? AND week_start < ?
		 ORDER BY resource_id, week_start`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying allocations: %w", err)
	}
	defer rows.Close()

	var allocations []model.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// ApplyPlan upserts all entries inside one transaction. Any missing or
// inactive resource aborts the batch; partial application is never visible.
func (s *SQLiteStore) ApplyPlan(ctx context.Context, projectID, blockID string, entries []model.ApplyEntry) ([]model.AppliedAllocation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	applied := make([]model.AppliedAllocation, 0, len(entries))
	for _, e := range entries {
		var name, team string
		var active int
		err := tx.QueryRowContext(ctx,
			`SELECT name, team, active FROM resources WHERE id = ?`, e.ResourceID,
		).Scan(&name, &team, &active)
		if err == sql.ErrNoRows || (err == nil && active == 0) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, e.ResourceID)
		}
		if err != nil {
			return nil, fmt.Errorf("looking up resource %s: %w", e.ResourceID, err)
		}

		weekStart := formatWeek(e.WeekStart)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allocations (id, project_id, block_id, resource_id, week_start, hours)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (block_id, resource_id, week_start)
			 DO UPDATE SET hours = excluded.hours, project_id = excluded.project_id`,
			uuid.NewString(), projectID, blockID, e.ResourceID, weekStart, e.Hours,
		); err != nil {
			return nil, fmt.Errorf("upserting allocation: %w", err)
		}

		// Read the row back: on update the original id survives.
		var a model.Allocation
		var weekStr string
		if err := tx.QueryRowContext(ctx,
			`SELECT id, project_id, block_id, resource_id, week_start, hours FROM allocations
			 WHERE block_id = ? AND resource_id = ? AND week_start = ?`,
			blockID, e.ResourceID, weekStart,
		).Scan(&a.ID, &a.ProjectID, &a.BlockID, &a.ResourceID, &weekStr, &a.Hours); err != nil {
			return nil, fmt.Errorf("reading back allocation: %w", err)
		}
		a.WeekStart = parseWeek(weekStr)
		applied = append(applied, model.AppliedAllocation{
			Allocation:   a,
			ResourceName: name,
			Team:         team,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing plan: %w", err)
	}
	return applied, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAllocation(rows rowScanner) (model.Allocation, error) {
	var a model.Allocation
	var weekStr string
	if err := rows.Scan(&a.ID, &a.ProjectID, &a.BlockID, &a.ResourceID, &weekStr, &a.Hours); err != nil {
		return a, fmt.Errorf("scanning allocation: %w", err)
	}
	a.WeekStart = parseWeek(weekStr)
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func formatWeek(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseWeek(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
