// Package signals reads pre-aggregated attendance, score, progress and
// behavior figures from Postgres.
package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"student-agent/internal/domain"
)

// ErrUnavailable wraps every failure to read signals. Callers degrade to
// zero-valued signals instead of failing the turn.
var ErrUnavailable = errors.New("signals: unavailable")

// querier is the subset of *pgxpool.Pool used by Source.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const studentQuery = `
SELECT
	COALESCE((SELECT AVG(CASE WHEN status = 'present' THEN 1 ELSE 0 END) * 100 FROM attendance_records WHERE student_id = $1), 0)::float8,
	COALESCE((SELECT AVG(score) FROM assessment_scores WHERE student_id = $1), 0)::float8,
	COALESCE((SELECT AVG(completion_pct) FROM module_progress WHERE student_id = $1), 0)::float8,
	COALESCE((SELECT AVG(mastery_score) FROM module_progress WHERE student_id = $1), 0)::float8,
	COALESCE((SELECT SUM(CASE WHEN severity IN ('moderate', 'high') THEN 1 ELSE 0 END) FROM behavior_records WHERE student_id = $1), 0)::int`

const cohortQuery = `
SELECT
	s.id::text,
	COALESCE(s.full_name, '')::text,
	COALESCE(s.grade_level::text, '')::text,
	COALESCE(att.attendance_pct, 0)::float8,
	COALESCE(sc.avg_score, 0)::float8,
	COALESCE(mp.completion_pct, 0)::float8,
	COALESCE(mp.mastery_score, 0)::float8,
	COALESCE(br.behavior_incidents, 0)::int
FROM students s
LEFT JOIN (
	SELECT student_id, AVG(CASE WHEN status = 'present' THEN 1 ELSE 0 END) * 100 AS attendance_pct
	FROM attendance_records GROUP BY student_id
) att ON att.student_id = s.id
LEFT JOIN (
	SELECT student_id, AVG(score) AS avg_score
	FROM assessment_scores GROUP BY student_id
) sc ON sc.student_id = s.id
LEFT JOIN (
	SELECT student_id, AVG(completion_pct) AS completion_pct, AVG(mastery_score) AS mastery_score
	FROM module_progress GROUP BY student_id
) mp ON mp.student_id = s.id
LEFT JOIN (
	SELECT student_id, SUM(CASE WHEN severity IN ('moderate', 'high') THEN 1 ELSE 0 END) AS behavior_incidents
	FROM behavior_records GROUP BY student_id
) br ON br.student_id = s.id
ORDER BY s.full_name ASC`

// Source reads signals with one aggregate query per call.
type Source struct {
	db querier
}

func New(db querier) (*Source, error) {
	if db == nil {
		return nil, errors.New("signals: db must not be nil")
	}
	return &Source{db: db}, nil
}

// NewPool opens a small pgx pool for the signal source.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("signals: parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("signals: open pool: %w", err)
	}
	return pool, nil
}

// Signals returns the aggregates for one student. A student with no records
// gets zero values.
func (s *Source) Signals(ctx context.Context, studentID string) (domain.RiskSignals, error) {
	var out domain.RiskSignals
	err := s.db.QueryRow(ctx, studentQuery, studentID).Scan(
		&out.AttendancePct,
		&out.AvgScore,
		&out.CompletionPct,
		&out.MasteryScore,
		&out.BehaviorIncidents,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RiskSignals{}, nil
	}
	if err != nil {
		return domain.RiskSignals{}, fmt.Errorf("%w: student %s: %w", ErrUnavailable, studentID, err)
	}
	return out, nil
}

// Cohort returns every student with their aggregates, ordered by name.
func (s *Source) Cohort(ctx context.Context) ([]domain.CohortMember, error) {
	rows, err := s.db.Query(ctx, cohortQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: cohort: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []domain.CohortMember
	for rows.Next() {
		var m domain.CohortMember
		r := &m.Signals
		if err := rows.Scan(&m.StudentID, &m.Name, &m.GradeLevel, &r.AttendancePct, &r.AvgScore, &r.CompletionPct, &r.MasteryScore, &r.BehaviorIncidents); err != nil {
			return nil, fmt.Errorf("%w: cohort scan: %w", ErrUnavailable, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: cohort rows: %w", ErrUnavailable, err)
	}
	return out, nil
}
