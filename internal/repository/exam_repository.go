package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Current retrieves the most recently created exam. Returns pgx.ErrNoRows
// when no exam exists yet.
func (r *ExamRepository) Current(ctx context.Context) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, status, duration_minutes, start_time, end_time, created_at, updated_at
		 FROM exams
		 ORDER BY created_at DESC
		 LIMIT 1`,
	).Scan(&e.ID, &e.Status, &e.DurationMinutes, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new exam in waiting state.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (status, duration_minutes)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		e.Status, e.DurationMinutes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update persists the mutable lifecycle fields of an exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET status = $1, start_time = $2, end_time = $3, updated_at = NOW()
		 WHERE id = $4`,
		e.Status, e.StartTime, e.EndTime, e.ID)
	return err
}

// DeleteAll removes every exam row. Submissions cascade via FK.
func (r *ExamRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams`)
	return err
}
