package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// QuestionRepository handles question bank data access. Constraints,
// examples and the per-language blocks are stored as JSONB.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, question_code, problem_statement, constraints, examples,
	question_set, languages, is_active, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var constraints, examples, languages []byte
	err := row.Scan(&q.ID, &q.QuestionCode, &q.ProblemStatement, &constraints, &examples,
		&q.QuestionSet, &languages, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(constraints, &q.Constraints); err != nil {
		return nil, fmt.Errorf("decode constraints: %w", err)
	}
	if err := json.Unmarshal(examples, &q.Examples); err != nil {
		return nil, fmt.Errorf("decode examples: %w", err)
	}
	if err := json.Unmarshal(languages, &q.Languages); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	return q, nil
}

// GetByID retrieves a question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	return scanQuestion(row)
}

// ListActive retrieves the active questions of a question set, ordered by
// question code.
func (r *QuestionRepository) ListActive(ctx context.Context, set model.QuestionSet) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE is_active = TRUE AND question_set = $1
		 ORDER BY question_code ASC`, set)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// List retrieves every question, active or not, for admin management.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 ORDER BY question_set ASC, question_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	constraints, err := json.Marshal(q.Constraints)
	if err != nil {
		return fmt.Errorf("encode constraints: %w", err)
	}
	examples, err := json.Marshal(q.Examples)
	if err != nil {
		return fmt.Errorf("encode examples: %w", err)
	}
	languages, err := json.Marshal(q.Languages)
	if err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_code, problem_statement, constraints, examples, question_set, languages, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		q.QuestionCode, q.ProblemStatement, constraints, examples, q.QuestionSet, languages, q.IsActive,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update persists all mutable fields of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	constraints, err := json.Marshal(q.Constraints)
	if err != nil {
		return fmt.Errorf("encode constraints: %w", err)
	}
	examples, err := json.Marshal(q.Examples)
	if err != nil {
		return fmt.Errorf("encode examples: %w", err)
	}
	languages, err := json.Marshal(q.Languages)
	if err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_code = $1, problem_statement = $2, constraints = $3, examples = $4,
		     languages = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.QuestionCode, q.ProblemStatement, constraints, examples, languages, q.IsActive, q.ID)
	return err
}
