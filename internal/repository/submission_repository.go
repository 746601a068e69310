package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// LeaderboardRow is a submission joined with participant profile fields,
// as consumed by the ranker and the admin summary.
type LeaderboardRow struct {
	UserID                 uuid.UUID         `json:"user_id"`
	Name                   string            `json:"name"`
	Email                  string            `json:"email"`
	College                string            `json:"college"`
	Year                   int               `json:"year"`
	QuestionSet            model.QuestionSet `json:"question_set"`
	Language               model.Language    `json:"language"`
	Score                  int               `json:"score"`
	TimeTakenSeconds       int               `json:"time_taken_seconds"`
	StartedAt              time.Time         `json:"started_at"`
	IsSubmitted            bool              `json:"is_submitted"`
	TabSwitchCount         int               `json:"tab_switch_count"`
	IsDisqualified         bool              `json:"is_disqualified"`
	DisqualificationReason string            `json:"disqualification_reason,omitempty"`
}

// SubmissionRepository handles submission ledger data access. The per
// question attempt records live in a JSONB column; score, anti-cheat and
// finalization state are plain columns so they can be mutated atomically
// alongside the records.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, user_id, exam_id, started_at, submitted_at, is_submitted,
	records, score, tab_switch_count, is_disqualified, disqualification_reason,
	time_taken, updated_at`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	var records []byte
	err := row.Scan(&s.ID, &s.UserID, &s.ExamID, &s.StartedAt, &s.SubmittedAt, &s.IsSubmitted,
		&records, &s.Score, &s.TabSwitchCount, &s.IsDisqualified, &s.DisqualificationReason,
		&s.TimeTakenSeconds, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(records, &s.Records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return s, nil
}

// GetByUserAndExam retrieves the ledger for a (user, exam) pair.
func (r *SubmissionRepository) GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE user_id = $1 AND exam_id = $2`, userID, examID)
	return scanSubmission(row)
}

// CreateIfAbsent inserts the ledger for a (user, exam) pair unless one
// already exists. The UNIQUE (user_id, exam_id) constraint closes the
// concurrent-join race; a losing insert reports created = false and the
// caller refetches.
func (r *SubmissionRepository) CreateIfAbsent(ctx context.Context, s *model.Submission) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions (user_id, exam_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, exam_id) DO NOTHING
		 RETURNING id, started_at`,
		s.UserID, s.ExamID,
	).Scan(&s.ID, &s.StartedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Mutate loads the ledger under a row lock, applies fn and writes back the
// records, score and finalization fields in the same transaction. A non-nil
// error from fn aborts without writing anything, so guard refusals leave no
// trace. This is the single write path for attempt appends and submits; the
// row lock plus the in-fn re-check defends the attempt cap and accept-lock
// against racing duplicate requests.
func (r *SubmissionRepository) Mutate(ctx context.Context, userID, examID uuid.UUID, fn func(*model.Submission) error) (*model.Submission, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE user_id = $1 AND exam_id = $2
		 FOR UPDATE`, userID, examID)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	records, err := json.Marshal(s.Records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE submissions
		 SET records = $1, score = $2, is_submitted = $3, submitted_at = $4,
		     time_taken = $5, updated_at = NOW()
		 WHERE id = $6`,
		records, s.Score, s.IsSubmitted, s.SubmittedAt, s.TimeTakenSeconds, s.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// IncrementTabSwitch atomically bumps the tab-switch counter of the open
// ledger and returns the post-increment count together with the current
// disqualification flag. Returns pgx.ErrNoRows when no open ledger exists.
func (r *SubmissionRepository) IncrementTabSwitch(ctx context.Context, userID, examID uuid.UUID) (count int, disqualified bool, err error) {
	err = r.pool.QueryRow(ctx,
		`UPDATE submissions
		 SET tab_switch_count = tab_switch_count + 1, updated_at = NOW()
		 WHERE user_id = $1 AND exam_id = $2 AND is_submitted = FALSE
		 RETURNING tab_switch_count, is_disqualified`,
		userID, examID,
	).Scan(&count, &disqualified)
	return count, disqualified, err
}

// Disqualify flags the ledger unless it is already flagged. Returns true
// when this call performed the flip, so concurrent threshold hits settle on
// exactly one disqualification write.
func (r *SubmissionRepository) Disqualify(ctx context.Context, userID, examID uuid.UUID, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET is_disqualified = TRUE, disqualification_reason = $1, updated_at = NOW()
		 WHERE user_id = $2 AND exam_id = $3 AND is_disqualified = FALSE`,
		reason, userID, examID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FreezeOpenByExam force-submits every open ledger of the exam in one bulk
// statement. time_taken is derived per row from started_at, so frozen rows
// carry exact durations even though they share a submitted_at.
func (r *SubmissionRepository) FreezeOpenByExam(ctx context.Context, examID uuid.UUID, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET is_submitted = TRUE, submitted_at = $2,
		     time_taken = GREATEST(EXTRACT(EPOCH FROM ($2 - started_at))::int, 0),
		     updated_at = NOW()
		 WHERE exam_id = $1 AND is_submitted = FALSE`,
		examID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListRowsByExam retrieves submissions joined with participant fields. With
// onlySubmitted, unfinished ledgers are excluded (the ranker's input); the
// admin summary passes false to see everyone.
func (r *SubmissionRepository) ListRowsByExam(ctx context.Context, examID uuid.UUID, onlySubmitted bool) ([]LeaderboardRow, error) {
	query := `
		SELECT s.user_id, u.name, u.email, u.college, u.year, u.question_set, u.language,
		       s.score, s.time_taken, s.started_at, s.is_submitted, s.tab_switch_count,
		       s.is_disqualified, s.disqualification_reason
		FROM submissions s
		JOIN users u ON s.user_id = u.id
		WHERE s.exam_id = $1`
	if onlySubmitted {
		query += ` AND s.is_submitted = TRUE`
	}
	query += ` ORDER BY s.started_at ASC, s.user_id ASC`

	rows, err := r.pool.Query(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LeaderboardRow
	for rows.Next() {
		var lr LeaderboardRow
		if err := rows.Scan(&lr.UserID, &lr.Name, &lr.Email, &lr.College, &lr.Year,
			&lr.QuestionSet, &lr.Language, &lr.Score, &lr.TimeTakenSeconds, &lr.StartedAt,
			&lr.IsSubmitted, &lr.TabSwitchCount, &lr.IsDisqualified, &lr.DisqualificationReason); err != nil {
			return nil, err
		}
		results = append(results, lr)
	}
	return results, rows.Err()
}
