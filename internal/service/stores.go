package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them; tests swap in in-memory fakes. Absent rows are reported as
// pgx.ErrNoRows, matching the repositories.

// ExamStore is the persistence surface of the exam lifecycle.
type ExamStore interface {
	Current(ctx context.Context) (*model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	DeleteAll(ctx context.Context) error
}

// SubmissionStore is the persistence surface of the submission ledger.
type SubmissionStore interface {
	GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.Submission, error)
	CreateIfAbsent(ctx context.Context, s *model.Submission) (bool, error)
	Mutate(ctx context.Context, userID, examID uuid.UUID, fn func(*model.Submission) error) (*model.Submission, error)
	IncrementTabSwitch(ctx context.Context, userID, examID uuid.UUID) (count int, disqualified bool, err error)
	Disqualify(ctx context.Context, userID, examID uuid.UUID, reason string) (bool, error)
	FreezeOpenByExam(ctx context.Context, examID uuid.UUID, at time.Time) (int64, error)
	ListRowsByExam(ctx context.Context, examID uuid.UUID, onlySubmitted bool) ([]repository.LeaderboardRow, error)
}

// UserStore is the persistence surface of participant accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// QuestionStore is the read/write surface of the question bank.
type QuestionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListActive(ctx context.Context, set model.QuestionSet) ([]model.Question, error)
	List(ctx context.Context) ([]model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
}
