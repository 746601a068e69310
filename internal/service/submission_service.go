package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// errRaceLocked signals that a racing request accept-locked the record
// between the evaluator call and the persisting write. It never leaves
// RecordAttempt.
var errRaceLocked = errors.New("record locked by concurrent attempt")

// JoinResult is returned when a participant joins the live exam.
type JoinResult struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	IsDisqualified   bool `json:"is_disqualified"`
}

// AttemptResult is the outcome of one code submission.
type AttemptResult struct {
	Verdict      model.Verdict `json:"verdict"`
	Locked       bool          `json:"locked"`
	Score        int           `json:"score"`
	AttemptsUsed int           `json:"attempts_used"`
}

// SubmitResult is the outcome of finalizing an exam session.
type SubmitResult struct {
	Score            int  `json:"score"`
	TimeTakenSeconds int  `json:"time_taken_seconds"`
	AlreadySubmitted bool `json:"already_submitted"`
}

// SubmissionService owns the submission ledger: joining the exam, judging
// attempts under the per-question cap and accept-lock, and finalizing.
type SubmissionService struct {
	exams     *ExamService
	subs      SubmissionStore
	users     UserStore
	questions QuestionStore
	evaluator CodeEvaluator
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	exams *ExamService,
	subs SubmissionStore,
	users UserStore,
	questions QuestionStore,
	evaluator CodeEvaluator,
	rdb *redis.Client,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		exams:     exams,
		subs:      subs,
		users:     users,
		questions: questions,
		evaluator: evaluator,
		rdb:       rdb,
		log:       log.With().Str("component", "submission_service").Logger(),
	}
}

// Join creates-or-fetches the participant's ledger for the live exam.
// Fails with ErrExamNotLive outside the live phase. Concurrent joins by the
// same user settle on a single ledger via the (user, exam) uniqueness
// constraint: the losing insert simply refetches.
func (s *SubmissionService) Join(ctx context.Context, userID uuid.UUID) (*JoinResult, error) {
	exam, err := s.exams.Current(ctx)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusLive {
		return nil, ErrExamNotLive
	}

	sub := &model.Submission{UserID: userID, ExamID: exam.ID}
	created, err := s.subs.CreateIfAbsent(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	if created {
		s.log.Info().
			Str("user_id", userID.String()).
			Str("exam_id", exam.ID.String()).
			Msg("Participant joined exam")
	}

	// Whether we created or lost the race, read the authoritative row for
	// the disqualification flag.
	sub, err = s.subs.GetByUserAndExam(ctx, userID, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch submission: %w", err)
	}

	// Best-effort end-time cache so clients polling remaining time do not
	// hit the exam row.
	if exam.EndTime != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.ExamEndTimeKey(exam.ID.String()), exam.EndTime.Unix(), 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache exam end time")
		}
	}

	return &JoinResult{
		RemainingSeconds: exam.RemainingSeconds(time.Now()),
		IsDisqualified:   sub.IsDisqualified,
	}, nil
}

// RecordAttempt judges one code submission for a question and appends it to
// the ledger. Guard order matters: session and disqualification state
// first, then question/language resolution, the no-op-code check, the
// accept-lock short circuit (a read, never a judge call) and the attempt
// cap — only then is the judge invoked. The judge call runs outside any
// lock; the persisting write re-checks every invariant under a row lock.
func (s *SubmissionService) RecordAttempt(ctx context.Context, userID, questionID uuid.UUID, code string) (*AttemptResult, error) {
	exam, err := s.exams.Current(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.GetByUserAndExam(ctx, userID, exam.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("fetch submission: %w", err)
	}
	if sub.IsSubmitted {
		return nil, ErrSessionNotActive
	}
	if sub.IsDisqualified {
		return nil, ErrDisqualified
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	block, ok := question.LanguageBlockFor(user.Language)
	if !ok {
		return nil, ErrLanguageUnsupported
	}

	if strings.TrimSpace(code) == strings.TrimSpace(block.BuggyCode) {
		return nil, ErrNoOpCode
	}

	if rec := sub.RecordFor(questionID); rec != nil {
		if rec.Locked() {
			return &AttemptResult{
				Verdict:      model.VerdictAccepted,
				Locked:       true,
				Score:        sub.Score,
				AttemptsUsed: len(rec.Attempts),
			}, nil
		}
		if len(rec.Attempts) >= model.MaxAttemptsPerQuestion {
			return nil, ErrAttemptCapExceeded
		}
	}

	// The only unbounded-latency step. No submission lock is held here.
	verdict, err := s.evaluator.Evaluate(ctx, user.Language, block, code)
	if err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("question_id", questionID.String()).
			Msg("Evaluation failed, no attempt recorded")
		return nil, err
	}

	now := time.Now()
	updated, err := s.subs.Mutate(ctx, userID, exam.ID, func(led *model.Submission) error {
		if led.IsSubmitted {
			return ErrSessionNotActive
		}
		if led.IsDisqualified {
			return ErrDisqualified
		}
		if rec := led.RecordFor(questionID); rec != nil {
			if rec.Locked() {
				return errRaceLocked
			}
			if len(rec.Attempts) >= model.MaxAttemptsPerQuestion {
				return ErrAttemptCapExceeded
			}
		}
		led.ApplyAttempt(questionID, model.Attempt{Code: code, Verdict: verdict, ExecutedAt: now})
		return nil
	})
	if errors.Is(err, errRaceLocked) {
		// A duplicate request won the accept race; report the locked state.
		current, fetchErr := s.subs.GetByUserAndExam(ctx, userID, exam.ID)
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch after lock race: %w", fetchErr)
		}
		rec := current.RecordFor(questionID)
		return &AttemptResult{
			Verdict:      model.VerdictAccepted,
			Locked:       true,
			Score:        current.Score,
			AttemptsUsed: len(rec.Attempts),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	rec := updated.RecordFor(questionID)
	s.log.Info().
		Str("user_id", userID.String()).
		Str("question_id", questionID.String()).
		Str("verdict", string(verdict)).
		Int("score", updated.Score).
		Msg("Attempt recorded")

	return &AttemptResult{
		Verdict:      verdict,
		Locked:       verdict == model.VerdictAccepted,
		Score:        updated.Score,
		AttemptsUsed: len(rec.Attempts),
	}, nil
}

// Submit finalizes the participant's session: stamps submitted_at, derives
// time taken and recomputes the score. Idempotent — submitting with no open
// ledger reports success without changing anything.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID) (*SubmitResult, error) {
	exam, err := s.exams.Current(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.GetByUserAndExam(ctx, userID, exam.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &SubmitResult{AlreadySubmitted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch submission: %w", err)
	}
	if sub.IsSubmitted {
		return &SubmitResult{
			Score:            sub.Score,
			TimeTakenSeconds: sub.TimeTakenSeconds,
			AlreadySubmitted: true,
		}, nil
	}

	now := time.Now()
	updated, err := s.subs.Mutate(ctx, userID, exam.ID, func(led *model.Submission) error {
		led.Finalize(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize submission: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int("score", updated.Score).
		Int("time_taken_seconds", updated.TimeTakenSeconds).
		Msg("Exam submitted")

	return &SubmitResult{
		Score:            updated.Score,
		TimeTakenSeconds: updated.TimeTakenSeconds,
	}, nil
}
