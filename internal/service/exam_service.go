package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// ExamService owns the exam lifecycle: waiting → live → ended, plus the
// reset back to a blank slate. There is exactly one current exam (the most
// recently created row); every other service scopes its work to it.
type ExamService struct {
	examStore       ExamStore
	subStore        SubmissionStore
	rdb             *redis.Client
	defaultDuration int
	log             zerolog.Logger
}

// NewExamService creates a new ExamService. defaultDuration is the minute
// duration given to lazily created exams.
func NewExamService(examStore ExamStore, subStore SubmissionStore, rdb *redis.Client, defaultDuration int, log zerolog.Logger) *ExamService {
	return &ExamService{
		examStore:       examStore,
		subStore:        subStore,
		rdb:             rdb,
		defaultDuration: defaultDuration,
		log:             log.With().Str("component", "exam_service").Logger(),
	}
}

// Current returns the current exam, creating one in waiting state if none
// exists yet.
func (s *ExamService) Current(ctx context.Context) (*model.Exam, error) {
	exam, err := s.examStore.Current(ctx)
	if err == nil {
		return exam, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get current exam: %w", err)
	}

	exam = &model.Exam{
		Status:          model.ExamStatusWaiting,
		DurationMinutes: s.defaultDuration,
	}
	if err := s.examStore.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Msg("Exam created in waiting state")
	return exam, nil
}

// Start transitions the exam from waiting to live and stamps the timing
// window. Starting a live or ended exam fails with ErrInvalidTransition.
func (s *ExamService) Start(ctx context.Context) (*model.Exam, error) {
	exam, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if exam.Status != model.ExamStatusWaiting {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	end := now.Add(time.Duration(exam.DurationMinutes) * time.Minute)
	exam.Status = model.ExamStatusLive
	exam.StartTime = &now
	exam.EndTime = &end

	if err := s.examStore.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}

	// Best-effort cache of the end time for cheap remaining-time reads.
	if err := s.rdb.Set(ctx, config.CacheKey.ExamEndTimeKey(exam.ID.String()), end.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache exam end time")
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Time("end_time", end).
		Int("duration_minutes", exam.DurationMinutes).
		Msg("Exam started")
	return exam, nil
}

// End transitions the exam to ended and freezes every still-open
// submission in one bulk write. Ending an already-ended exam is a no-op
// success.
func (s *ExamService) End(ctx context.Context) (*model.Exam, error) {
	exam, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if exam.Status == model.ExamStatusEnded {
		return exam, nil
	}

	now := time.Now()
	exam.Status = model.ExamStatusEnded
	exam.EndTime = &now

	if err := s.examStore.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("end exam: %w", err)
	}

	frozen, err := s.subStore.FreezeOpenByExam(ctx, exam.ID, now)
	if err != nil {
		// The exam is already marked ended; the freeze is best-effort and
		// the next read of an open ledger still sees the ended phase.
		s.log.Error().Err(err).Msg("Bulk submission freeze failed")
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int64("frozen_submissions", frozen).
		Msg("Exam ended")
	return exam, nil
}

// Reset deletes the current exam and all its submissions, returning the
// system to the state where no exam was ever created.
func (s *ExamService) Reset(ctx context.Context) error {
	exam, err := s.examStore.Current(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get current exam: %w", err)
	}

	examID := exam.ID.String()
	if err := s.rdb.Del(ctx,
		config.CacheKey.ExamEndTimeKey(examID),
		config.CacheKey.LeaderboardKey(examID),
	).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear exam caches")
	}

	if err := s.examStore.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete exams: %w", err)
	}

	s.log.Info().Str("exam_id", examID).Msg("Exam reset")
	return nil
}
