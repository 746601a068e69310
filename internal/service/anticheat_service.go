package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// TabSwitchResult is returned after recording a tab-switch event.
type TabSwitchResult struct {
	TabSwitchCount int  `json:"tab_switch_count"`
	IsDisqualified bool `json:"is_disqualified"`
}

// CheatEvent is the audit payload queued for the cheat audit worker.
type CheatEvent struct {
	UserID         string `json:"user_id"`
	ExamID         string `json:"exam_id"`
	TabSwitchCount int    `json:"tab_switch_count"`
	OccurredAt     int64  `json:"occurred_at"`
}

// AntiCheatService tracks suspicious client signals and disqualifies
// participants who cross the tab-switch threshold.
type AntiCheatService struct {
	exams *ExamService
	subs  SubmissionStore
	rdb   *redis.Client
	limit int
	log   zerolog.Logger
}

// NewAntiCheatService creates a new AntiCheatService. limit is the
// tab-switch count at which a participant is disqualified.
func NewAntiCheatService(exams *ExamService, subs SubmissionStore, rdb *redis.Client, limit int, log zerolog.Logger) *AntiCheatService {
	return &AntiCheatService{
		exams: exams,
		subs:  subs,
		rdb:   rdb,
		limit: limit,
		log:   log.With().Str("component", "anticheat_service").Logger(),
	}
}

// RecordTabSwitch atomically bumps the participant's tab-switch counter and
// disqualifies at the threshold. The threshold check always uses the
// post-increment value returned by the counter update, so duplicate or
// out-of-order events cannot under- or over-count, and the disqualify write
// is guarded so concurrent threshold hits settle on exactly one flip.
func (s *AntiCheatService) RecordTabSwitch(ctx context.Context, userID uuid.UUID) (*TabSwitchResult, error) {
	exam, err := s.exams.Current(ctx)
	if err != nil {
		return nil, err
	}

	count, disqualified, err := s.subs.IncrementTabSwitch(ctx, userID, exam.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("increment tab switches: %w", err)
	}

	if count >= s.limit && !disqualified {
		flipped, err := s.subs.Disqualify(ctx, userID, exam.ID, model.DisqualificationReasonTabSwitches)
		if err != nil {
			return nil, fmt.Errorf("disqualify: %w", err)
		}
		disqualified = true
		if flipped {
			s.log.Warn().
				Str("user_id", userID.String()).
				Int("tab_switch_count", count).
				Msg("Participant disqualified")
		}
	}

	s.enqueueAuditEvent(ctx, userID, exam.ID, count)

	return &TabSwitchResult{TabSwitchCount: count, IsDisqualified: disqualified}, nil
}

// enqueueAuditEvent pushes the raw event onto the Redis audit queue for the
// cheat audit worker. Best-effort: losing an audit row never fails the
// request.
func (s *AntiCheatService) enqueueAuditEvent(ctx context.Context, userID, examID uuid.UUID, count int) {
	payload, err := json.Marshal(CheatEvent{
		UserID:         userID.String(),
		ExamID:         examID.String(),
		TabSwitchCount: count,
		OccurredAt:     time.Now().Unix(),
	})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.CheatEventsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to enqueue cheat audit event")
	}
}
