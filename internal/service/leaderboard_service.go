package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// RankDisqualified is the sentinel rank marker for disqualified entries.
const RankDisqualified = "DQ"

// defaultDQReason is shown when a disqualified ledger carries no reason.
const defaultDQReason = "Security violation"

// leaderboardCacheTTL bounds the final-board cache; a reset clears it
// explicitly, the TTL just guards against stale leftovers.
const leaderboardCacheTTL = 24 * time.Hour

// LeaderboardEntry is one row of the published ranking.
type LeaderboardEntry struct {
	Rank             string            `json:"rank"`
	Name             string            `json:"name"`
	College          string            `json:"college"`
	Year             int               `json:"year"`
	QuestionSet      model.QuestionSet `json:"question_set"`
	Score            int               `json:"score"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
	IsDisqualified   bool              `json:"is_disqualified"`
	Reason           string            `json:"reason,omitempty"`
}

// Leaderboard is the full ranking response.
type Leaderboard struct {
	ExamStatus model.ExamStatus   `json:"exam_status"`
	Entries    []LeaderboardEntry `json:"entries"`
}

// LeaderboardService derives the ranking from frozen ledgers. Before the
// exam ends only admin callers may read it; afterwards the finalized board
// is cached in Redis.
type LeaderboardService struct {
	examStore ExamStore
	subs      SubmissionStore
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(examStore ExamStore, subs SubmissionStore, rdb *redis.Client, log zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		examStore: examStore,
		subs:      subs,
		rdb:       rdb,
		log:       log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Leaderboard returns the ranking over submitted ledgers. Participants may
// only read it once the exam has ended (ErrLeaderboardNotAvailable before
// that); admin callers can peek mid-exam. When no exam exists the board is
// empty with waiting status — deliberately not lazily creating one.
func (s *LeaderboardService) Leaderboard(ctx context.Context, isAdmin bool) (*Leaderboard, error) {
	exam, err := s.examStore.Current(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Leaderboard{ExamStatus: model.ExamStatusWaiting, Entries: []LeaderboardEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current exam: %w", err)
	}

	if exam.Status != model.ExamStatusEnded && !isAdmin {
		return nil, ErrLeaderboardNotAvailable
	}

	cacheKey := config.CacheKey.LeaderboardKey(exam.ID.String())
	if exam.Status == model.ExamStatusEnded {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			board := &Leaderboard{}
			if err := json.Unmarshal(cached, board); err == nil {
				return board, nil
			}
		}
	}

	rows, err := s.subs.ListRowsByExam(ctx, exam.ID, true)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	board := &Leaderboard{
		ExamStatus: exam.Status,
		Entries:    rankRows(rows),
	}

	if exam.Status == model.ExamStatusEnded {
		if payload, err := json.Marshal(board); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache leaderboard")
			}
		}
	}

	return board, nil
}

// rankRows produces the total order: qualified rows sorted by score desc,
// then time asc, then started_at and user id for full determinism, ranked
// 1..N; disqualified rows follow with the DQ marker, keeping their earned
// score and time for audit.
func rankRows(rows []repository.LeaderboardRow) []LeaderboardEntry {
	var qualified, disqualified []repository.LeaderboardRow
	for _, row := range rows {
		if row.IsDisqualified {
			disqualified = append(disqualified, row)
		} else {
			qualified = append(qualified, row)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		a, b := qualified[i], qualified[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TimeTakenSeconds != b.TimeTakenSeconds {
			return a.TimeTakenSeconds < b.TimeTakenSeconds
		}
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.Before(b.StartedAt)
		}
		return a.UserID.String() < b.UserID.String()
	})

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range qualified {
		entries = append(entries, LeaderboardEntry{
			Rank:             strconv.Itoa(i + 1),
			Name:             row.Name,
			College:          row.College,
			Year:             row.Year,
			QuestionSet:      row.QuestionSet,
			Score:            row.Score,
			TimeTakenSeconds: row.TimeTakenSeconds,
		})
	}
	for _, row := range disqualified {
		reason := row.DisqualificationReason
		if reason == "" {
			reason = defaultDQReason
		}
		entries = append(entries, LeaderboardEntry{
			Rank:             RankDisqualified,
			Name:             row.Name,
			College:          row.College,
			Year:             row.Year,
			QuestionSet:      row.QuestionSet,
			Score:            row.Score,
			TimeTakenSeconds: row.TimeTakenSeconds,
			IsDisqualified:   true,
			Reason:           reason,
		})
	}
	return entries
}
