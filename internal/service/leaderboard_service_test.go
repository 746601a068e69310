package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

func makeLeaderboardFixture(t *testing.T) (*service.LeaderboardService, *fakeExamStore, *fakeSubmissionStore) {
	t.Helper()
	examStore := &fakeExamStore{}
	subStore := newFakeSubmissionStore()
	svc := service.NewLeaderboardService(examStore, subStore, newTestRedis(t), testLogger())
	return svc, examStore, subStore
}

func endedExam() *model.Exam {
	now := time.Now()
	return &model.Exam{
		ID:        uuid.New(),
		Status:    model.ExamStatusEnded,
		StartTime: &now,
		EndTime:   &now,
		CreatedAt: now,
	}
}

func TestLeaderboard_EmptyWhenNoExam(t *testing.T) {
	svc, examStore, _ := makeLeaderboardFixture(t)

	board, err := svc.Leaderboard(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, model.ExamStatusWaiting, board.ExamStatus)
	require.Empty(t, board.Entries)
	require.Nil(t, examStore.exam, "reading the board must not create an exam")
}

func TestLeaderboard_GatedBeforeEnd(t *testing.T) {
	svc, examStore, subStore := makeLeaderboardFixture(t)
	examStore.exam = &model.Exam{ID: uuid.New(), Status: model.ExamStatusLive}
	subStore.rows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Name: "A", Score: 1, IsSubmitted: true},
	}

	_, err := svc.Leaderboard(context.Background(), false)
	require.ErrorIs(t, err, service.ErrLeaderboardNotAvailable)

	board, err := svc.Leaderboard(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, model.ExamStatusLive, board.ExamStatus)
	require.Len(t, board.Entries, 1)
}

func TestLeaderboard_RankingOrder(t *testing.T) {
	svc, examStore, subStore := makeLeaderboardFixture(t)
	examStore.exam = endedExam()

	base := time.Now().Add(-time.Hour)
	subStore.rows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Name: "A", Score: 2, TimeTakenSeconds: 300, StartedAt: base, IsSubmitted: true},
		{UserID: uuid.New(), Name: "B", Score: 2, TimeTakenSeconds: 200, StartedAt: base, IsSubmitted: true},
		{UserID: uuid.New(), Name: "C", Score: 3, TimeTakenSeconds: 500, StartedAt: base, IsSubmitted: true, IsDisqualified: true},
		{UserID: uuid.New(), Name: "D", Score: 1, TimeTakenSeconds: 100, StartedAt: base, IsSubmitted: true},
	}

	board, err := svc.Leaderboard(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, board.Entries, 4)

	// Higher score first, faster time breaks ties, disqualified trail with
	// the DQ marker but keep their numbers.
	require.Equal(t, "B", board.Entries[0].Name)
	require.Equal(t, "1", board.Entries[0].Rank)
	require.Equal(t, "A", board.Entries[1].Name)
	require.Equal(t, "2", board.Entries[1].Rank)
	require.Equal(t, "D", board.Entries[2].Name)
	require.Equal(t, "3", board.Entries[2].Rank)

	dq := board.Entries[3]
	require.Equal(t, "C", dq.Name)
	require.Equal(t, service.RankDisqualified, dq.Rank)
	require.True(t, dq.IsDisqualified)
	require.Equal(t, 3, dq.Score)
	require.Equal(t, "Security violation", dq.Reason)
}

func TestLeaderboard_DQReasonPreserved(t *testing.T) {
	svc, examStore, subStore := makeLeaderboardFixture(t)
	examStore.exam = endedExam()
	subStore.rows = []repository.LeaderboardRow{
		{
			UserID: uuid.New(), Name: "C", IsSubmitted: true,
			IsDisqualified:         true,
			DisqualificationReason: model.DisqualificationReasonTabSwitches,
		},
	}

	board, err := svc.Leaderboard(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, model.DisqualificationReasonTabSwitches, board.Entries[0].Reason)
}

func TestLeaderboard_FinalBoardIsCached(t *testing.T) {
	svc, examStore, subStore := makeLeaderboardFixture(t)
	examStore.exam = endedExam()
	subStore.rows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Name: "A", Score: 1, IsSubmitted: true},
	}

	first, err := svc.Leaderboard(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	// Later row changes must not alter the published final board.
	subStore.rows = append(subStore.rows, repository.LeaderboardRow{
		UserID: uuid.New(), Name: "Z", Score: 9, IsSubmitted: true,
	})

	second, err := svc.Leaderboard(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, first.Entries, second.Entries)
}

func TestLeaderboard_ExcludesUnsubmitted(t *testing.T) {
	svc, examStore, subStore := makeLeaderboardFixture(t)
	examStore.exam = &model.Exam{ID: uuid.New(), Status: model.ExamStatusLive}
	subStore.rows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Name: "open", IsSubmitted: false},
		{UserID: uuid.New(), Name: "done", IsSubmitted: true},
	}

	board, err := svc.Leaderboard(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	require.Equal(t, "done", board.Entries[0].Name)
}
