package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

func makeAntiCheatFixture(t *testing.T, limit int) (*service.AntiCheatService, *service.ExamService, *fakeSubmissionStore, *redis.Client) {
	t.Helper()
	examStore := &fakeExamStore{}
	subStore := newFakeSubmissionStore()
	rdb := newTestRedis(t)
	exams := service.NewExamService(examStore, subStore, rdb, 10, testLogger())
	svc := service.NewAntiCheatService(exams, subStore, rdb, limit, testLogger())
	return svc, exams, subStore, rdb
}

func TestRecordTabSwitch_DisqualifiesAtThreshold(t *testing.T) {
	svc, exams, subStore, rdb := makeAntiCheatFixture(t, 3)

	exam, err := exams.Start(context.Background())
	require.NoError(t, err)

	userID := uuid.New()
	subStore.put(&model.Submission{UserID: userID, ExamID: exam.ID, Score: 2})

	for i := 1; i <= 2; i++ {
		result, err := svc.RecordTabSwitch(context.Background(), userID)
		require.NoError(t, err)
		require.Equal(t, i, result.TabSwitchCount)
		require.False(t, result.IsDisqualified)
	}

	result, err := svc.RecordTabSwitch(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 3, result.TabSwitchCount)
	require.True(t, result.IsDisqualified)

	stored := subStore.get(userID, exam.ID)
	require.True(t, stored.IsDisqualified)
	require.Equal(t, model.DisqualificationReasonTabSwitches, stored.DisqualificationReason)
	require.Equal(t, 2, stored.Score, "disqualification keeps the earned score")

	// Every event lands on the audit queue.
	queued, err := rdb.LLen(context.Background(), config.WorkerKey.CheatEventsQueue).Result()
	require.NoError(t, err)
	require.EqualValues(t, 3, queued)
}

func TestRecordTabSwitch_NeverReverts(t *testing.T) {
	svc, exams, subStore, _ := makeAntiCheatFixture(t, 2)

	exam, err := exams.Start(context.Background())
	require.NoError(t, err)

	userID := uuid.New()
	subStore.put(&model.Submission{UserID: userID, ExamID: exam.ID})

	for i := 1; i <= 5; i++ {
		result, err := svc.RecordTabSwitch(context.Background(), userID)
		require.NoError(t, err)
		require.Equal(t, i, result.TabSwitchCount, "counter is strictly monotonic")
		if i >= 2 {
			require.True(t, result.IsDisqualified)
		}
	}

	stored := subStore.get(userID, exam.ID)
	require.True(t, stored.IsDisqualified)
	require.Equal(t, 5, stored.TabSwitchCount)
}

func TestRecordTabSwitch_RequiresOpenSession(t *testing.T) {
	svc, exams, subStore, _ := makeAntiCheatFixture(t, 3)

	exam, err := exams.Start(context.Background())
	require.NoError(t, err)

	// No ledger at all.
	_, err = svc.RecordTabSwitch(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrSessionNotActive)

	// Submitted ledgers are closed to further events.
	userID := uuid.New()
	subStore.put(&model.Submission{UserID: userID, ExamID: exam.ID, IsSubmitted: true})
	_, err = svc.RecordTabSwitch(context.Background(), userID)
	require.ErrorIs(t, err, service.ErrSessionNotActive)
}
