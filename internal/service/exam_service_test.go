package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

func makeExamService(t *testing.T) (*service.ExamService, *fakeExamStore, *fakeSubmissionStore) {
	t.Helper()
	examStore := &fakeExamStore{}
	subStore := newFakeSubmissionStore()
	svc := service.NewExamService(examStore, subStore, newTestRedis(t), 10, testLogger())
	return svc, examStore, subStore
}

func TestExamService_CurrentLazilyCreates(t *testing.T) {
	svc, _, _ := makeExamService(t)

	exam, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.ExamStatusWaiting, exam.Status)
	require.Equal(t, 10, exam.DurationMinutes)
	require.NotEqual(t, uuid.Nil, exam.ID)

	again, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, exam.ID, again.ID, "repeat reads must return the same exam")
}

func TestExamService_StartStampsWindow(t *testing.T) {
	svc, _, _ := makeExamService(t)

	exam, err := svc.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.ExamStatusLive, exam.Status)
	require.NotNil(t, exam.StartTime)
	require.NotNil(t, exam.EndTime)
	require.Equal(t, 10*time.Minute, exam.EndTime.Sub(*exam.StartTime))

	remaining := exam.RemainingSeconds(time.Now())
	require.Greater(t, remaining, 590)
	require.LessOrEqual(t, remaining, 600)
}

func TestExamService_StartOnlyFromWaiting(t *testing.T) {
	svc, _, _ := makeExamService(t)

	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	_, err = svc.Start(context.Background())
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = svc.End(context.Background())
	require.NoError(t, err)

	_, err = svc.Start(context.Background())
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestExamService_EndFreezesOpenSubmissions(t *testing.T) {
	svc, _, subStore := makeExamService(t)

	exam, err := svc.Start(context.Background())
	require.NoError(t, err)

	openUser := uuid.New()
	subStore.put(&model.Submission{
		UserID:    openUser,
		ExamID:    exam.ID,
		StartedAt: time.Now().Add(-2 * time.Minute),
	})

	doneUser := uuid.New()
	done := &model.Submission{UserID: doneUser, ExamID: exam.ID, IsSubmitted: true, TimeTakenSeconds: 42}
	subStore.put(done)

	ended, err := svc.End(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.ExamStatusEnded, ended.Status)

	frozen := subStore.get(openUser, exam.ID)
	require.True(t, frozen.IsSubmitted)
	require.NotNil(t, frozen.SubmittedAt)
	require.InDelta(t, 120, frozen.TimeTakenSeconds, 2)

	untouched := subStore.get(doneUser, exam.ID)
	require.Equal(t, 42, untouched.TimeTakenSeconds, "already submitted ledgers keep their duration")

	// Ending twice is a no-op success.
	_, err = svc.End(context.Background())
	require.NoError(t, err)
}

func TestExamService_ResetStartsOver(t *testing.T) {
	svc, examStore, _ := makeExamService(t)

	first, err := svc.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background()))
	require.Nil(t, examStore.exam)

	second, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, model.ExamStatusWaiting, second.Status)
}

func TestExamService_ResetWithoutExamIsNoOp(t *testing.T) {
	svc, _, _ := makeExamService(t)
	require.NoError(t, svc.Reset(context.Background()))
}
