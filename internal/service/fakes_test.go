package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// In-memory fakes for the store interfaces. They mirror the repository
// contract: absent rows come back as pgx.ErrNoRows.

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, rc.Ping(context.Background()).Err())
	return rc
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// ─── Exam store ─────────────────────────────────────────────────────────

type fakeExamStore struct {
	mu   sync.Mutex
	exam *model.Exam
}

func (f *fakeExamStore) Current(context.Context) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exam == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *f.exam
	return &cp, nil
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.exam = &cp
	return nil
}

func (f *fakeExamStore) Update(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.exam = &cp
	return nil
}

func (f *fakeExamStore) DeleteAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exam = nil
	return nil
}

// ─── Submission store ───────────────────────────────────────────────────

type fakeSubmissionStore struct {
	mu   sync.Mutex
	subs map[string]*model.Submission

	// rows, when set, is returned verbatim by ListRowsByExam.
	rows []repository.LeaderboardRow

	// beforeMutate, when set, runs against the ledger before the Mutate
	// callback, simulating a concurrent writer.
	beforeMutate func(*model.Submission)
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{subs: make(map[string]*model.Submission)}
}

func subKey(userID, examID uuid.UUID) string {
	return userID.String() + "/" + examID.String()
}

func cloneSubmission(s *model.Submission) *model.Submission {
	raw, _ := json.Marshal(s)
	cp := &model.Submission{}
	_ = json.Unmarshal(raw, cp)
	return cp
}

func (f *fakeSubmissionStore) GetByUserAndExam(_ context.Context, userID, examID uuid.UUID) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[subKey(userID, examID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneSubmission(s), nil
}

func (f *fakeSubmissionStore) CreateIfAbsent(_ context.Context, s *model.Submission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := subKey(s.UserID, s.ExamID)
	if _, ok := f.subs[key]; ok {
		return false, nil
	}
	s.ID = uuid.New()
	s.StartedAt = time.Now()
	if s.Records == nil {
		s.Records = []model.QuestionRecord{}
	}
	f.subs[key] = cloneSubmission(s)
	return true, nil
}

func (f *fakeSubmissionStore) Mutate(_ context.Context, userID, examID uuid.UUID, fn func(*model.Submission) error) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := subKey(userID, examID)
	stored, ok := f.subs[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	working := cloneSubmission(stored)
	if f.beforeMutate != nil {
		// The simulated concurrent writer commits before fn observes the row.
		f.beforeMutate(working)
		f.subs[key] = cloneSubmission(working)
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	f.subs[key] = cloneSubmission(working)
	return working, nil
}

func (f *fakeSubmissionStore) IncrementTabSwitch(_ context.Context, userID, examID uuid.UUID) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[subKey(userID, examID)]
	if !ok || s.IsSubmitted {
		return 0, false, pgx.ErrNoRows
	}
	s.TabSwitchCount++
	return s.TabSwitchCount, s.IsDisqualified, nil
}

func (f *fakeSubmissionStore) Disqualify(_ context.Context, userID, examID uuid.UUID, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[subKey(userID, examID)]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if s.IsDisqualified {
		return false, nil
	}
	s.IsDisqualified = true
	s.DisqualificationReason = reason
	return true, nil
}

func (f *fakeSubmissionStore) FreezeOpenByExam(_ context.Context, examID uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var frozen int64
	for _, s := range f.subs {
		if s.ExamID != examID || s.IsSubmitted {
			continue
		}
		s.IsSubmitted = true
		stamp := at
		s.SubmittedAt = &stamp
		taken := int(at.Sub(s.StartedAt).Seconds())
		if taken < 0 {
			taken = 0
		}
		s.TimeTakenSeconds = taken
		frozen++
	}
	return frozen, nil
}

func (f *fakeSubmissionStore) ListRowsByExam(_ context.Context, examID uuid.UUID, onlySubmitted bool) ([]repository.LeaderboardRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.LeaderboardRow
	for _, row := range f.rows {
		if onlySubmitted && !row.IsSubmitted {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// get returns the stored ledger for direct assertions.
func (f *fakeSubmissionStore) get(userID, examID uuid.UUID) *model.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneSubmission(f.subs[subKey(userID, examID)])
}

// put stores a ledger directly, bypassing CreateIfAbsent.
func (f *fakeSubmissionStore) put(s *model.Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	f.subs[subKey(s.UserID, s.ExamID)] = cloneSubmission(s)
}

// ─── User store ─────────────────────────────────────────────────────────

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

// ─── Question store ─────────────────────────────────────────────────────

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) ListActive(_ context.Context, set model.QuestionSet) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, q := range f.questions {
		if q.IsActive && q.QuestionSet == set {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) List(context.Context) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, q := range f.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

// ─── Evaluator ──────────────────────────────────────────────────────────

// fakeEvaluator returns scripted verdicts in order and counts calls.
type fakeEvaluator struct {
	mu       sync.Mutex
	verdicts []model.Verdict
	err      error
	calls    int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ model.Language, _ model.LanguageBlock, _ string) (model.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.verdicts) == 0 {
		return model.VerdictWrongAnswer, nil
	}
	v := f.verdicts[0]
	if len(f.verdicts) > 1 {
		f.verdicts = f.verdicts[1:]
	}
	return v, nil
}

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
