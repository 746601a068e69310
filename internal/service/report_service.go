package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// ReportAttempt is one numbered attempt inside a report.
type ReportAttempt struct {
	AttemptNo int           `json:"attempt_no"`
	Verdict   model.Verdict `json:"verdict"`
	Code      string        `json:"code"`
}

// ReportQuestion is the per-question section of a participant report.
type ReportQuestion struct {
	QuestionCode     string          `json:"question_code"`
	ProblemStatement string          `json:"problem_statement"`
	BuggyCode        string          `json:"buggy_code"`
	FinalVerdict     model.Verdict   `json:"final_verdict"`
	FinalCode        string          `json:"final_code"`
	Attempts         []ReportAttempt `json:"attempts"`
}

// ReportDocument is the finalized per-participant report consumed by the
// external renderer.
type ReportDocument struct {
	User             *model.User      `json:"user"`
	Score            int              `json:"score"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
	TabSwitchCount   int              `json:"tab_switch_count"`
	IsDisqualified   bool             `json:"is_disqualified"`
	Reason           string           `json:"reason,omitempty"`
	Questions        []ReportQuestion `json:"questions"`
}

// ReportService builds report documents and the all-submissions summary for
// organizers. Rendering (PDF etc.) is an external concern.
type ReportService struct {
	examStore ExamStore
	subs      SubmissionStore
	users     UserStore
	questions QuestionStore
}

// NewReportService creates a new ReportService.
func NewReportService(examStore ExamStore, subs SubmissionStore, users UserStore, questions QuestionStore) *ReportService {
	return &ReportService{
		examStore: examStore,
		subs:      subs,
		users:     users,
		questions: questions,
	}
}

// UserReport assembles the full report for one participant in the current
// exam. Absent exam/submission/user propagate as pgx.ErrNoRows.
func (s *ReportService) UserReport(ctx context.Context, userID uuid.UUID) (*ReportDocument, error) {
	exam, err := s.examStore.Current(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.GetByUserAndExam(ctx, userID, exam.ID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc := &ReportDocument{
		User:             user,
		Score:            sub.Score,
		TimeTakenSeconds: sub.TimeTakenSeconds,
		TabSwitchCount:   sub.TabSwitchCount,
		IsDisqualified:   sub.IsDisqualified,
		Reason:           sub.DisqualificationReason,
		Questions:        make([]ReportQuestion, 0, len(sub.Records)),
	}

	for i, rec := range sub.Records {
		rq := ReportQuestion{
			QuestionCode: fmt.Sprintf("Q-%d", i+1), // Fallback when the question was deleted
			FinalVerdict: rec.FinalVerdict,
			FinalCode:    rec.FinalCode,
			Attempts:     make([]ReportAttempt, 0, len(rec.Attempts)),
		}

		if question, err := s.questions.GetByID(ctx, rec.QuestionID); err == nil {
			rq.QuestionCode = question.QuestionCode
			rq.ProblemStatement = question.ProblemStatement
			if block, ok := question.LanguageBlockFor(user.Language); ok {
				rq.BuggyCode = block.BuggyCode
			}
		}

		for n, att := range rec.Attempts {
			rq.Attempts = append(rq.Attempts, ReportAttempt{
				AttemptNo: n + 1,
				Verdict:   att.Verdict,
				Code:      att.Code,
			})
		}

		doc.Questions = append(doc.Questions, rq)
	}

	return doc, nil
}

// Summary lists every submission of the current exam (submitted or not)
// joined with participant fields, for the organizer overview panel.
func (s *ReportService) Summary(ctx context.Context) ([]repository.LeaderboardRow, error) {
	exam, err := s.examStore.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.subs.ListRowsByExam(ctx, exam.ID, false)
}
