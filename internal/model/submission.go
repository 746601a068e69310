package model

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the closed-set outcome of judging one attempt.
type Verdict string

const (
	VerdictPending           Verdict = "PENDING"
	VerdictAccepted          Verdict = "ACCEPTED"
	VerdictWrongAnswer       Verdict = "WRONG_ANSWER"
	VerdictCompileError      Verdict = "COMPILE_ERROR"
	VerdictRuntimeError      Verdict = "RUNTIME_ERROR"
	VerdictTimeLimitExceeded Verdict = "TIME_LIMIT_EXCEEDED"
)

// MaxAttemptsPerQuestion caps evaluated attempts per question while the
// record is not accept-locked.
const MaxAttemptsPerQuestion = 5

// DisqualificationReasonTabSwitches is the canonical reason recorded when
// the tab-switch threshold is reached.
const DisqualificationReasonTabSwitches = "Multiple tab switches detected"

// Attempt is one judged code submission.
type Attempt struct {
	Code       string    `json:"code"`
	Verdict    Verdict   `json:"verdict"`
	ExecutedAt time.Time `json:"executed_at"`
}

// QuestionRecord is the per-question attempt history inside a submission.
// Once FinalVerdict reaches ACCEPTED the record is locked: no further
// attempts are evaluated or appended and FinalCode never changes.
type QuestionRecord struct {
	QuestionID     uuid.UUID  `json:"question_id"`
	Attempts       []Attempt  `json:"attempts"`
	FinalCode      string     `json:"final_code"`
	FinalVerdict   Verdict    `json:"final_verdict"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
}

// Locked reports whether the record is accept-locked.
func (r *QuestionRecord) Locked() bool {
	return r.FinalVerdict == VerdictAccepted
}

// Submission is the per-user, per-exam ledger: attempt history, score and
// anti-cheat state. Unique per (user, exam).
type Submission struct {
	ID                     uuid.UUID        `json:"id"`
	UserID                 uuid.UUID        `json:"user_id"`
	ExamID                 uuid.UUID        `json:"exam_id"`
	StartedAt              time.Time        `json:"started_at"`
	SubmittedAt            *time.Time       `json:"submitted_at,omitempty"`
	IsSubmitted            bool             `json:"is_submitted"`
	Records                []QuestionRecord `json:"records"`
	Score                  int              `json:"score"`
	TabSwitchCount         int              `json:"tab_switch_count"`
	IsDisqualified         bool             `json:"is_disqualified"`
	DisqualificationReason string           `json:"disqualification_reason,omitempty"`
	TimeTakenSeconds       int              `json:"time_taken_seconds"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// RecordFor returns the record for the given question, or nil if the user
// has not touched it yet.
func (s *Submission) RecordFor(questionID uuid.UUID) *QuestionRecord {
	for i := range s.Records {
		if s.Records[i].QuestionID == questionID {
			return &s.Records[i]
		}
	}
	return nil
}

// RecomputeScore sets Score to the count of accept-locked records and
// returns the new value.
func (s *Submission) RecomputeScore() int {
	score := 0
	for i := range s.Records {
		if s.Records[i].FinalVerdict == VerdictAccepted {
			score++
		}
	}
	s.Score = score
	return score
}

// ApplyAttempt appends an attempt for the question, creating the record on
// first touch, mirrors the verdict into FinalVerdict, captures FinalCode on
// acceptance and recomputes the score.
func (s *Submission) ApplyAttempt(questionID uuid.UUID, att Attempt) {
	rec := s.RecordFor(questionID)
	if rec == nil {
		s.Records = append(s.Records, QuestionRecord{QuestionID: questionID})
		rec = &s.Records[len(s.Records)-1]
	}

	executed := att.ExecutedAt
	rec.Attempts = append(rec.Attempts, att)
	rec.FinalVerdict = att.Verdict
	rec.LastExecutedAt = &executed
	if att.Verdict == VerdictAccepted {
		rec.FinalCode = att.Code
	}

	s.RecomputeScore()
}

// Finalize marks the submission as submitted at the given instant and
// derives TimeTakenSeconds and the final score. Calling it on an already
// submitted ledger is a no-op.
func (s *Submission) Finalize(at time.Time) {
	if s.IsSubmitted {
		return
	}
	s.IsSubmitted = true
	s.SubmittedAt = &at
	s.TimeTakenSeconds = int(at.Sub(s.StartedAt).Seconds())
	s.RecomputeScore()
}
