package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of the exam.
// Transitions are linear: waiting → live → ended. A reset deletes the
// exam entirely and the next access recreates one in waiting.
type ExamStatus string

const (
	ExamStatusWaiting ExamStatus = "waiting"
	ExamStatusLive    ExamStatus = "live"
	ExamStatusEnded   ExamStatus = "ended"
)

// Exam represents the single current exam run. The most recently created
// row is the current one; all submission lookups are scoped to it.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Status          ExamStatus `json:"status"`
	DurationMinutes int        `json:"duration_minutes"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RemainingSeconds returns the seconds left until the exam ends, floored
// at zero. Returns zero when the exam has no end time yet.
func (e *Exam) RemainingSeconds(now time.Time) int {
	if e.EndTime == nil {
		return 0
	}
	remaining := int(e.EndTime.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
