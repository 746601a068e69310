package model

import (
	"time"

	"github.com/google/uuid"
)

// Language enumerates the programming languages a participant can compete in.
type Language string

const (
	LanguageC      Language = "c"
	LanguageJava   Language = "java"
	LanguagePython Language = "python"
)

// QuestionSet is the coarse cohort tag selecting which question pool a
// participant draws from. Years 1-2 get set A, years 3-4 get set B.
type QuestionSet string

const (
	QuestionSetA QuestionSet = "A"
	QuestionSetB QuestionSet = "B"
)

// QuestionSetForYear maps an academic year to its question set.
func QuestionSetForYear(year int) QuestionSet {
	if year <= 2 {
		return QuestionSetA
	}
	return QuestionSetB
}

// User represents a registered participant.
type User struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	College     string      `json:"college"`
	Year        int         `json:"year"`
	Language    Language    `json:"language"`
	QuestionSet QuestionSet `json:"question_set"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RegisterRequest is the payload for participant registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	College  string `json:"college" binding:"required,min=2,max=150"`
	Year     int    `json:"year" binding:"required,min=1,max=4"`
	Language string `json:"language" binding:"required,oneof=c java python"`
}
