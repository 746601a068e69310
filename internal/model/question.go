package model

import (
	"time"

	"github.com/google/uuid"
)

// TestCase is one hidden test case: stdin and the expected stdout.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// LanguageBlock carries the per-language material of a question: the buggy
// source handed to participants, an optional wrapper template with a single
// __USER_CODE__ substitution point, and the ordered hidden test cases.
type LanguageBlock struct {
	BuggyCode   string     `json:"buggy_code"`
	WrapperCode string     `json:"wrapper_code,omitempty"`
	TestCases   []TestCase `json:"test_cases"`
}

// Example is a sample input/output pair shown in the problem statement.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Question is a "fix the bug" problem. Immutable during an exam run.
type Question struct {
	ID               uuid.UUID                  `json:"id"`
	QuestionCode     string                     `json:"question_code"`
	ProblemStatement string                     `json:"problem_statement"`
	Constraints      []string                   `json:"constraints"`
	Examples         []Example                  `json:"examples"`
	QuestionSet      QuestionSet                `json:"question_set"`
	Languages        map[Language]LanguageBlock `json:"languages"`
	IsActive         bool                       `json:"is_active"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// LanguageBlockFor returns the block for the given language, or false when
// the question does not support it.
func (q *Question) LanguageBlockFor(lang Language) (LanguageBlock, bool) {
	block, ok := q.Languages[lang]
	return block, ok
}

// QuestionForParticipant is a question as served to participants: the buggy
// code for their language only, with wrapper template and hidden test cases
// stripped.
type QuestionForParticipant struct {
	ID               uuid.UUID `json:"id"`
	QuestionCode     string    `json:"question_code"`
	ProblemStatement string    `json:"problem_statement"`
	Constraints      []string  `json:"constraints"`
	Examples         []Example `json:"examples"`
	BuggyCode        string    `json:"buggy_code"`
}

// CreateQuestionRequest is the admin payload for adding a question.
type CreateQuestionRequest struct {
	QuestionCode     string                     `json:"question_code" binding:"required,min=1,max=20"`
	ProblemStatement string                     `json:"problem_statement" binding:"required,min=1"`
	Constraints      []string                   `json:"constraints" binding:"omitempty"`
	Examples         []Example                  `json:"examples" binding:"omitempty"`
	QuestionSet      string                     `json:"question_set" binding:"required,oneof=A B"`
	Languages        map[Language]LanguageBlock `json:"languages" binding:"required"`
}

// UpdateQuestionRequest is the admin payload for updating a question.
type UpdateQuestionRequest struct {
	QuestionCode     string                     `json:"question_code" binding:"omitempty,min=1,max=20"`
	ProblemStatement string                     `json:"problem_statement" binding:"omitempty,min=1"`
	Constraints      []string                   `json:"constraints" binding:"omitempty"`
	Examples         []Example                  `json:"examples" binding:"omitempty"`
	Languages        map[Language]LanguageBlock `json:"languages" binding:"omitempty"`
	IsActive         *bool                      `json:"is_active" binding:"omitempty"`
}
