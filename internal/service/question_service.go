package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// QuestionService serves the question bank: stripped-down views for
// participants, full CRUD for organizers.
type QuestionService struct {
	questions QuestionStore
	users     UserStore
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, users UserStore) *QuestionService {
	return &QuestionService{questions: questions, users: users}
}

// ListForUser returns the active questions of the participant's set in
// their language, with wrapper templates and hidden test cases stripped.
// Questions without a block for the language are filtered out, never an
// error.
func (s *QuestionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.QuestionForParticipant, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListActive(ctx, user.QuestionSet)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]model.QuestionForParticipant, 0, len(questions))
	for _, q := range questions {
		block, ok := q.LanguageBlockFor(user.Language)
		if !ok {
			continue
		}
		out = append(out, model.QuestionForParticipant{
			ID:               q.ID,
			QuestionCode:     q.QuestionCode,
			ProblemStatement: q.ProblemStatement,
			Constraints:      q.Constraints,
			Examples:         q.Examples,
			BuggyCode:        block.BuggyCode,
		})
	}
	return out, nil
}

// List returns the full question bank for organizers.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.questions.List(ctx)
}

// Create adds a question to the bank.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		QuestionCode:     req.QuestionCode,
		ProblemStatement: req.ProblemStatement,
		Constraints:      req.Constraints,
		Examples:         req.Examples,
		QuestionSet:      model.QuestionSet(req.QuestionSet),
		Languages:        req.Languages,
		IsActive:         true,
	}
	if q.Constraints == nil {
		q.Constraints = []string{}
	}
	if q.Examples == nil {
		q.Examples = []model.Example{}
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update applies the non-empty fields of the request to a question.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.QuestionCode != "" {
		q.QuestionCode = req.QuestionCode
	}
	if req.ProblemStatement != "" {
		q.ProblemStatement = req.ProblemStatement
	}
	if req.Constraints != nil {
		q.Constraints = req.Constraints
	}
	if req.Examples != nil {
		q.Examples = req.Examples
	}
	if req.Languages != nil {
		q.Languages = req.Languages
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}
