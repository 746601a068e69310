package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// AuthService handles participant registration. There is no credentialed
// login: a participant is identified by the id handed out at registration,
// and organizer access is a shared admin key checked in middleware.
type AuthService struct {
	users UserStore
	log   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a participant account. The question set is derived from
// the academic year (1-2 → A, 3-4 → B). A duplicate email fails with
// ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	user := &model.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		College:     strings.TrimSpace(req.College),
		Year:        req.Year,
		Language:    model.Language(req.Language),
		QuestionSet: model.QuestionSetForYear(req.Year),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("question_set", string(user.QuestionSet)).
		Msg("Participant registered")
	return user, nil
}

// GetUser retrieves a participant profile.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
