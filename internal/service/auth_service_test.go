package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

func TestRegister_AssignsQuestionSetByYear(t *testing.T) {
	users := newFakeUserStore()
	svc := service.NewAuthService(users, testLogger())

	cases := []struct {
		year int
		want model.QuestionSet
	}{
		{1, model.QuestionSetA},
		{2, model.QuestionSetA},
		{3, model.QuestionSetB},
		{4, model.QuestionSetB},
	}

	for i, tc := range cases {
		user, err := svc.Register(context.Background(), &model.RegisterRequest{
			Name:     "Participant",
			Email:    string(rune('a'+i)) + "@example.com",
			College:  "NIT",
			Year:     tc.year,
			Language: "python",
		})
		require.NoError(t, err)
		require.Equal(t, tc.want, user.QuestionSet, "year %d", tc.year)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := service.NewAuthService(users, testLogger())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "  Asha  ",
		Email:    "  Asha@Example.COM ",
		College:  "NIT",
		Year:     2,
		Language: "c",
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)
	require.Equal(t, "Asha", user.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := service.NewAuthService(users, testLogger())

	req := &model.RegisterRequest{
		Name: "Asha", Email: "asha@example.com", College: "NIT", Year: 2, Language: "c",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	// Case variations collapse to the same normalized email.
	req.Email = "ASHA@example.com"
	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestGetUser_NotFound(t *testing.T) {
	svc := service.NewAuthService(newFakeUserStore(), testLogger())

	_, err := svc.GetUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, pgx.ErrNoRows)
}
