package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/bughuntlab/bughunt-backend/internal/judge"
	"github.com/bughuntlab/bughunt-backend/internal/response"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

// failFromErr maps service-layer errors onto the response envelope. Unknown
// errors collapse to a 500 so internals never leak.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrExamNotLive):
		response.Fail(c, http.StatusBadRequest, response.ErrExamNotLive)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusForbidden, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrDisqualified):
		response.Fail(c, http.StatusForbidden, response.ErrDisqualified)
	case errors.Is(err, service.ErrLanguageUnsupported):
		response.Fail(c, http.StatusNotFound, response.ErrLanguageUnsupported)
	case errors.Is(err, service.ErrNoOpCode):
		response.Fail(c, http.StatusConflict, response.ErrNoOpCode)
	case errors.Is(err, service.ErrAttemptCapExceeded):
		response.Fail(c, http.StatusTooManyRequests, response.ErrAttemptCapExceeded)
	case errors.Is(err, service.ErrLeaderboardNotAvailable):
		response.Fail(c, http.StatusForbidden, response.ErrLeaderboardNotAvailable)
	case errors.Is(err, service.ErrDuplicateEmail):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, judge.ErrUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrJudgeUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
