package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/response"
	"github.com/bughuntlab/bughunt-backend/internal/service"
	"github.com/bughuntlab/bughunt-backend/internal/validator"
)

// submitCodeRequest is the payload for judging one fix attempt.
type submitCodeRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Code       string `json:"code" binding:"required,min=1,max=65536"`
}

// CodeHandler handles code submission judging.
type CodeHandler struct {
	submissionService *service.SubmissionService
}

// NewCodeHandler creates a new CodeHandler.
func NewCodeHandler(submissionService *service.SubmissionService) *CodeHandler {
	return &CodeHandler{submissionService: submissionService}
}

// SubmitCode godoc
// POST /api/v1/exam/submit-code
// Judges one fix attempt against the question's hidden test cases.
func (h *CodeHandler) SubmitCode(c *gin.Context) {
	var req submitCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.RecordAttempt(
		c.Request.Context(),
		uuid.MustParse(req.UserID),
		uuid.MustParse(req.QuestionID),
		req.Code,
	)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
