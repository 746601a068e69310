package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/response"
	"github.com/bughuntlab/bughunt-backend/internal/service"
	"github.com/bughuntlab/bughunt-backend/internal/validator"
)

// userIDRequest is the common payload for participant session actions.
type userIDRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ExamHandler handles the exam lifecycle and participant session endpoints.
type ExamHandler struct {
	examService       *service.ExamService
	submissionService *service.SubmissionService
	antiCheatService  *service.AntiCheatService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(
	examService *service.ExamService,
	submissionService *service.SubmissionService,
	antiCheatService *service.AntiCheatService,
) *ExamHandler {
	return &ExamHandler{
		examService:       examService,
		submissionService: submissionService,
		antiCheatService:  antiCheatService,
	}
}

// GetStatus godoc
// GET /api/v1/exam/status
// Returns the current exam phase and remaining time. Creates a waiting exam
// on first access.
func (h *ExamHandler) GetStatus(c *gin.Context) {
	exam, err := h.examService.Current(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam":              exam,
		"remaining_seconds": exam.RemainingSeconds(time.Now()),
	})
}

// Join godoc
// POST /api/v1/exam/join
// Opens (or re-opens) the participant's session in the live exam.
func (h *ExamHandler) Join(c *gin.Context) {
	var req userIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Join(c.Request.Context(), uuid.MustParse(req.UserID))
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Submit godoc
// POST /api/v1/exam/submit
// Finalizes the participant's session. Idempotent.
func (h *ExamHandler) Submit(c *gin.Context) {
	var req userIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), uuid.MustParse(req.UserID))
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// TabSwitch godoc
// POST /api/v1/exam/tab-switch
// Records a tab-switch event; the participant is disqualified at the limit.
func (h *ExamHandler) TabSwitch(c *gin.Context) {
	var req userIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.antiCheatService.RecordTabSwitch(c.Request.Context(), uuid.MustParse(req.UserID))
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// StartExam godoc
// POST /api/v1/admin/exam/start
func (h *ExamHandler) StartExam(c *gin.Context) {
	exam, err := h.examService.Start(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// EndExam godoc
// POST /api/v1/admin/exam/end
func (h *ExamHandler) EndExam(c *gin.Context) {
	exam, err := h.examService.End(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ResetExam godoc
// POST /api/v1/admin/exam/reset
// Deletes the exam and every submission tied to it.
func (h *ExamHandler) ResetExam(c *gin.Context) {
	if err := h.examService.Reset(c.Request.Context()); err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "exam reset successfully"})
}
