package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bughuntlab/bughunt-backend/internal/response"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

// ReportHandler handles organizer report endpoints.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetUserReport godoc
// GET /api/v1/admin/reports/users/:user_id
// Returns the per-participant report document: every question, every
// attempt, the final verdicts. Rendering is left to the caller.
func (h *ReportHandler) GetUserReport(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	doc, err := h.reportService.UserReport(c.Request.Context(), userID)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": doc})
}

// GetSummary godoc
// GET /api/v1/admin/reports/summary
// Lists every session of the current exam, submitted or not.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	rows, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}
