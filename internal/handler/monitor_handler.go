package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/service"
)

const (
	refreshInterval   = 10 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams a live organizer view of the exam over SSE.
type MonitorHandler struct {
	examService   *service.ExamService
	reportService *service.ReportService
	log           zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(examService *service.ExamService, reportService *service.ReportService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		examService:   examService,
		reportService: reportService,
		log:           log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSSE godoc
// GET /api/v1/admin/monitor
// Streams exam phase and per-participant progress snapshots every
// refreshInterval, with keepalive pings in between.
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendSnapshot(c, reqCtx)

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Msg("Organizer attached to monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Organizer disconnected from monitor SSE")
			return

		case <-refreshTicker.C:
			h.sendSnapshot(c, reqCtx)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot polls the current exam and all sessions and writes one SSE
// event. A slow query is dropped rather than stalling the loop.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, parentCtx context.Context) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	exam, err := h.examService.Current(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch exam for monitor snapshot")
		return
	}

	rows, err := h.reportService.Summary(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch sessions for monitor snapshot")
		return
	}

	totalJoined := len(rows)
	totalSubmitted := 0
	totalDisqualified := 0
	for _, row := range rows {
		if row.IsSubmitted {
			totalSubmitted++
		}
		if row.IsDisqualified {
			totalDisqualified++
		}
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": map[string]interface{}{
			"exam": map[string]interface{}{
				"id":                exam.ID.String(),
				"status":            exam.Status,
				"remaining_seconds": exam.RemainingSeconds(time.Now()),
			},
			"stats": map[string]interface{}{
				"total_joined":       totalJoined,
				"total_submitted":    totalSubmitted,
				"total_disqualified": totalDisqualified,
			},
			"participants": rows,
		},
	})
	c.Writer.Flush()
}
