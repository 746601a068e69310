package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/middleware"
	"github.com/bughuntlab/bughunt-backend/internal/response"
	"github.com/bughuntlab/bughunt-backend/internal/service"
)

// LeaderboardHandler handles the ranking endpoint.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	cfg                *config.Config
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, cfg *config.Config) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, cfg: cfg}
}

// GetLeaderboard godoc
// GET /api/v1/leaderboard
// Public once the exam has ended. A valid admin key lets organizers peek at
// the live standings mid-exam.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	isAdmin := middleware.IsAdmin(c, h.cfg.AdminKey)

	board, err := h.leaderboardService.Leaderboard(c.Request.Context(), isAdmin)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, board)
}
