package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/handler"
	"github.com/bughuntlab/bughunt-backend/internal/middleware"
	"github.com/bughuntlab/bughunt-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Exam        *handler.ExamHandler
	Code        *handler.CodeHandler
	Question    *handler.QuestionHandler
	Leaderboard *handler.LeaderboardHandler
	Report      *handler.ReportHandler
	Monitor     *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.AdminKeyHeader, "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: registration is bursty around the event start, judging
	// is the expensive path.
	registerLimiter := middleware.NewRateLimiter(10, time.Minute)
	judgeLimiter := middleware.NewRateLimiter(30, time.Minute)

	api := router.Group("/api/v1")

	// ─── Auth (Public, Rate Limited) ───────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/register", registerLimiter.Middleware(), handlers.Auth.Register)
	}

	// ─── Participant routes ────────────────────────────────────────────
	api.GET("/users/:user_id", handlers.Auth.GetProfile)
	api.GET("/users/:user_id/questions", handlers.Question.ListForUser)

	exam := api.Group("/exam")
	{
		exam.GET("/status", handlers.Exam.GetStatus)
		exam.POST("/join", handlers.Exam.Join)
		exam.POST("/submit", handlers.Exam.Submit)
		exam.POST("/tab-switch", handlers.Exam.TabSwitch)
		exam.POST("/submit-code", judgeLimiter.Middleware(), handlers.Code.SubmitCode)
	}

	// Public after the exam ends; organizers can peek with the admin key.
	api.GET("/leaderboard", handlers.Leaderboard.GetLeaderboard)

	// ─── Admin (Shared Key) ────────────────────────────────────────────
	adminAPI := api.Group("/admin")
	adminAPI.Use(middleware.RequireAdminKey(cfg.AdminKey))
	{
		adminAPI.POST("/verify", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"valid": true})
		})

		adminAPI.POST("/exam/start", handlers.Exam.StartExam)
		adminAPI.POST("/exam/end", handlers.Exam.EndExam)
		adminAPI.POST("/exam/reset", handlers.Exam.ResetExam)

		adminAPI.GET("/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)

		adminAPI.GET("/reports/summary", handlers.Report.GetSummary)
		adminAPI.GET("/reports/users/:user_id", handlers.Report.GetUserReport)

		adminAPI.GET("/monitor", handlers.Monitor.MonitorSSE)
	}

	return router
}
