package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/database"
	"github.com/bughuntlab/bughunt-backend/internal/handler"
	"github.com/bughuntlab/bughunt-backend/internal/judge"
	"github.com/bughuntlab/bughunt-backend/internal/logger"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
	"github.com/bughuntlab/bughunt-backend/internal/router"
	"github.com/bughuntlab/bughunt-backend/internal/service"
	"github.com/bughuntlab/bughunt-backend/internal/validator"
	"github.com/bughuntlab/bughunt-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Bug Hunt Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	judgeClient := judge.NewJudge0Client(cfg)
	evaluator := service.NewEvaluator(judgeClient)

	examService := service.NewExamService(examRepo, submissionRepo, rdb, cfg.ExamDurationMinutes, log)
	authService := service.NewAuthService(userRepo, log)
	questionService := service.NewQuestionService(questionRepo, userRepo)
	submissionService := service.NewSubmissionService(examService, submissionRepo, userRepo, questionRepo, evaluator, rdb, log)
	antiCheatService := service.NewAntiCheatService(examService, submissionRepo, rdb, cfg.TabSwitchLimit, log)
	leaderboardService := service.NewLeaderboardService(examRepo, submissionRepo, rdb, log)
	reportService := service.NewReportService(examRepo, submissionRepo, userRepo, questionRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Exam:        handler.NewExamHandler(examService, submissionService, antiCheatService),
		Code:        handler.NewCodeHandler(submissionService),
		Question:    handler.NewQuestionHandler(questionService),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, cfg),
		Report:      handler.NewReportHandler(reportService),
		Monitor:     handler.NewMonitorHandler(examService, reportService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	cheatAuditWorker := worker.NewCheatAuditWorker(pool, rdb, log)
	go cheatAuditWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the audit worker and let its buffer drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
