package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/database"
	"github.com/anooppatell7/education-pixel-backend/internal/handler"
	"github.com/anooppatell7/education-pixel-backend/internal/logger"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
	"github.com/anooppatell7/education-pixel-backend/internal/router"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
	"github.com/anooppatell7/education-pixel-backend/internal/store"
	"github.com/anooppatell7/education-pixel-backend/internal/validator"
	"github.com/anooppatell7/education-pixel-backend/internal/worker"
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
		Msg("Starting Education Pixel Backend")

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
	testRepo := repository.NewTestRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	certificateRepo := repository.NewCertificateRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)

	// ─── Initialize Stores ─────────────────────────────────────────────
	sessionStore := store.NewRedisSessionStore(rdb, cfg.SessionTTL)
	practiceStore := store.NewPracticeResultStore(cfg.PracticeResultTTL)
	defer practiceStore.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	identityService := service.NewIdentityService(cfg.JWTSecret)
	testService := service.NewTestService(testRepo, rdb, log)
	certQueue := worker.NewCertificateQueue(rdb)
	pipeline := service.NewSubmissionPipeline(resultRepo, practiceStore, certQueue, log)
	attemptService := service.NewAttemptService(testRepo, sessionStore, resultRepo, pipeline, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Identity: handler.NewIdentityHandler(identityService),
		Test:     handler.NewTestHandler(testService),
		Attempt:  handler.NewAttemptHandler(attemptService, registrationRepo),
		Result:   handler.NewResultHandler(resultRepo, practiceStore),
		Verify:   handler.NewVerifyHandler(certificateRepo, resultRepo, registrationRepo, cfg.PublicBaseURL),
		Operator: handler.NewOperatorHandler(attemptService, testService),
		WS:       handler.NewWSHandler(attemptService, registrationRepo, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	certificateWorker := worker.NewCertificateWorker(pool, rdb, log)
	go certificateWorker.Start(workerCtx)

	// The attempt engine's countdown loop.
	go attemptService.Run(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published test papers into Redis BEFORE accepting traffic.
	// This avoids race conditions from lazy loading under thundering herd.
	if err := testService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(identityService, operatorRepo, handlers, cfg)

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

	// 2. Stop the engine and workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
