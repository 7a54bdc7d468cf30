package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/database"
	"github.com/talentflow/talentflow-backend/internal/handler"
	"github.com/talentflow/talentflow-backend/internal/logger"
	"github.com/talentflow/talentflow-backend/internal/middleware"
	"github.com/talentflow/talentflow-backend/internal/repository"
	"github.com/talentflow/talentflow-backend/internal/router"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/validator"
	"github.com/talentflow/talentflow-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TalentFlow Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := make(map[string]handler.HealthCheck)

	// ─── Open the Store ────────────────────────────────────────────────
	opened, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open the store")
	}
	defer opened.Close()
	checks[opened.Driver] = opened.Ping

	var store repository.Store = opened.Store
	if cfg.FaultLatency > 0 || cfg.FaultFailureRate > 0 {
		log.Warn().
			Dur("latency", cfg.FaultLatency).
			Float64("failure_rate", cfg.FaultFailureRate).
			Msg("Store fault injection enabled")
		faults := repository.NewRandomFaults(cfg.FaultLatency, cfg.FaultFailureRate, uint64(time.Now().UnixNano()))
		store = repository.NewFaultyStore(store, faults)
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	// Required with PostgreSQL; the local SQLite mode runs without it.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		if cfg.StoreDriver != config.StoreDriverSQLite {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Warn().Err(err).Msg("Redis unavailable, running without draft buffer and worker queues")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = pingRedis(rdb)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	cache := repository.NewAssessmentCache(rdb, cfg.DraftTTL)
	var builderDrafts repository.BuilderDraftStore = repository.NewMemoryBuilderDrafts()
	var responseBuffer *repository.ResponseBuffer
	if rdb != nil {
		builderDrafts = repository.NewBuilderDraftRepository(rdb, cfg.DraftTTL)
		responseBuffer = repository.NewResponseBuffer(rdb, cfg.DraftTTL)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	assessmentService := service.NewAssessmentService(store, cache, log)
	builderService := service.NewBuilderService(builderDrafts, assessmentService, log)
	scoringService := service.NewScoringService(store, store, store, log)

	// Without worker queues submissions are scored in-line.
	var scoreSink service.ScoreSink = scoringService
	if responseBuffer != nil {
		scoreSink = responseBuffer
	}
	responseService := service.NewResponseService(store, responseBuffer, scoreSink, log)
	authService := service.NewAuthService(cfg, store, log)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, assessmentService, log),
		Assessment: handler.NewAssessmentHandler(assessmentService, log),
		Builder:    handler.NewBuilderHandler(builderService, log),
		Response:   handler.NewResponseHandler(responseService, log),
		Score:      handler.NewScoreHandler(scoringService, log),
		Media:      handler.NewMediaHandler(mediaService, log),
		WS:         handler.NewWSHandler(assessmentService, responseService, cfg.AutosaveDelay, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(checks, responseBuffer, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if rdb != nil {
		autosaveWorker := worker.NewAutosaveWorker(rdb, responseBuffer, store, log)
		scoringWorker := worker.NewScoringWorker(rdb, scoringService, store, log)

		workers.Add(2)
		go func() {
			defer workers.Done()
			autosaveWorker.Start(workerCtx)
		}()
		go func() {
			defer workers.Done()
			scoringWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	loginLimiter := middleware.NewRateLimiter(rdb, 10, time.Minute, log)
	r := router.SetupRouter(authService, loginLimiter, handlers, cfg)

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

	// 1. Stop accepting new HTTP requests. Open taker streams flush their
	//    pending drafts as they close.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

func pingRedis(rdb *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
