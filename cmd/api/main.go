// @title           AgileFlow AI API
// @version         1.0
// @description     AI-assisted agile board planning: story suggestion, board generation and board editing per session

// @host      localhost:8080
// @BasePath  /api/agileflow

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/config"
	"github.com/notkshitijsingh/AgileFlowAI/internal/database"
	"github.com/notkshitijsingh/AgileFlowAI/internal/handler"
	"github.com/notkshitijsingh/AgileFlowAI/internal/job"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/repository"
	"github.com/notkshitijsingh/AgileFlowAI/internal/router"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the yaml config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting AgileFlow AI",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("session_store", cfg.Session.Store),
		zap.Bool("ai_enabled", cfg.AI.Enabled()),
	)

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	// Initialize session store
	var redisClient *redis.Client
	var sessionRepo repository.SessionRepository
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis, logger)
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessionRepo = repository.NewRedisSessionRepository(redisClient, cfg.Redis.KeyPrefix, cfg.Session.TTL)
	default:
		sessionRepo = repository.NewMemorySessionRepository()
		logger.Warn("Using in-memory session store, sessions are lost on restart")
	}

	// Initialize AI client
	var ai client.BoardAI
	if cfg.AI.Enabled() {
		ai = client.NewGeminiClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout, logger, m)
		logger.Info("AI client initialized",
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model),
		)
	} else {
		ai = client.NewDisabledAI()
		logger.Warn("No AI API key configured, story suggestion, board generation and tips are disabled")
	}

	hub := handler.NewBoardHub(logger)
	sessionService := service.NewSessionService(sessionRepo, ai, hub, cfg.AI.TipsEnabled, m, logger)

	// Background work
	collector := metrics.NewBusinessMetricsCollector(sessionRepo, m, logger, 30*time.Second)
	collector.Start()
	defer collector.Stop()

	scheduler := job.NewScheduler(logger)
	cleanup := job.NewSessionCleanupJob(sessionRepo, cfg.Session.TTL, m, logger)
	if err := scheduler.Register("session-cleanup", cfg.Session.CleanupSchedule, cleanup); err != nil {
		logger.Fatal("Failed to schedule session cleanup", zap.Error(err))
	}
	scheduler.Start()

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		SessionService: sessionService,
		Hub:            hub,
		Redis:          redisClient,
		Logger:         logger,
		Metrics:        m,
		BasePath:       cfg.Server.BasePath,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("AgileFlow AI started successfully", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
