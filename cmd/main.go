package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/adapters"
	"github.com/shelenderrkumar/healthcare-translation/adapters/mongo"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
	"github.com/shelenderrkumar/healthcare-translation/internal/api"
	"github.com/shelenderrkumar/healthcare-translation/internal/auth"
	"github.com/shelenderrkumar/healthcare-translation/internal/config"
	"github.com/shelenderrkumar/healthcare-translation/internal/metrics"
	"github.com/shelenderrkumar/healthcare-translation/internal/providers"
	"github.com/shelenderrkumar/healthcare-translation/internal/websocket"
	"github.com/shelenderrkumar/healthcare-translation/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal("Invalid configuration",
				zap.String("variable", cfgErr.Variable),
				zap.String("reason", cfgErr.Reason))
		}
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters
	set, err := providers.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize providers", zap.Error(err))
	}
	defer set.Close()

	var recorder repositories.RunRecorder
	var mongoClient *mongo.Client
	if cfg.MongoEnabled() {
		mongoClient, err = mongo.NewClient(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		repo := mongo.NewRunRecordRepository(mongoClient.Database, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure run record indexes", zap.Error(err))
		}
		recorder = repo
	} else {
		logger.Info("MONGODB_URI not set, keeping run records in memory")
		recorder = adapters.NewMemoryRunRecorder(0)
	}

	collector := metrics.NewCollector("healthcare_translation", logger)

	// Initialize usecase services
	service := usecase.NewTranslationService(
		set.SpeechToText,
		set.Translator,
		set.TextToSpeech,
		recorder,
		collector,
		cfg.StageTimeout,
		logger,
	)

	// Initialize WebSocket hub for streamed runs
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := websocket.NewHub(service, cfg.MaxAudioBytes, logger)
	go hub.Run(hubCtx)

	var authenticator *auth.Authenticator
	if cfg.AuthEnabled() {
		authenticator, err = auth.NewAuthenticator(cfg.JWTSecret, 0)
		if err != nil {
			logger.Fatal("Failed to initialize authentication", zap.Error(err))
		}
	} else {
		logger.Warn("API_JWT_SECRET not set, API is unauthenticated")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, service, hub, collector, api.Options{
		MaxAudioBytes: cfg.MaxAudioBytes,
		BodyLimit:     cfg.MaxAudioBodyLimit(),
		RateLimitRPS:  cfg.RateLimitRPS,
		Auth:          authenticator,
	}, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.Duration("stageTimeout", cfg.StageTimeout))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopHub()

	if mongoClient != nil {
		_ = mongoClient.Close(shutdownCtx)
	}

	logger.Info("Server exited")
}
