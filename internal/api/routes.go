package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/internal/auth"
	"github.com/shelenderrkumar/healthcare-translation/internal/metrics"
	"github.com/shelenderrkumar/healthcare-translation/internal/websocket"
)

// Pipeline is the part of usecase.TranslationService the handlers use
type Pipeline interface {
	Run(ctx context.Context, clip entities.AudioClip, selection entities.LanguageSelection) *entities.PipelineOutcome
	Speak(ctx context.Context, text, languageCode string) *entities.SynthesisResult
	RecentRuns(ctx context.Context, limit int) ([]*entities.RunRecord, error)
}

// Options configures request limits for the API routes
type Options struct {
	MaxAudioBytes int64   // Upper bound for an uploaded recording
	BodyLimit     string  // echo BodyLimit value for /api/v1, e.g. "26M"
	RateLimitRPS  float64 // Per client IP; 0 disables rate limiting

	// Auth guards /api/v1 when set; run history then needs the clinician role.
	Auth *auth.Authenticator
}

// InitRoutes initializes all API routes. hub may be nil, which leaves the
// streaming endpoint unregistered.
func InitRoutes(e *echo.Echo, pipeline Pipeline, hub *websocket.Hub, collector *metrics.Collector, opts Options, logger *zap.Logger) {
	h := &handlers{
		pipeline:      pipeline,
		maxAudioBytes: opts.MaxAudioBytes,
		logger:        logger,
	}

	e.Use(requestMetrics(collector))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "healthcare-translation",
		})
	})

	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")
	if opts.BodyLimit != "" {
		v1.Use(middleware.BodyLimit(opts.BodyLimit))
	}
	if opts.RateLimitRPS > 0 {
		v1.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(opts.RateLimitRPS))))
	}

	var historyGuard []echo.MiddlewareFunc
	if opts.Auth != nil {
		v1.Use(opts.Auth.Middleware())
		historyGuard = append(historyGuard, auth.RequireRole(auth.RoleClinician))
	}

	v1.GET("/languages", h.languages)
	v1.POST("/translations", h.translate)
	v1.POST("/speech", h.speak)
	v1.GET("/runs", h.runs, historyGuard...)

	// Streaming runs over WebSocket
	if hub != nil {
		v1.GET("/stream", hub.HandleWebSocket)
	}
}

// requestMetrics observes every request by route template
func requestMetrics(collector *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			collector.RecordHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
