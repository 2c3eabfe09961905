package router

import (
	"context"
	"time"

	"customer-feedback-hub/backend/internal/api"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/di"
	"customer-feedback-hub/backend/pkg/errors"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/metrics"
	"customer-feedback-hub/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	Config      *config.Config
	rateLimiter *middleware.RateLimiter
}

// New creates a router with the shared middleware chain installed
func New(container *di.Container, cfg *config.Config) *Router {
	logger.SetGlobal(container.Logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	if cfg.Observability.MetricsEnabled {
		engine.Use(metrics.Middleware())
	}

	engine.Use(middleware.CORS(cfg.Security.AllowedOrigins))
	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	var rl *middleware.RateLimiter
	if cfg.Security.RateLimit > 0 {
		opts := middleware.DefaultRateLimiterOptions()
		opts.Limit = rate.Limit(cfg.Security.RateLimit)
		opts.Burst = cfg.Security.RateLimitBurst
		opts.Clock = container.Clock
		rl = middleware.NewRateLimiter(container.Logger, opts)
		engine.Use(rl.Middleware())
	}

	return &Router{
		Engine:      engine,
		Container:   container,
		Logger:      container.Logger,
		Config:      cfg,
		rateLimiter: rl,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.setupHealthRoutes()

	if r.Config.Observability.MetricsEnabled {
		r.Engine.GET("/metrics", metrics.Handler())
	}

	if r.Config.OpenAPI.Validate {
		r.AddOpenAPIValidation(r.Config.OpenAPI.SchemaPath)
	}

	handler := api.NewFeedbackHandler(
		r.Container.FeedbackService,
		r.Container.AnalyticsService,
		r.Config.Server.Version,
	)
	handler.RegisterRoutes(r.Engine)
}

// StartBackground runs the router's housekeeping until ctx is done
func (r *Router) StartBackground(ctx context.Context) {
	if r.rateLimiter != nil {
		r.rateLimiter.StartCleanup(ctx, time.Minute)
	}
}
