package di

import (
	"context"
	"fmt"
	"time"

	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/internal/service"
	"customer-feedback-hub/backend/pkg/cache"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/health"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/resilience"
	"customer-feedback-hub/backend/pkg/secrets"
	"customer-feedback-hub/backend/shared/redis"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB               *gorm.DB
	Logger           *logger.Logger
	Clock            clockwork.Clock
	Repository       repository.FeedbackRepository
	Scorer           sentiment.Scorer
	Cache            cache.Store
	Health           *health.Checker
	FeedbackService  *service.FeedbackService
	AnalyticsService *service.AnalyticsService

	closers []func() error
}

// Options overrides pieces of the container, mostly for tests
type Options struct {
	Logger *logger.Logger
	Clock  clockwork.Clock
	Scorer sentiment.Scorer
	// Cache replaces the cache built from configuration
	Cache cache.Store
}

// New creates a new dependency injection container
func New(db *gorm.DB, cfg *config.Config, opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobal()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = sentiment.NewVaderScorer()
	}

	c := &Container{
		DB:     db,
		Logger: log,
		Clock:  clock,
		Scorer: scorer,
		Health: health.NewChecker(log, clock, 30*time.Second),
	}

	c.Repository = repository.NewGormFeedbackRepository(db)
	c.Health.RegisterDatabaseCheck(c.Repository.Ping)

	store := opts.Cache
	if store == nil && cfg.Cache.Enabled {
		var err error
		store, err = c.newCache(cfg)
		if err != nil {
			return nil, err
		}
	}
	c.Cache = store

	c.FeedbackService = service.NewFeedbackService(c.Repository, scorer, store, clock, log)
	c.AnalyticsService = service.NewAnalyticsService(c.Repository, store, log)

	return c, nil
}

func (c *Container) newCache(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "memory", "":
		mem := cache.NewMemoryCache(cache.Options{
			TTL:             cfg.Cache.TTL,
			CleanupInterval: cfg.Cache.PurgeWindow,
			MaxItems:        cfg.Cache.MaxSize,
			Clock:           c.Clock,
		})
		c.closers = append(c.closers, func() error {
			mem.Close()
			return nil
		})
		return mem, nil

	case "redis":
		breaker := resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("redis"),
			c.Clock,
			c.Logger,
		)
		client := redis.NewRedisClient(redis.Options{
			Addr:     cfg.Redis.URL,
			Password: secrets.GetSecretWithDefault(context.Background(), secrets.KeyRedisPassword, cfg.Redis.Password),
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
		}, breaker)
		c.Health.RegisterCacheCheck(client.Ping)
		c.closers = append(c.closers, client.Close)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// StartBackground starts the periodic health checks until ctx is done
func (c *Container) StartBackground(ctx context.Context) {
	c.Health.Start(ctx)
}

// Close releases the cache resources owned by the container. The database
// is owned by the caller.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
