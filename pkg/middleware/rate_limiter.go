package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"customer-feedback-hub/backend/pkg/errors"
	"customer-feedback-hub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// RateLimiterOptions configures the rate limiter
type RateLimiterOptions struct {
	// Limit defines requests per second
	Limit rate.Limit
	// Burst defines maximum burst size allowed
	Burst int
	// ExpiryDuration defines how long to keep client state in memory
	ExpiryDuration time.Duration
	// KeyFunc extracts the limiting key from a request
	KeyFunc func(*gin.Context) string
	Clock   clockwork.Clock
}

// DefaultRateLimiterOptions returns sensible defaults
func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Limit:          20,
		Burst:          40,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// client represents a rate limiter client
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-client token bucket limiting for Gin
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	clients map[string]*client
	logger  *logger.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(logger *logger.Logger, options ...RateLimiterOptions) *RateLimiter {
	opts := DefaultRateLimiterOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = DefaultRateLimiterOptions().KeyFunc
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &RateLimiter{
		options: opts,
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Middleware returns a Gin middleware for rate limiting
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(r.options.Burst)

	return func(c *gin.Context) {
		key := r.options.KeyFunc(c)

		if !r.allow(key) {
			r.logger.Warn("Rate limit exceeded",
				"client", key,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			c.Header("Retry-After", "1")
			c.Header("X-RateLimit-Limit", limit)
			c.Error(errors.NewTooManyRequestsError("Too many requests. Please try again later."))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (r *RateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.options.Clock.Now()
	v, exists := r.clients[key]
	if !exists {
		v = &client{limiter: rate.NewLimiter(r.options.Limit, r.options.Burst)}
		r.clients[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// StartCleanup evicts idle clients every interval until ctx is done
func (r *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := r.options.Clock.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				r.evictIdle()
			}
		}
	}()
}

func (r *RateLimiter) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.options.Clock.Now()
	for k, v := range r.clients {
		if now.Sub(v.lastSeen) > r.options.ExpiryDuration {
			delete(r.clients, k)
		}
	}
}

func (r *RateLimiter) clientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
