package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feedback metrics
var (
	// FeedbackSubmissions counts stored submissions by derived labels
	FeedbackSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Stored feedback submissions by sentiment and priority",
		},
		[]string{"sentiment", "priority"},
	)

	// FeedbackSubmissionFailures counts rejected submissions
	FeedbackSubmissionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_submission_failures_total",
			Help: "Feedback submissions rejected with a bad request",
		},
	)

	// SentimentScores tracks the distribution of compound scores
	SentimentScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedback_sentiment_score",
			Help:    "Compound sentiment score of stored feedback",
			Buckets: prometheus.LinearBuckets(-1, 0.2, 11),
		},
	)
)

// Cache metrics
var (
	// AnalyticsCacheResults counts analytics cache lookups by result (hit/miss/error)
	AnalyticsCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_results_total",
			Help: "Analytics cache lookups by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// HTTP metrics
var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware records request latency keyed by the matched route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
