package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/di"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRouter(t *testing.T, mutate func(*config.Config)) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "feedback.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	cfg := config.Load()
	cfg.Cache.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	container, err := di.New(db, cfg, di.Options{
		Logger: logger.New(logger.Config{Level: "error", Output: io.Discard}),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	r := New(container, cfg)
	r.SetupRoutes()
	return r
}

func serve(r *Router, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func TestSubmitThroughFullChain(t *testing.T) {
	r := newRouter(t, nil)

	w := serve(r, http.MethodPost, "/api/feedback", []byte(`{"message":"This is terrible!"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "negative", resp["sentiment"])
	assert.Equal(t, "high", resp["priority"])
}

func TestHealthRoutes(t *testing.T) {
	r := newRouter(t, nil)

	for _, path := range []string{"/health", "/api/health"} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"database"`)
	}
}

func TestMetricsRoute(t *testing.T) {
	r := newRouter(t, nil)
	serve(r, http.MethodGet, "/", nil)

	w := serve(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) { cfg.Observability.MetricsEnabled = false })

	w := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenAPIValidation(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) { cfg.OpenAPI.Validate = true })

	w := serve(r, http.MethodGet, "/api/docs/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi:")

	w = serve(r, http.MethodGet, "/api/feedback?sentiment=furious", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/feedback?sentiment=negative", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpenAPIRejectedSubmissionCountsAsFailure(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) { cfg.OpenAPI.Validate = true })
	before := testutil.ToFloat64(metrics.FeedbackSubmissionFailures)

	w := serve(r, http.MethodPost, "/api/feedback", []byte(`{"rating":5}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FeedbackSubmissionFailures))

	serve(r, http.MethodGet, "/api/feedback?sentiment=furious", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FeedbackSubmissionFailures))
}

func TestRateLimitApplied(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = 1
		cfg.Security.RateLimitBurst = 1
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}
