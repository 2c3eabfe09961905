package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-feedback-hub/backend/pkg/errors"
	"customer-feedback-hub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(quietLogger(), RateLimiterOptions{
		Limit:          1,
		Burst:          2,
		ExpiryDuration: time.Minute,
		Clock:          clock,
	})

	r := gin.New()
	r.Use(errors.ErrorHandler(), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	clock.Advance(time.Second)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(quietLogger(), RateLimiterOptions{
		Limit:          1,
		Burst:          1,
		ExpiryDuration: time.Minute,
		Clock:          clock,
	})

	rl.allow("10.0.0.1")
	require.Equal(t, 1, rl.clientCount())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl.StartCleanup(ctx, 30*time.Second)

	clock.Advance(2 * time.Minute)
	assert.Eventually(t, func() bool { return rl.clientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.POST("/api/feedback", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"far too long"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
