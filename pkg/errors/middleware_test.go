package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"customer-feedback-hub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler(), RecoveryWithLogger())
	r.GET("/", handler)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestBadRequestCarriesRawText(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		c.Error(BadRequest(stderrors.New("unexpected end of JSON input")))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unexpected end of JSON input", decodeError(t, w))
}

func TestPlainErrorBecomesInternal(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		c.Error(stderrors.New("database is locked"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "database is locked", decodeError(t, w))
}

func TestPanicIsRecovered(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		panic("nil map")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decodeError(t, w))
}

func TestWrittenResponseIsLeftAlone(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		c.Error(stderrors.New("late"))
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFromErrorFindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewTooManyRequestsError("slow down"))

	appErr := FromError(wrapped)
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.Equal(t, CodeRateLimited, appErr.Code)
	assert.Nil(t, FromError(nil))

	cause := stderrors.New("disk I/O error")
	internal := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, internal.StatusCode)
	assert.Equal(t, CodeInternal, internal.Code)
	assert.ErrorIs(t, internal, cause)
}

func TestRequestErrorLoggedOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", JSON: true, Output: &buf})

	r := gin.New()
	r.Use(logger.Middleware(log), ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		c.Error(BadRequest(stderrors.New("message is required")))
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errorRecords int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		if strings.EqualFold(record["msg"].(string), "request error") {
			errorRecords++
			assert.Equal(t, "WARN", record["level"])
			assert.Equal(t, "message is required", record["message"])
		}
	}
	assert.Equal(t, 1, errorRecords)
}
