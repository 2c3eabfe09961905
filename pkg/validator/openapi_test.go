package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := NewOpenAPIValidator("")
	require.NoError(t, err)

	r := gin.New()
	r.Use(v.Middleware())
	r.POST("/api/feedback", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/api/feedback", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/unlisted", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEmbeddedSchemaLoads(t *testing.T) {
	v, err := NewOpenAPIValidator("")
	require.NoError(t, err)

	doc, err := v.Document()
	require.NoError(t, err)
	assert.Contains(t, string(doc), "/api/analytics/sentiment")
}

func TestValidSubmissionPasses(t *testing.T) {
	r := newTestEngine(t)
	w := do(r, http.MethodPost, "/api/feedback", `{"message": "Great service!", "rating": 5}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMissingMessageRejected(t *testing.T) {
	r := newTestEngine(t)
	w := do(r, http.MethodPost, "/api/feedback", `{"rating": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request")
}

func TestNonIntegerLimitRejected(t *testing.T) {
	r := newTestEngine(t)
	w := do(r, http.MethodGet, "/api/feedback?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnlistedRoutePassesThrough(t *testing.T) {
	r := newTestEngine(t)
	w := do(r, http.MethodGet, "/unlisted", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingSchemaFile(t *testing.T) {
	_, err := NewOpenAPIValidator("does-not-exist.yaml")
	assert.Error(t, err)
}
