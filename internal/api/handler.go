package api

import (
	"net/http"
	"strconv"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/service"
	"customer-feedback-hub/backend/pkg/errors"
	"customer-feedback-hub/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the index endpoint
const ServiceName = "Customer Feedback Hub"

// SubmitPath is the full route feedback is posted to
const SubmitPath = "/api/feedback"

var endpoints = []string{
	"/api/feedback - POST: Submit feedback",
	"/api/feedback - GET: Retrieve feedback",
	"/api/analytics/sentiment - GET: Sentiment analysis",
	"/api/analytics/categories - GET: Category breakdown",
}

// IndexResponse describes the service at GET /
type IndexResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

// FeedbackHandler serves the feedback and analytics routes
type FeedbackHandler struct {
	feedback  *service.FeedbackService
	analytics *service.AnalyticsService
	version   string
}

// NewFeedbackHandler creates the handler
func NewFeedbackHandler(feedback *service.FeedbackService, analytics *service.AnalyticsService, version string) *FeedbackHandler {
	return &FeedbackHandler{
		feedback:  feedback,
		analytics: analytics,
		version:   version,
	}
}

// RegisterRoutes mounts every route on router
func (h *FeedbackHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Index)

	api := router.Group("/api")
	{
		api.POST("/feedback", h.SubmitFeedback)
		api.GET("/feedback", h.ListFeedback)
		api.GET("/analytics/sentiment", h.SentimentAnalytics)
		api.GET("/analytics/categories", h.CategoryAnalytics)
	}
}

// Index returns service metadata
func (h *FeedbackHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Name:      ServiceName,
		Version:   h.version,
		Status:    "active",
		Endpoints: endpoints,
	})
}

// SubmitFeedback scores and stores one submission. Every failure is a 400
// carrying the underlying error text.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectSubmission(c, err)
		return
	}

	feedback, err := h.feedback.Submit(c.Request.Context(), &req)
	if err != nil {
		rejectSubmission(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SubmitFeedbackResponse{
		Success:   true,
		ID:        feedback.ID,
		Sentiment: feedback.Sentiment,
		Score:     service.RoundScore(feedback.SentimentScore),
		Priority:  feedback.Priority,
		Message:   "Feedback submitted successfully",
	})
}

func rejectSubmission(c *gin.Context, err error) {
	metrics.FeedbackSubmissionFailures.Inc()
	c.Error(errors.BadRequest(err))
}

// ListFeedback returns stored feedback, newest first
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	filter := models.FeedbackFilter{
		Category:  c.Query("category"),
		Sentiment: c.Query("sentiment"),
		Priority:  c.Query("priority"),
	}

	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(errors.NewBadRequestError(errors.CodeBadRequest, "limit must be an integer"))
			return
		}
		filter.Limit = &limit
	}

	items, err := h.feedback.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	resp := make([]models.FeedbackResponse, 0, len(items))
	for i := range items {
		resp = append(resp, items[i].ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// SentimentAnalytics returns the label distribution
func (h *FeedbackHandler) SentimentAnalytics(c *gin.Context) {
	result, err := h.analytics.Sentiment(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CategoryAnalytics returns per-category counts
func (h *FeedbackHandler) CategoryAnalytics(c *gin.Context) {
	result, err := h.analytics.Categories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
