package models

import (
	"errors"
	"time"

	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/internal/triage"
)

// Submission defaults
const (
	DefaultSource   = "api"
	DefaultCategory = "general"
	DefaultLimit    = 50
)

// ErrMessageRequired is returned when a submission has no message field
var ErrMessageRequired = errors.New("message is required")

// Feedback is a single customer feedback submission. Sentiment, score and
// priority are derived once at creation and never rewritten.
type Feedback struct {
	ID             uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Source         string          `json:"source" gorm:"size:50"`
	CustomerID     *string         `json:"customer_id" gorm:"size:100"`
	Email          *string         `json:"email,omitempty" gorm:"size:200"`
	Category       string          `json:"category" gorm:"size:50;index"`
	Message        string          `json:"message" gorm:"type:text;not null"`
	Rating         *int            `json:"rating"`
	Sentiment      sentiment.Label `json:"sentiment" gorm:"size:20;index"`
	SentimentScore float64         `json:"sentiment_score"`
	Priority       triage.Priority `json:"priority" gorm:"size:20;index"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
}

// TableName pins the table name independent of gorm's pluraliser
func (Feedback) TableName() string {
	return "feedbacks"
}

// SubmitFeedbackRequest is the body of POST /api/feedback. Pointers separate
// absent fields from zero values; required on a pointer rejects only a
// missing message, so an empty one still binds.
type SubmitFeedbackRequest struct {
	Message    *string `json:"message" binding:"required"`
	Source     *string `json:"source"`
	CustomerID *string `json:"customer_id"`
	Email      *string `json:"email"`
	Category   *string `json:"category"`
	Rating     *int    `json:"rating"`
}

// Validate checks the only required field for callers that bypass gin binding
func (r *SubmitFeedbackRequest) Validate() error {
	if r.Message == nil {
		return ErrMessageRequired
	}
	return nil
}

// SourceOrDefault returns the submitted source or "api"
func (r *SubmitFeedbackRequest) SourceOrDefault() string {
	if r.Source == nil {
		return DefaultSource
	}
	return *r.Source
}

// CategoryOrDefault returns the submitted category or "general"
func (r *SubmitFeedbackRequest) CategoryOrDefault() string {
	if r.Category == nil {
		return DefaultCategory
	}
	return *r.Category
}

// SubmitFeedbackResponse is returned with 201 on a successful submission
type SubmitFeedbackResponse struct {
	Success   bool            `json:"success"`
	ID        uint            `json:"id"`
	Sentiment sentiment.Label `json:"sentiment"`
	Score     float64         `json:"score"`
	Priority  triage.Priority `json:"priority"`
	Message   string          `json:"message"`
}

// FeedbackResponse is one entry of GET /api/feedback
type FeedbackResponse struct {
	ID         uint            `json:"id"`
	Source     string          `json:"source"`
	CustomerID *string         `json:"customer_id"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	Rating     *int            `json:"rating"`
	Sentiment  sentiment.Label `json:"sentiment"`
	Priority   triage.Priority `json:"priority"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToResponse drops the fields the listing endpoint does not expose
func (f *Feedback) ToResponse() FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		Source:     f.Source,
		CustomerID: f.CustomerID,
		Category:   f.Category,
		Message:    f.Message,
		Rating:     f.Rating,
		Sentiment:  f.Sentiment,
		Priority:   f.Priority,
		CreatedAt:  f.CreatedAt,
	}
}

// FeedbackFilter holds the optional exact-match filters of the listing query.
// A nil Limit means DefaultLimit, zero yields no rows and a negative limit
// removes the cap.
type FeedbackFilter struct {
	Category  string
	Sentiment string
	Priority  string
	Limit     *int
}

// EffectiveLimit returns the caller's limit, or DefaultLimit when none was given
func (f FeedbackFilter) EffectiveLimit() int {
	if f.Limit == nil {
		return DefaultLimit
	}
	return *f.Limit
}

// Unbounded reports whether the caller asked for every matching row
func (f FeedbackFilter) Unbounded() bool {
	return f.EffectiveLimit() < 0
}

// SentimentAnalytics is the distribution returned by GET /api/analytics/sentiment
type SentimentAnalytics struct {
	Total           int64   `json:"total"`
	Positive        int64   `json:"positive"`
	PositivePercent float64 `json:"positive_percent"`
	Negative        int64   `json:"negative"`
	NegativePercent float64 `json:"negative_percent"`
	Neutral         int64   `json:"neutral"`
	NeutralPercent  float64 `json:"neutral_percent"`
}

// CategoryCount is one row of GET /api/analytics/categories
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
