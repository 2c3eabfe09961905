package models

import (
	"encoding/json"
	"testing"
	"time"

	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/internal/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequestDefaults(t *testing.T) {
	var req SubmitFeedbackRequest
	require.NoError(t, json.Unmarshal([]byte(`{"message": "hi"}`), &req))

	require.NoError(t, req.Validate())
	assert.Equal(t, "api", req.SourceOrDefault())
	assert.Equal(t, "general", req.CategoryOrDefault())
	assert.Nil(t, req.Rating)
}

func TestSubmitRequestRequiresMessage(t *testing.T) {
	var req SubmitFeedbackRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rating": 3}`), &req))
	assert.ErrorIs(t, req.Validate(), ErrMessageRequired)

	require.NoError(t, json.Unmarshal([]byte(`{"message": ""}`), &req))
	assert.NoError(t, req.Validate())
}

func TestSubmitRequestRejectsWrongTypes(t *testing.T) {
	var req SubmitFeedbackRequest
	assert.Error(t, json.Unmarshal([]byte(`{"message": "hi", "rating": "five"}`), &req))
}

func TestToResponseOmitsEmailAndScore(t *testing.T) {
	email := "jane@example.com"
	f := Feedback{
		ID:             7,
		Source:         "web",
		Email:          &email,
		Category:       "billing",
		Message:        "ok",
		Sentiment:      sentiment.Neutral,
		SentimentScore: 0.01,
		Priority:       triage.Medium,
		CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(f.ToResponse())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotContains(t, out, "email")
	assert.NotContains(t, out, "sentiment_score")
	assert.Equal(t, "2024-03-01T10:00:00Z", out["created_at"])
	assert.Nil(t, out["customer_id"])
	assert.Nil(t, out["rating"])
}

func TestEffectiveLimit(t *testing.T) {
	zero, three, negative := 0, 3, -1

	assert.Equal(t, 50, FeedbackFilter{}.EffectiveLimit())
	assert.Equal(t, 0, FeedbackFilter{Limit: &zero}.EffectiveLimit())
	assert.Equal(t, 3, FeedbackFilter{Limit: &three}.EffectiveLimit())

	assert.False(t, FeedbackFilter{}.Unbounded())
	assert.False(t, FeedbackFilter{Limit: &zero}.Unbounded())
	assert.True(t, FeedbackFilter{Limit: &negative}.Unbounded())
}
