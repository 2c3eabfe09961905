package service

import (
	"context"
	"fmt"
	"math"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/internal/triage"
	"customer-feedback-hub/backend/pkg/cache"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "customer-feedback-hub/backend/internal/service"

// FeedbackService classifies, triages and stores submissions
type FeedbackService struct {
	repo          repository.FeedbackRepository
	scorer        sentiment.Scorer
	cache         cache.Store
	clock         clockwork.Clock
	log           *logger.Logger
	tracer        trace.Tracer
	messageLength metric.Int64Histogram
}

// NewFeedbackService wires the submission path. store may be nil when
// analytics caching is disabled.
func NewFeedbackService(repo repository.FeedbackRepository, scorer sentiment.Scorer, store cache.Store, clock clockwork.Clock, log *logger.Logger) *FeedbackService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	messageLength, err := otel.Meter(instrumentationName).Int64Histogram(
		"feedback.message.length",
		metric.WithDescription("Length in bytes of submitted feedback messages"),
		metric.WithUnit("By"),
	)
	if err != nil {
		log.LogError(err, "Failed to create message length histogram")
	}

	return &FeedbackService{
		repo:          repo,
		scorer:        scorer,
		cache:         store,
		clock:         clock,
		log:           log.WithComponent("feedback"),
		tracer:        otel.Tracer(instrumentationName),
		messageLength: messageLength,
	}
}

// Submit derives sentiment and priority for the request and persists it
func (s *FeedbackService) Submit(ctx context.Context, req *models.SubmitFeedbackRequest) (*models.Feedback, error) {
	ctx, span := s.tracer.Start(ctx, "feedback.submit")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	message := *req.Message

	_, scoreSpan := s.tracer.Start(ctx, "sentiment.score")
	score, label := s.scorer.ScoreText(message)
	scoreSpan.SetAttributes(
		attribute.Float64("sentiment.score", score),
		attribute.String("sentiment.label", string(label)),
	)
	scoreSpan.End()

	priority := triage.Calculate(label, req.Rating, len(message))

	feedback := &models.Feedback{
		Source:         req.SourceOrDefault(),
		CustomerID:     req.CustomerID,
		Email:          req.Email,
		Category:       req.CategoryOrDefault(),
		Message:        message,
		Rating:         req.Rating,
		Sentiment:      label,
		SentimentScore: score,
		Priority:       priority,
		CreatedAt:      s.clock.Now().UTC(),
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	span.SetAttributes(attribute.Int64("feedback.id", int64(feedback.ID)))

	metrics.FeedbackSubmissions.WithLabelValues(string(label), string(priority)).Inc()
	metrics.SentimentScores.Observe(score)
	if s.messageLength != nil {
		s.messageLength.Record(ctx, int64(len(message)),
			metric.WithAttributes(attribute.String("category", feedback.Category)))
	}

	s.invalidateAnalytics(ctx)

	s.log.Info("Feedback stored",
		"id", feedback.ID,
		"category", feedback.Category,
		"sentiment", string(label),
		"priority", string(priority),
	)

	return feedback, nil
}

// List returns stored feedback matching filter, newest first. A sentiment or
// priority no record can carry matches nothing without touching the store.
func (s *FeedbackService) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	if filter.Sentiment != "" && !sentiment.Label(filter.Sentiment).Valid() {
		return []models.Feedback{}, nil
	}
	if filter.Priority != "" && !triage.Priority(filter.Priority).Valid() {
		return []models.Feedback{}, nil
	}
	return s.repo.List(ctx, filter)
}

func (s *FeedbackService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, analyticsCacheKeys...); err != nil {
		s.log.LogError(err, "Failed to invalidate analytics cache")
	}
}

// RoundScore rounds a compound score half to even at two decimals for responses
func RoundScore(score float64) float64 {
	return math.RoundToEven(score*100) / 100
}
