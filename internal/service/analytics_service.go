package service

import (
	"context"
	"math"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/pkg/cache"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/metrics"
)

const (
	sentimentCacheKey  = "analytics:sentiment"
	categoriesCacheKey = "analytics:categories"
)

var analyticsCacheKeys = []string{sentimentCacheKey, categoriesCacheKey}

// AnalyticsService computes aggregate views over stored feedback
type AnalyticsService struct {
	repo  repository.FeedbackRepository
	cache cache.Store
	log   *logger.Logger
}

// NewAnalyticsService creates the service; store may be nil to disable caching
func NewAnalyticsService(repo repository.FeedbackRepository, store cache.Store, log *logger.Logger) *AnalyticsService {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &AnalyticsService{
		repo:  repo,
		cache: store,
		log:   log.WithComponent("analytics"),
	}
}

// Sentiment returns the total and per-label counts with percentages
func (s *AnalyticsService) Sentiment(ctx context.Context) (*models.SentimentAnalytics, error) {
	var result models.SentimentAnalytics
	if s.fromCache(ctx, sentimentCacheKey, &result) {
		return &result, nil
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[sentiment.Label]int64, len(sentiment.Labels))
	for _, label := range sentiment.Labels {
		n, err := s.repo.CountBySentiment(ctx, label)
		if err != nil {
			return nil, err
		}
		counts[label] = n
	}

	result = models.SentimentAnalytics{
		Total:           total,
		Positive:        counts[sentiment.Positive],
		PositivePercent: Percent(counts[sentiment.Positive], total),
		Negative:        counts[sentiment.Negative],
		NegativePercent: Percent(counts[sentiment.Negative], total),
		Neutral:         counts[sentiment.Neutral],
		NeutralPercent:  Percent(counts[sentiment.Neutral], total),
	}

	s.toCache(ctx, sentimentCacheKey, result)
	return &result, nil
}

// Categories returns one count per distinct category
func (s *AnalyticsService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	var result []models.CategoryCount
	if s.fromCache(ctx, categoriesCacheKey, &result) {
		if result == nil {
			result = []models.CategoryCount{}
		}
		return result, nil
	}

	result, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, categoriesCacheKey, result)
	return result, nil
}

// Percent is part/total as a percentage rounded half to even at one decimal,
// or 0 for an empty total
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.RoundToEven(float64(part)/float64(total)*1000) / 10
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	found, err := s.cache.Get(ctx, key, dst)
	switch {
	case err != nil:
		metrics.AnalyticsCacheResults.WithLabelValues("error").Inc()
		s.log.Debug("Analytics cache read failed", "key", key, "error", err.Error())
		return false
	case found:
		metrics.AnalyticsCacheResults.WithLabelValues("hit").Inc()
		return true
	default:
		metrics.AnalyticsCacheResults.WithLabelValues("miss").Inc()
		return false
	}
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.Debug("Analytics cache write failed", "key", key, "error", err.Error())
	}
}
