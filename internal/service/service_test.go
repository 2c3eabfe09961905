package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/internal/sentiment"
	"customer-feedback-hub/backend/pkg/cache"
	"customer-feedback-hub/backend/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *repository.GormFeedbackRepository
	store     *cache.MemoryCache
	clock     *clockwork.FakeClock
	feedback  *FeedbackService
	analytics *AnalyticsService
}

func newFixture(t *testing.T, scorer sentiment.Scorer) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "feedback.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	clock := clockwork.NewFakeClockAt(testStart)
	store := cache.NewMemoryCache(cache.Options{TTL: time.Minute, Clock: clock})
	t.Cleanup(store.Close)

	log := logger.New(logger.Config{Level: "error", Output: discard{}})
	repo := repository.NewGormFeedbackRepository(db)

	return &fixture{
		repo:      repo,
		store:     store,
		clock:     clock,
		feedback:  NewFeedbackService(repo, scorer, store, clock, log),
		analytics: NewAnalyticsService(repo, store, log),
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// fixedScorer returns a preset compound score per message
func fixedScorer(scores map[string]float64) sentiment.Scorer {
	return sentiment.ScorerFunc(func(text string) float64 {
		return scores[text]
	})
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type failingRepo struct {
	repository.FeedbackRepository
	err error
}

func (f failingRepo) Create(context.Context, *models.Feedback) error { return f.err }
func (f failingRepo) Count(context.Context) (int64, error)           { return 0, f.err }
func (f failingRepo) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	return nil, f.err
}

var errStore = errors.New("store unavailable")
