package di

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/pkg/cache"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openDB(t *testing.T) *gorm.DB {
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
	return db
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func TestNewWiresMemoryCache(t *testing.T) {
	cfg := config.Load()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "memory"

	c, err := New(openDB(t), cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &cache.MemoryCache{}, c.Cache)

	msg := "Great service!"
	fb, err := c.FeedbackService.Submit(context.Background(), &models.SubmitFeedbackRequest{Message: &msg})
	require.NoError(t, err)
	assert.Equal(t, "positive", string(fb.Sentiment))

	stats, err := c.AnalyticsService.Sentiment(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
}

func TestNewWithoutCache(t *testing.T) {
	cfg := config.Load()
	cfg.Cache.Enabled = false

	c, err := New(openDB(t), cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Cache)
}

func TestNewRejectsUnknownCacheBackend(t *testing.T) {
	cfg := config.Load()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "memcached"

	_, err := New(openDB(t), cfg, Options{Logger: quietLogger()})
	assert.ErrorContains(t, err, "memcached")
}

func TestDatabaseHealthRegistered(t *testing.T) {
	cfg := config.Load()
	cfg.Cache.Enabled = false

	c, err := New(openDB(t), cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)

	c.Health.RunChecks(context.Background())
	assert.True(t, c.Health.IsSystemHealthy())
	assert.Contains(t, c.Health.GetStatus(), "database")
}
