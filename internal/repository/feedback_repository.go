package repository

import (
	"context"
	"fmt"

	"customer-feedback-hub/backend/internal/models"
	"customer-feedback-hub/backend/internal/sentiment"

	"gorm.io/gorm"
)

// FeedbackRepository is the append-only feedback store
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	Count(ctx context.Context) (int64, error)
	CountBySentiment(ctx context.Context, label sentiment.Label) (int64, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	Ping(ctx context.Context) error
}

type GormFeedbackRepository struct {
	db *gorm.DB
}

func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Migrate creates the feedbacks table and its indexes if absent
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Feedback{}); err != nil {
		return fmt.Errorf("failed to migrate feedback schema: %w", err)
	}
	return nil
}

func (r *GormFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *GormFeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	query := r.db.WithContext(ctx).Model(&models.Feedback{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Sentiment != "" {
		query = query.Where("sentiment = ?", filter.Sentiment)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	feedbacks := []models.Feedback{}
	limit := filter.EffectiveLimit()
	if limit == 0 {
		return feedbacks, nil
	}
	if !filter.Unbounded() {
		query = query.Limit(limit)
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (r *GormFeedbackRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).Count(&total).Error
	return total, err
}

func (r *GormFeedbackRepository) CountBySentiment(ctx context.Context, label sentiment.Label) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("sentiment = ?", label).
		Count(&count).Error
	return count, err
}

func (r *GormFeedbackRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	counts := []models.CategoryCount{}
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("category, COUNT(id) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormFeedbackRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
