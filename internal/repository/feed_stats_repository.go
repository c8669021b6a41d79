package repository

import (
	"context"
	"fmt"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedStatsRepository tracks per-feed fetch health.
type FeedStatsRepository interface {
	RecordFetch(ctx context.Context, feedURL string, success bool, responseTimeMs int64, articleCount int) error
	List(ctx context.Context) ([]entity.FeedStat, error)
}

// NewFeedStatsRepository creates a new instance of FeedStatsRepository.
func NewFeedStatsRepository(db *gorm.DB) FeedStatsRepository {
	return &feedStatsRepository{db: db}
}

type feedStatsRepository struct {
	db *gorm.DB
}

func (r *feedStatsRepository) RecordFetch(ctx context.Context, feedURL string, success bool, responseTimeMs int64, articleCount int) error {
	stat := entity.FeedStat{
		FeedURL:         feedURL,
		TotalFetches:    1,
		AvgResponseTime: float64(responseTimeMs),
		LastArticles:    articleCount,
	}
	if success {
		stat.SuccessfulFetches = 1
		stat.SuccessRate = 1.0
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "feed_url"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_fetches":      gorm.Expr("feed_stats.total_fetches + 1"),
				"successful_fetches": gorm.Expr("feed_stats.successful_fetches + ?", stat.SuccessfulFetches),
				"success_rate":       gorm.Expr("(feed_stats.successful_fetches + ?)::float / (feed_stats.total_fetches + 1)", stat.SuccessfulFetches),
				"avg_response_time":  gorm.Expr("(feed_stats.avg_response_time * feed_stats.total_fetches + ?) / (feed_stats.total_fetches + 1)", float64(responseTimeMs)),
				"last_articles":      articleCount,
				"updated_at":         gorm.Expr("NOW()"),
			}),
		}).
		Create(&stat).Error
	if err != nil {
		return fmt.Errorf("failed to record feed fetch: %w", err)
	}
	return nil
}

func (r *feedStatsRepository) List(ctx context.Context) ([]entity.FeedStat, error) {
	var stats []entity.FeedStat
	if err := r.db.WithContext(ctx).Order("success_rate DESC, feed_url ASC").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to list feed stats: %w", err)
	}
	return stats, nil
}
