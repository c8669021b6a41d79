package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrendRepository persists trending topics, their content correlations and
// per-source coverage aggregates.
type TrendRepository interface {
	UpsertTopic(ctx context.Context, topic *entity.TrendingTopic) error
	SaveCorrelations(ctx context.Context, correlations []entity.TrendCorrelation) error
	UpsertSourceCoverage(ctx context.Context, cov *entity.TrendSourceCoverage) error
	ListActiveTopics(ctx context.Context, limit int) ([]entity.TrendingTopic, error)
	DeactivateStale(ctx context.Context, idle time.Duration) (int64, error)
	CountTopics(ctx context.Context) (int64, error)
	CountCorrelations(ctx context.Context) (int64, error)
}

// NewTrendRepository creates a new instance of TrendRepository.
func NewTrendRepository(db *gorm.DB) TrendRepository {
	return &trendRepository{db: db}
}

type trendRepository struct {
	db *gorm.DB
}

func (r *trendRepository) UpsertTopic(ctx context.Context, topic *entity.TrendingTopic) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"aliases", "category", "source", "region", "velocity", "reach",
			"momentum", "rank", "last_updated", "correlation_score",
			"geographic_relevance", "is_active",
		}),
	}).Create(topic)
	if tx.Error != nil {
		return fmt.Errorf("failed to upsert trending topic: %w", tx.Error)
	}
	return nil
}

func (r *trendRepository) SaveCorrelations(ctx context.Context, correlations []entity.TrendCorrelation) error {
	if len(correlations) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&correlations).Error; err != nil {
		return fmt.Errorf("failed to save correlations: %w", err)
	}
	return nil
}

func (r *trendRepository) UpsertSourceCoverage(ctx context.Context, cov *entity.TrendSourceCoverage) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trend_keyword"}, {Name: "source_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"mention_count":  gorm.Expr("trend_source_coverage.mention_count + ?", cov.MentionCount),
			"total_strength": gorm.Expr("trend_source_coverage.total_strength + ?", cov.TotalStrength),
			"last_mention":   cov.LastMention,
		}),
	}).Create(cov)
	if tx.Error != nil {
		return fmt.Errorf("failed to upsert source coverage: %w", tx.Error)
	}
	return nil
}

func (r *trendRepository) ListActiveTopics(ctx context.Context, limit int) ([]entity.TrendingTopic, error) {
	var topics []entity.TrendingTopic
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("velocity DESC, keyword ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to list active topics: %w", err)
	}
	return topics, nil
}

func (r *trendRepository) DeactivateStale(ctx context.Context, idle time.Duration) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&entity.TrendingTopic{}).
		Where("is_active = ? AND last_updated < ?", true, time.Now().Add(-idle)).
		Update("is_active", false)
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to deactivate stale topics: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *trendRepository) CountTopics(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.TrendingTopic{}).Count(&n).Error
	return n, err
}

func (r *trendRepository) CountCorrelations(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.TrendCorrelation{}).Count(&n).Error
	return n, err
}
