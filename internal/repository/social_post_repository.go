package repository

import (
	"context"
	"fmt"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialPostRepository persists Reddit posts with dedup on post_id.
type SocialPostRepository interface {
	BulkCreateIgnoreConflict(ctx context.Context, posts []entity.SocialPost) (int64, error)
	GetRecent(ctx context.Context, hours int, limit int, unprocessedOnly bool) ([]entity.SocialPost, error)
	MarkProcessed(ctx context.Context, postIDs []string) error
	Cleanup(ctx context.Context, days int) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewSocialPostRepository creates a new instance of SocialPostRepository.
func NewSocialPostRepository(db *gorm.DB) SocialPostRepository {
	return &socialPostRepository{db: db}
}

type socialPostRepository struct {
	db *gorm.DB
}

func (r *socialPostRepository) BulkCreateIgnoreConflict(ctx context.Context, posts []entity.SocialPost) (int64, error) {
	if len(posts) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&posts)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk create social posts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *socialPostRepository) GetRecent(ctx context.Context, hours int, limit int, unprocessedOnly bool) ([]entity.SocialPost, error) {
	var posts []entity.SocialPost
	q := r.db.WithContext(ctx).
		Where("fetched_date >= NOW() - make_interval(hours => ?)", hours)
	if unprocessedOnly {
		q = q.Where("processed = ?", false)
	}
	q = q.Order("score DESC, fetched_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch social posts: %w", err)
	}
	return posts, nil
}

func (r *socialPostRepository) MarkProcessed(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.SocialPost{}).
		Where("post_id IN ?", postIDs).
		Update("processed", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark social posts processed: %w", err)
	}
	return nil
}

func (r *socialPostRepository) Cleanup(ctx context.Context, days int) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("fetched_date < NOW() - make_interval(days => ?)", days).
		Delete(&entity.SocialPost{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cleanup social posts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *socialPostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SocialPost{}).Count(&n).Error
	return n, err
}
