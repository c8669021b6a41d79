package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryFingerprintRepository is the persistence interface for the story
// deduplication window.
type StoryFingerprintRepository interface {
	ListRecent(ctx context.Context, days int) ([]entity.StoryFingerprint, error)
	Create(ctx context.Context, fp *entity.StoryFingerprint) error
	Touch(ctx context.Context, storyHash string, importanceScore float64) error
	Cleanup(ctx context.Context, days int) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewStoryFingerprintRepository creates a new instance of StoryFingerprintRepository.
func NewStoryFingerprintRepository(db *gorm.DB) StoryFingerprintRepository {
	return &storyFingerprintRepository{db: db}
}

type storyFingerprintRepository struct {
	db *gorm.DB
}

func (r *storyFingerprintRepository) ListRecent(ctx context.Context, days int) ([]entity.StoryFingerprint, error) {
	var fps []entity.StoryFingerprint
	cutoff := time.Now().AddDate(0, 0, -days)
	err := r.db.WithContext(ctx).
		Where("last_mentioned > ?", cutoff).
		Order("last_mentioned DESC").
		Find(&fps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent fingerprints: %w", err)
	}
	return fps, nil
}

// Create inserts a fingerprint. A concurrent insert of the same story_hash
// degrades to a mention bump, matching the admit-or-touch semantics.
func (r *storyFingerprintRepository) Create(ctx context.Context, fp *entity.StoryFingerprint) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "story_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_mentioned": time.Now(),
			"mention_count":  gorm.Expr("story_tracking.mention_count + 1"),
		}),
	}).Create(fp)
	if tx.Error != nil {
		return fmt.Errorf("failed to upsert fingerprint: %w", tx.Error)
	}
	return nil
}

// Touch records a re-observation: bumps last_mentioned and mention_count and
// lifts importance_score to the max seen.
func (r *storyFingerprintRepository) Touch(ctx context.Context, storyHash string, importanceScore float64) error {
	err := r.db.WithContext(ctx).Model(&entity.StoryFingerprint{}).
		Where("story_hash = ?", storyHash).
		Updates(map[string]interface{}{
			"last_mentioned":   time.Now(),
			"mention_count":    gorm.Expr("mention_count + 1"),
			"importance_score": gorm.Expr("GREATEST(importance_score, ?)", importanceScore),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to touch fingerprint: %w", err)
	}
	return nil
}

func (r *storyFingerprintRepository) Cleanup(ctx context.Context, days int) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("last_mentioned < ?", time.Now().AddDate(0, 0, -days)).
		Delete(&entity.StoryFingerprint{})
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to cleanup fingerprints: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *storyFingerprintRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.StoryFingerprint{}).Count(&n).Error
	return n, err
}
