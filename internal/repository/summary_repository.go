package repository

import (
	"context"
	"fmt"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
)

// SummaryRepository persists briefing audit rows.
type SummaryRepository interface {
	Create(ctx context.Context, summary *entity.Summary) error
	GetRecent(ctx context.Context, limit int) ([]entity.Summary, error)
	Count(ctx context.Context) (int64, error)
}

// NewSummaryRepository creates a new instance of SummaryRepository.
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

type summaryRepository struct {
	db *gorm.DB
}

func (r *summaryRepository) Create(ctx context.Context, summary *entity.Summary) error {
	if err := r.db.WithContext(ctx).Create(summary).Error; err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func (r *summaryRepository) GetRecent(ctx context.Context, limit int) ([]entity.Summary, error) {
	var summaries []entity.Summary
	q := r.db.WithContext(ctx).Order("summary_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch summaries: %w", err)
	}
	return summaries, nil
}

func (r *summaryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Summary{}).Count(&n).Error
	return n, err
}
