package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-briefer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for interacting with stored articles.
type ArticleRepository interface {
	CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error)
	BulkCreateIgnoreConflict(ctx context.Context, articles []entity.Article) (int, error)
	GetRecent(ctx context.Context, hours int, limit int, unprocessedOnly bool) ([]entity.Article, error)
	MarkProcessed(ctx context.Context, urlHashes []string) error
	Cleanup(ctx context.Context, days int) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts an article, silently skipping url_hash
// duplicates. Returns true when a row was actually inserted.
func (r *articleRepository) CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error) {
	if article.URLHash == "" {
		article.URLHash = entity.HashURL(article.URL)
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url_hash"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, fmt.Errorf("failed to create article: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *articleRepository) BulkCreateIgnoreConflict(ctx context.Context, articles []entity.Article) (int, error) {
	inserted := 0
	for i := range articles {
		ok, err := r.CreateIgnoreConflict(ctx, &articles[i])
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func (r *articleRepository) GetRecent(ctx context.Context, hours int, limit int, unprocessedOnly bool) ([]entity.Article, error) {
	var articles []entity.Article
	q := r.db.WithContext(ctx).
		Where("fetched_date >= ?", time.Now().Add(-time.Duration(hours)*time.Hour)).
		Order("importance_score DESC, fetched_date DESC")
	if unprocessedOnly {
		q = q.Where("processed = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent articles: %w", err)
	}
	return articles, nil
}

// MarkProcessed flags the given articles as included in a briefing. The
// update is idempotent on url_hash.
func (r *articleRepository) MarkProcessed(ctx context.Context, urlHashes []string) error {
	if len(urlHashes) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("url_hash IN ?", urlHashes).
		Update("processed", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark articles processed: %w", err)
	}
	return nil
}

func (r *articleRepository) Cleanup(ctx context.Context, days int) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("fetched_date < ?", time.Now().AddDate(0, 0, -days)).
		Delete(&entity.Article{})
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to cleanup articles: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *articleRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Article{}).Count(&n).Error
	return n, err
}
