package entity

import "time"

// FeedStat tracks per-feed fetch health.
type FeedStat struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	FeedURL           string    `gorm:"column:feed_url;uniqueIndex;not null" json:"feed_url"`
	Category          string    `json:"category"`
	TotalFetches      int64     `gorm:"default:0" json:"total_fetches"`
	SuccessfulFetches int64     `gorm:"default:0" json:"successful_fetches"`
	SuccessRate       float64   `gorm:"default:0" json:"success_rate"`
	AvgResponseTime   float64   `gorm:"default:0" json:"avg_response_time"`
	LastArticles      int       `gorm:"default:0" json:"last_articles"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for the FeedStat model.
func (FeedStat) TableName() string {
	return "feed_stats"
}
