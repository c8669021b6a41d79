package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Correlation match methods. A correlation records which methods found it.
const (
	MatchExact      = "exact"
	MatchSemantic   = "semantic"
	MatchEntity     = "entity"
	MatchContext    = "context"
	MatchPhrase     = "phrase"
	MatchGeographic = "geographic"
)

// Content sources a correlation can point into.
const (
	ContentSourceRSS    = "rss"
	ContentSourceReddit = "reddit"
)

// TrendCorrelation is a join row between a trending topic and a content item.
// Content is referenced by id (article URL or post id), never by object, so
// the three entity stores have independent lifetimes.
type TrendCorrelation struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	TrendKeyword        string         `gorm:"index;not null" json:"trend_keyword"`
	ContentID           string         `gorm:"not null" json:"content_id"`
	ContentSource       string         `gorm:"not null" json:"content_source"`
	CorrelationStrength float64        `json:"correlation_strength"`
	CorrelationType     string         `gorm:"default:multi_method" json:"correlation_type"`
	MatchTypes          datatypes.JSON `json:"match_types"`
	DetectedAt          time.Time      `gorm:"autoCreateTime" json:"detected_at"`
	IsCrossSource       bool           `gorm:"default:false" json:"is_cross_source"`
}

// TableName specifies the table name for the TrendCorrelation model.
func (TrendCorrelation) TableName() string {
	return "trend_correlations"
}

// TrendSourceCoverage tracks per-source mention aggregates for a trend.
type TrendSourceCoverage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TrendKeyword  string    `gorm:"uniqueIndex:idx_trend_source;not null" json:"trend_keyword"`
	SourceName    string    `gorm:"uniqueIndex:idx_trend_source;not null" json:"source_name"`
	MentionCount  int       `gorm:"default:0" json:"mention_count"`
	TotalStrength float64   `gorm:"default:0" json:"total_strength"`
	FirstMention  time.Time `json:"first_mention"`
	LastMention   time.Time `json:"last_mention"`
}

// TableName specifies the table name for the TrendSourceCoverage model.
func (TrendSourceCoverage) TableName() string {
	return "trend_source_coverage"
}
