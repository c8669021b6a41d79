package entity

import (
	"time"

	"github.com/lib/pq"
)

// TrendingTopic is a trending keyword detected from an external trends source.
type TrendingTopic struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Keyword             string         `gorm:"uniqueIndex;not null" json:"keyword"`
	Aliases             pq.StringArray `gorm:"type:text[]" json:"aliases"`
	Category            string         `json:"category"`
	Source              string         `json:"source"`
	Region              string         `json:"region"`
	Velocity            float64        `gorm:"default:0" json:"velocity"`
	Reach               int            `gorm:"default:0" json:"reach"`
	Momentum            string         `gorm:"default:emerging" json:"momentum"`
	Rank                int            `gorm:"default:0" json:"rank"`
	FirstDetected       *time.Time     `json:"first_detected,omitempty"`
	PeakTime            *time.Time     `json:"peak_time,omitempty"`
	LastUpdated         *time.Time     `json:"last_updated,omitempty"`
	CorrelationScore    float64        `gorm:"default:0" json:"correlation_score"`
	GeographicRelevance float64        `gorm:"default:0" json:"geographic_relevance"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for the TrendingTopic model.
func (TrendingTopic) TableName() string {
	return "trending_topics"
}
