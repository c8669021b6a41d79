package entity

import (
	"time"

	"github.com/lib/pq"
)

// StoryFingerprint is a compact representation of a story used to
// deduplicate coverage across briefings over a rolling window.
type StoryFingerprint struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	StoryHash       string         `gorm:"column:story_hash;unique;not null" json:"story_hash"`
	Title           string         `gorm:"not null" json:"title"`
	Summary         string         `json:"summary"`
	MainTopics      pq.StringArray `gorm:"type:text[]" json:"main_topics"`
	FirstMentioned  time.Time      `json:"first_mentioned"`
	LastMentioned   time.Time      `gorm:"index" json:"last_mentioned"`
	MentionCount    int            `gorm:"default:1" json:"mention_count"`
	ImportanceScore float64        `gorm:"default:0" json:"importance_score"`
	Category        string         `json:"category"`
	IsOngoing       bool           `gorm:"column:is_ongoing;default:false" json:"is_ongoing"`
}

// TableName specifies the table name for the StoryFingerprint model.
func (StoryFingerprint) TableName() string {
	return "story_tracking"
}
