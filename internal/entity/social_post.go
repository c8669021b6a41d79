package entity

import "time"

// Social platforms producing posts.
const (
	PlatformReddit         = "reddit"
	PlatformRedditPersonal = "reddit_personal"
)

// SocialPost represents a post pulled from a social platform feed.
type SocialPost struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PostID        string     `gorm:"column:post_id;unique;not null" json:"post_id"`
	Platform      string     `gorm:"not null" json:"platform"`
	Title         string     `gorm:"not null" json:"title"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	SourceURL     string     `gorm:"column:source_url" json:"source_url"`
	Community     string     `json:"community"`
	Author        string     `json:"author"`
	Score         int        `gorm:"default:0" json:"score"`
	CommentsCount int        `gorm:"default:0" json:"comments_count"`
	CreatedUTC    *time.Time `gorm:"column:created_utc" json:"created_utc,omitempty"`
	FetchedDate   time.Time  `gorm:"autoCreateTime" json:"fetched_date"`
	Processed     bool       `gorm:"default:false" json:"processed"`
	IsNSFW        bool       `gorm:"column:is_nsfw;default:false" json:"is_nsfw"`
	InterestScore float64    `gorm:"default:0" json:"interest_score"`
}

// TableName specifies the table name for the SocialPost model.
func (SocialPost) TableName() string {
	return "social_posts"
}

// EngagementLevel buckets the post by net score.
func (p *SocialPost) EngagementLevel() string {
	switch {
	case p.Score > 5000:
		return "viral"
	case p.Score > 1000:
		return "high"
	case p.Score > 100:
		return "moderate"
	default:
		return "low"
	}
}
