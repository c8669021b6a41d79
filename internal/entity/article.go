package entity

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Article categories. Every article is bucketed into exactly one.
const (
	CategoryTech        = "tech"
	CategoryWorldNews   = "world_news"
	CategorySports      = "sports"
	CategoryCuttingEdge = "cutting_edge"
	CategoryBusiness    = "business"
	CategorySecurity    = "security"
	CategoryOther       = "other"
)

// Categories lists the fixed category enumeration.
func Categories() []string {
	return []string{
		CategoryTech, CategoryWorldNews, CategorySports, CategoryCuttingEdge,
		CategoryBusiness, CategorySecurity, CategoryOther,
	}
}

// Article represents a news article fetched from an RSS feed.
type Article struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	URLHash         string     `gorm:"column:url_hash;unique;not null" json:"url_hash"`
	Title           string     `gorm:"not null" json:"title"`
	Summary         string     `json:"summary"`
	Content         string     `json:"content"`
	URL             string     `gorm:"not null" json:"url"`
	Category        string     `gorm:"index" json:"category"`
	Source          string     `json:"source"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	FetchedDate     time.Time  `gorm:"index;autoCreateTime" json:"fetched_date"`
	Processed       bool       `gorm:"index;default:false" json:"processed"`
	ImportanceScore float64    `gorm:"index;default:0" json:"importance_score"`
	WordCount       int        `gorm:"default:0" json:"word_count"`
	Language        string     `gorm:"default:en" json:"language"`

	// Annotations added by the deduplication pass, never persisted.
	UpdateContext    string `gorm:"-" json:"update_context,omitempty"`
	PreviousCoverage string `gorm:"-" json:"previous_coverage,omitempty"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// HashURL derives an article's identity hash from its URL.
func HashURL(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}
