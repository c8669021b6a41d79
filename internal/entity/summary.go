package entity

import "time"

// Summary is the audit record written after each generated briefing.
type Summary struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SummaryDate    time.Time `gorm:"index" json:"summary_date"`
	Category       string    `json:"category"`
	Content        string    `gorm:"type:text" json:"content"`
	ModelUsed      string    `json:"model_used"`
	ArticleCount   int       `gorm:"default:0" json:"article_count"`
	ProcessingTime float64   `gorm:"default:0" json:"processing_time"`
	QualityScore   float64   `gorm:"default:0" json:"quality_score"`
}

// TableName specifies the table name for the Summary model.
func (Summary) TableName() string {
	return "summaries"
}
