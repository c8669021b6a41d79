package fetcher

import "strings"

var (
	criticalKeywords = []string{"breaking", "urgent", "emergency", "crisis", "alert"}
	majorKeywords    = []string{"major", "significant", "critical", "important"}
	domainKeywords   = []string{
		"acquisition", "merger", "funding", "ipo", "earnings",
		"breakthrough", "discovery", "announcement", "launch", "release",
	}
)

// ImportanceScore rates how significant a fetched article looks based on
// keyword tiers and length signals. Capped at 10.
func ImportanceScore(title, summary string) float64 {
	titleLower := strings.ToLower(title)
	summaryLower := strings.ToLower(summary)

	score := 0.0
	for _, kw := range criticalKeywords {
		if strings.Contains(titleLower, kw) {
			score += 3.0
		}
		if strings.Contains(summaryLower, kw) {
			score += 2.0
		}
	}
	for _, kw := range majorKeywords {
		if strings.Contains(titleLower, kw) {
			score += 2.0
		}
		if strings.Contains(summaryLower, kw) {
			score += 1.0
		}
	}
	for _, kw := range domainKeywords {
		if strings.Contains(titleLower, kw) {
			score += 1.5
		}
		if strings.Contains(summaryLower, kw) {
			score += 0.5
		}
	}

	wordCount := len(strings.Fields(summary))
	if wordCount > 50 {
		score += 0.5
	}
	if wordCount > 100 {
		score += 1.0
	}
	if wordCount > 200 {
		score += 1.5
	}

	titleWords := len(strings.Fields(title))
	if titleWords < 3 {
		score -= 0.5
	} else if titleWords > 8 {
		score += 0.5
	}

	if score > 10.0 {
		score = 10.0
	}
	return score
}
