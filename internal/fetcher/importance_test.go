package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportanceScoreKeywordTiers(t *testing.T) {
	// Critical keyword in the title dominates.
	breaking := ImportanceScore("Breaking: dam failure forces evacuations", "Residents are fleeing the area.")
	calm := ImportanceScore("Local bakery opens second location downtown", "The bakery expands after a good year.")
	assert.Greater(t, breaking, calm)
	assert.GreaterOrEqual(t, breaking, 3.0)
}

func TestImportanceScoreSummaryWeighsLess(t *testing.T) {
	inTitle := ImportanceScore("Major outage hits cloud provider services", "Details are emerging.")
	inSummary := ImportanceScore("Outage hits cloud provider services today", "This is a major incident.")
	assert.Greater(t, inTitle, inSummary)
}

func TestImportanceScoreDomainKeywords(t *testing.T) {
	score := ImportanceScore("Startup announces acquisition by larger rival", "The merger closes next quarter.")
	// acquisition (title 1.5) + announcement? no + merger (summary 0.5) at minimum.
	assert.GreaterOrEqual(t, score, 2.0)
}

func TestImportanceScoreLengthSignals(t *testing.T) {
	longSummary := strings.Repeat("word ", 210)
	long := ImportanceScore("A reasonably descriptive headline about events in the region", longSummary)
	short := ImportanceScore("A reasonably descriptive headline about events in the region", "brief")
	assert.InDelta(t, 3.0, long-short, 1e-9)

	// Very short titles are penalised.
	tiny := ImportanceScore("Two words", "")
	assert.Less(t, tiny, 0.0+1e-9)
}

func TestImportanceScoreCappedAtTen(t *testing.T) {
	title := "Breaking urgent emergency crisis alert major significant critical important"
	summary := strings.Repeat(title+" ", 30)
	assert.Equal(t, 10.0, ImportanceScore(title, summary))
}
