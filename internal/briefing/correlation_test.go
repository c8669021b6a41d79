package briefing

import (
	"context"
	"testing"

	"golang-news-briefer/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usGeo() GeographicConfig {
	return GeographicConfig{Country: "United States", IncludeNational: true}
}

func TestCorrelateTripleCoverage(t *testing.T) {
	engine := NewCorrelationEngine(usGeo(), nil, testLogger(t))

	trends := []entity.TrendingTopic{
		{Keyword: "OpenAI", Category: "tech", Velocity: 0.9},
	}
	articles := []entity.Article{
		{Title: "OpenAI releases new model", Summary: "OpenAI announced a new model today with large gains.", URL: "https://example.com/openai", Category: entity.CategoryTech},
	}
	posts := []entity.SocialPost{
		{PostID: "reddit:abc", Title: "OpenAI model discussion", Content: "Thread about the OpenAI release", URL: "https://reddit.com/abc", Score: 900},
	}

	analysis := engine.Correlate(context.Background(), trends, articles, posts)
	require.NotNil(t, analysis)
	require.Len(t, analysis.TripleCoverage, 1)

	cov := analysis.TripleCoverage[0]
	// trends24 itself plus both content sources.
	assert.ElementsMatch(t, []string{"trends24", "rss", "reddit"}, cov.Sources)
	assert.Equal(t, 2.0, cov.CrossSourceBoost)
	assert.NotEmpty(t, cov.BestHeadline())
}

func TestCorrelateBelowThresholdIsNotAdmitted(t *testing.T) {
	engine := NewCorrelationEngine(usGeo(), nil, testLogger(t))

	trends := []entity.TrendingTopic{
		{Keyword: "SuperBowl", Category: "sports", Velocity: 0.2},
	}
	articles := []entity.Article{
		{Title: "Gardening tips for spring", Summary: "How to prepare your soil.", URL: "https://example.com/garden", Category: entity.CategoryOther},
	}

	analysis := engine.Correlate(context.Background(), trends, articles, nil)
	require.NotNil(t, analysis)
	assert.Empty(t, analysis.TripleCoverage)
	assert.Empty(t, analysis.DoubleCoverage)

	// The trend still lands in exactly one group.
	total := len(analysis.GeographicTrends) + len(analysis.EmergingSignals) + len(analysis.SingleCoverage)
	assert.Equal(t, 1, total)
}

func TestScorePairCapsAtOne(t *testing.T) {
	engine := NewCorrelationEngine(usGeo(), nil, testLogger(t))
	trend := entity.TrendingTopic{Keyword: "US economy", Category: "business", Aliases: []string{"economy"}}
	article := entity.Article{
		Title:    "US economy grows as markets rally",
		Summary:  "The US economy expanded. Economy watchers in America cheer.",
		Category: entity.CategoryBusiness,
	}

	score, matchTypes := engine.scorePair(&trend, NewArticleItem(&article))
	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.0)
	assert.Contains(t, matchTypes, entity.MatchExact)
	assert.Contains(t, matchTypes, entity.MatchGeographic)
}

func TestExactKeywordMatch(t *testing.T) {
	trend := entity.TrendingTopic{Keyword: "interest rates"}
	assert.Equal(t, 1.0, exactKeywordMatch(&trend, "the fed held interest rates steady"))
	assert.Equal(t, 0.0, exactKeywordMatch(&trend, "sports scores from last night"))

	// Single-word keyword on a token boundary scores 0.8.
	single := entity.TrendingTopic{Keyword: "inflation"}
	assert.Equal(t, 1.0, exactKeywordMatch(&single, "inflation cooled in june"))
}

func TestContextualTopicMatch(t *testing.T) {
	trend := entity.TrendingTopic{Keyword: "x", Category: "tech"}
	assert.Equal(t, 0.8, contextualTopicMatch(&trend, "tech"))
	assert.Equal(t, 0.6, contextualTopicMatch(&trend, "cutting_edge"))
	assert.Equal(t, 0.0, contextualTopicMatch(&trend, "sports"))
	assert.Equal(t, 0.0, contextualTopicMatch(&trend, ""))
}

func TestPhraseSimilarityMatch(t *testing.T) {
	trend := entity.TrendingTopic{Keyword: "climate summit talks"}
	// Two of three phrase words present.
	score := phraseSimilarityMatch(&trend, "the climate talks resumed today")
	assert.InDelta(t, 2.0/3.0*0.8, score, 1e-9)

	// Morphological variant of a single-word trend.
	single := entity.TrendingTopic{Keyword: "strike"}
	assert.Equal(t, 0.6, phraseSimilarityMatch(&single, "the strikes continue nationwide"))
}

func TestGeographicRelevance(t *testing.T) {
	engine := NewCorrelationEngine(usGeo(), nil, testLogger(t))

	local := entity.TrendingTopic{Keyword: "US election results", Category: "politics", Region: "united-states"}
	score := engine.GeographicRelevance(&local)
	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)

	neutral := entity.TrendingTopic{Keyword: "K-pop comeback", Category: "entertainment", Region: "south-korea"}
	assert.Equal(t, 0.0, engine.GeographicRelevance(&neutral))
}

func TestCorrelateDeterministicOrdering(t *testing.T) {
	engine := NewCorrelationEngine(usGeo(), nil, testLogger(t))

	trends := []entity.TrendingTopic{
		{Keyword: "zeta storm", Category: "politics"},
		{Keyword: "alpha storm", Category: "politics"},
	}

	a := engine.Correlate(context.Background(), trends, nil, nil)
	b := engine.Correlate(context.Background(), trends, nil, nil)
	require.Equal(t, len(a.EmergingSignals), len(b.EmergingSignals))

	// Equal strength resolves by keyword ascending, on every run.
	require.Len(t, a.EmergingSignals, 2)
	assert.Equal(t, "alpha storm", a.EmergingSignals[0].Trend.Keyword)
	assert.Equal(t, a.EmergingSignals[0].Trend.Keyword, b.EmergingSignals[0].Trend.Keyword)
}
