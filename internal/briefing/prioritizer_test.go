package briefing

import (
	"fmt"
	"testing"
	"time"

	"golang-news-briefer/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleItem(title, category string, importance float64) ContentItem {
	return NewArticleItem(&entity.Article{
		Title:           title,
		URL:             "https://example.com/" + storyGroupKey(title),
		Category:        category,
		ImportanceScore: importance,
	})
}

func TestPrioritizeRespectsCapacities(t *testing.T) {
	p := NewPrioritizer(TierCapacities{Top: 2, Mid: 3, Quick: 4})

	var items []ContentItem
	for i := 0; i < 20; i++ {
		items = append(items, articleItem(fmt.Sprintf("story number %02d about topic %02d", i, i), entity.CategoryTech, float64(i%10)))
	}
	tiers := p.Prioritize(items, nil)

	assert.Len(t, tiers.Top, 2)
	assert.Len(t, tiers.Mid, 3)
	assert.Len(t, tiers.Quick, 4)
	assert.Equal(t, 9, tiers.Size())

	for _, item := range tiers.Top {
		assert.Equal(t, TierTop, item.Tier)
	}
	for _, item := range tiers.Quick {
		assert.Equal(t, TierQuick, item.Tier)
	}
}

func TestPrioritizeOrdersByScoreDescending(t *testing.T) {
	p := NewPrioritizer(DefaultTierCapacities())

	items := []ContentItem{
		articleItem("minor local note", entity.CategoryTech, 1),
		articleItem("breaking global crisis coverage", entity.CategoryTech, 9),
		articleItem("medium interest piece", entity.CategoryTech, 5),
	}
	tiers := p.Prioritize(items, nil)

	require.Len(t, tiers.Top, 3)
	assert.Equal(t, "breaking global crisis coverage", tiers.Top[0].Title())
	assert.Equal(t, "minor local note", tiers.Top[2].Title())
}

func TestPrioritizeIsPure(t *testing.T) {
	p := NewPrioritizer(DefaultTierCapacities())

	items := []ContentItem{
		articleItem("first story about markets", entity.CategoryBusiness, 4),
		articleItem("second story about science", entity.CategoryCuttingEdge, 4),
	}

	a := p.Prioritize(items, nil)
	b := p.Prioritize(items, nil)
	require.Equal(t, a.Size(), b.Size())
	for i := range a.Top {
		assert.Equal(t, a.Top[i].Title(), b.Top[i].Title())
	}

	// Inputs are not mutated.
	assert.Zero(t, items[0].PriorityScore)
	assert.Empty(t, items[0].Tier)
}

func TestPrioritizeDiversityCeiling(t *testing.T) {
	p := NewPrioritizer(TierCapacities{Top: 5, Mid: 10, Quick: 10})

	// Ten sports items with high importance, five world items with low.
	// The sports ceiling is round(0.10 * 15) ≈ 2, so the top tier cannot be
	// all sports even though sports scores higher.
	var items []ContentItem
	for i := 0; i < 10; i++ {
		items = append(items, articleItem(fmt.Sprintf("sports final game %02d recap", i), entity.CategorySports, 9))
	}
	for i := 0; i < 5; i++ {
		items = append(items, articleItem(fmt.Sprintf("world summit day %02d report", i), entity.CategoryWorldNews, 2))
	}

	tiers := p.Prioritize(items, nil)
	require.Len(t, tiers.Top, 5)

	sportsInTop := 0
	for _, item := range tiers.Top {
		if item.Category() == entity.CategorySports {
			sportsInTop++
		}
	}
	assert.Equal(t, 2, sportsInTop)
}

func TestSocialEngagementScoring(t *testing.T) {
	p := NewPrioritizer(DefaultTierCapacities())
	now := time.Now()

	viral := NewSocialItem(&entity.SocialPost{
		Title: "viral thread on outage", URL: "https://reddit.com/a",
		Score: 6000, CommentsCount: 900, CreatedUTC: &now, InterestScore: 4,
	})
	quiet := NewSocialItem(&entity.SocialPost{
		Title: "quiet thread on outage", URL: "https://reddit.com/b",
		Score: 10, CommentsCount: 2, CreatedUTC: &now, InterestScore: 4,
	})

	tiers := p.Prioritize([]ContentItem{quiet, viral}, nil)
	require.Len(t, tiers.Top, 2)
	assert.Equal(t, "viral thread on outage", tiers.Top[0].Title())
	assert.Greater(t, tiers.Top[0].PriorityScore, tiers.Top[1].PriorityScore)
}

func TestStoryGroupBonus(t *testing.T) {
	// Three items sharing the same first three meaningful tokens form a group.
	items := []ContentItem{
		articleItem("election results show tight race", entity.CategoryWorldNews, 3),
		articleItem("election results show recount likely", entity.CategoryWorldNews, 3),
		articleItem("election results show surprise upset", entity.CategoryWorldNews, 3),
		articleItem("unrelated science discovery news", entity.CategoryCuttingEdge, 3),
	}

	sizes := storyGroupSizes(items)
	assert.Equal(t, 3, sizes[storyGroupKey("election results show tight race")])
	assert.Equal(t, 1, sizes[storyGroupKey("unrelated science discovery news")])
}

func TestTrendBoostIndexTakesMax(t *testing.T) {
	item := articleItem("chip shortage easing across suppliers", entity.CategoryTech, 5)

	analysis := &CrossSourceTrendAnalysis{
		TripleCoverage: []TrendCoverage{{
			Trend:   entity.TrendingTopic{Keyword: "chips"},
			Sources: []string{"trends24", "rss", "reddit"},
			RSSMatches: []TrendMatch{
				{Item: item, Score: 0.5},
				{Item: item, Score: 0.8},
			},
		}},
	}

	boosts := trendBoostIndex(analysis)
	// P · 2.0 · (0.5 · |sources|) with the strongest match winning.
	assert.InDelta(t, 0.8*2.0*0.5*3, boosts[item.URL()], 1e-9)
}

func TestStoryGroupKey(t *testing.T) {
	assert.Equal(t, storyGroupKey("The Election Results Show a Win"), storyGroupKey("election results show defeat"))
	assert.NotEqual(t, storyGroupKey("election results show"), storyGroupKey("market results show"))
}
