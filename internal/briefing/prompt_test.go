package briefing

import (
	"strings"
	"testing"
	"time"

	"golang-news-briefer/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLRegistryRegisterAndLookup(t *testing.T) {
	r := NewURLRegistry()
	r.Register("[Reddit] Apple announces new iPhone with satellite features", "https://example.com/iphone")

	assert.Equal(t, 1, r.Size())

	// Canonical, lowercase, stripped prefix and leading-token variations all
	// resolve to the same URL.
	for _, v := range []string{
		"[Reddit] Apple announces new iPhone with satellite features",
		"[reddit] apple announces new iphone with satellite features",
		"Apple announces new iPhone with satellite features",
		"[Reddit] Apple",
		"[Reddit] Apple announces",
	} {
		url, ok := r.Lookup(v)
		assert.True(t, ok, "variation %q should resolve", v)
		assert.Equal(t, "https://example.com/iphone", url)
	}

	_, ok := r.Lookup("completely different title")
	assert.False(t, ok)
}

func TestURLRegistryIgnoresEmpty(t *testing.T) {
	r := NewURLRegistry()
	r.Register("", "https://example.com")
	r.Register("Title", "")
	assert.Equal(t, 0, r.Size())
}

func TestTitleVariations(t *testing.T) {
	title := "Breaking: Federal Reserve signals a pause on interest rate hikes this year"
	variations := TitleVariations(title)

	assert.Contains(t, variations, strings.ToLower(title))
	assert.Contains(t, variations, "Federal Reserve signals a pause on interest rate hikes this year")
	assert.Contains(t, variations, strings.TrimSpace(title[:50]))
	assert.Contains(t, variations, strings.TrimSpace(title[:40]))
	assert.Contains(t, variations, strings.TrimSpace(title[:30]))
	assert.Contains(t, variations, "Breaking: Federal")
	assert.Contains(t, variations, "Breaking: Federal Reserve")

	// Short titles skip truncation variants.
	short := TitleVariations("Quick note")
	for _, v := range short {
		assert.LessOrEqual(t, len(v), len("Quick note"))
	}
}

func TestBuildRegistersEveryRenderedItem(t *testing.T) {
	a := NewPromptAssembler()
	tiers := Tiered{
		Top: []ContentItem{
			articleItem("major merger reshapes the industry landscape", entity.CategoryBusiness, 8),
		},
		Mid: []ContentItem{
			articleItem("regulators respond to merger announcement quickly", entity.CategoryBusiness, 5),
		},
		Quick: []ContentItem{
			articleItem("smaller firms consider their options now", entity.CategoryBusiness, 2),
		},
	}

	prompt, registry := a.Build(tiers, nil, StyleComprehensive, time.Now())

	assert.Equal(t, 3, registry.Size())
	for _, item := range tiers.All() {
		url, ok := registry.URLFor(item.Title())
		require.True(t, ok)
		assert.Equal(t, item.URL(), url)
		assert.Contains(t, prompt, item.Title())
	}
}

func TestBuildSectionsAndInstructions(t *testing.T) {
	a := NewPromptAssembler()
	tiers := Tiered{
		Top:   []ContentItem{articleItem("top story headline for today report", entity.CategoryWorldNews, 9)},
		Mid:   []ContentItem{articleItem("mid tier story gets shorter treatment", entity.CategoryTech, 5)},
		Quick: []ContentItem{articleItem("quick headline only entry here", entity.CategorySports, 1)},
	}

	prompt, _ := a.Build(tiers, nil, StyleQuick, time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, prompt, "=== TOP STORIES (1)")
	assert.Contains(t, prompt, "=== ALSO NOTABLE (1)")
	assert.Contains(t, prompt, "=== QUICK HEADLINES (1)")
	assert.Contains(t, prompt, "[SPORTS]")
	assert.Contains(t, prompt, "CRITICAL LINKING REQUIREMENTS")
	assert.Contains(t, prompt, Marker)
	assert.Contains(t, prompt, "Here are today's essentials")
}

func TestBuildFallsBackToComprehensiveStyle(t *testing.T) {
	a := NewPromptAssembler()
	prompt, _ := a.Build(Tiered{}, nil, Style("nonsense"), time.Now())
	assert.Contains(t, prompt, styleConfigs[StyleComprehensive].greeting)
}

func TestBuildUpdateContextLine(t *testing.T) {
	a := NewPromptAssembler()
	article := &entity.Article{
		Title:            "Breaking: evacuation zone widened overnight",
		URL:              "https://example.com/evac",
		Category:         entity.CategoryWorldNews,
		UpdateContext:    "Breaking development",
		PreviousCoverage: "Evacuation ordered for coastal towns",
	}
	tiers := Tiered{Top: []ContentItem{NewArticleItem(article)}}

	prompt, _ := a.Build(tiers, nil, StyleComprehensive, time.Now())
	assert.Contains(t, prompt, "UPDATE: Breaking development (previously: Evacuation ordered for coastal towns)")
}

func TestBuildTrendAlert(t *testing.T) {
	a := NewPromptAssembler()
	analysis := &CrossSourceTrendAnalysis{
		TripleCoverage: []TrendCoverage{{
			Trend:         entity.TrendingTopic{Keyword: "chip shortage"},
			Sources:       []string{"trends24", "rss", "reddit"},
			TotalStrength: 3.4,
			RSSMatches: []TrendMatch{{
				Item:  articleItem("chip shortage easing at last", entity.CategoryTech, 6),
				Score: 0.9,
			}},
		}},
	}

	prompt, _ := a.Build(Tiered{}, analysis, StyleAnalytical, time.Now())
	assert.Contains(t, prompt, "=== CROSS-SOURCE TREND ALERT ===")
	assert.Contains(t, prompt, "chip shortage — covered by 3 sources")
	assert.Contains(t, prompt, "Best coverage: chip shortage easing at last")
}

func TestSortedEntriesLongestFirst(t *testing.T) {
	r := NewURLRegistry()
	r.Register("Short title", "https://example.com/a")
	r.Register("A considerably longer headline about many things", "https://example.com/b")

	entries := r.sortedEntries()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, len(entries[i-1].Variation), len(entries[i].Variation))
	}
}
