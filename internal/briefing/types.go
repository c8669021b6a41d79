package briefing

import (
	"strings"

	"golang-news-briefer/internal/entity"
)

// ContentKind discriminates article vs social content flowing through the pipeline.
type ContentKind string

const (
	KindArticle ContentKind = "article"
	KindSocial  ContentKind = "social"
)

// Tier labels for prioritised content.
const (
	TierTop   = "top"
	TierMid   = "mid"
	TierQuick = "quick"
)

// ContentItem is a tagged variant over Article and SocialPost. Exactly one of
// Article or Post is set, matching Kind.
type ContentItem struct {
	Kind    ContentKind
	Article *entity.Article
	Post    *entity.SocialPost

	Tier          string
	PriorityScore float64
}

// NewArticleItem wraps an article.
func NewArticleItem(a *entity.Article) ContentItem {
	return ContentItem{Kind: KindArticle, Article: a}
}

// NewSocialItem wraps a social post.
func NewSocialItem(p *entity.SocialPost) ContentItem {
	return ContentItem{Kind: KindSocial, Post: p}
}

// Title returns the display title of the item.
func (c ContentItem) Title() string {
	if c.Kind == KindSocial {
		return c.Post.Title
	}
	return c.Article.Title
}

// Text returns title plus body text used for matching.
func (c ContentItem) Text() string {
	if c.Kind == KindSocial {
		return strings.TrimSpace(c.Post.Title + " " + c.Post.Content)
	}
	return strings.TrimSpace(c.Article.Title + " " + c.Article.Summary + " " + c.Article.Content)
}

// URL returns the canonical link for the item.
func (c ContentItem) URL() string {
	if c.Kind == KindSocial {
		return c.Post.URL
	}
	return c.Article.URL
}

// Source returns the origin label (feed source or subreddit).
func (c ContentItem) Source() string {
	if c.Kind == KindSocial {
		if c.Post.Community != "" {
			return "r/" + c.Post.Community
		}
		return c.Post.Platform
	}
	return c.Article.Source
}

// Category returns the item's category. Social posts are uncategorised and
// fall into the catch-all bucket.
func (c ContentItem) Category() string {
	if c.Kind == KindSocial {
		return entity.CategoryOther
	}
	return c.Article.Category
}

// Importance returns the base importance for scoring. Social posts carry their
// interest score instead.
func (c ContentItem) Importance() float64 {
	if c.Kind == KindSocial {
		return c.Post.InterestScore
	}
	return c.Article.ImportanceScore
}

// TrendMatch records one admitted (trend, content) correlation.
type TrendMatch struct {
	Item       ContentItem
	Score      float64
	Strong     bool
	MatchTypes []string
}

// TrendCoverage aggregates everything known about one trend across sources.
type TrendCoverage struct {
	Trend               entity.TrendingTopic
	Sources             []string
	RSSMatches          []TrendMatch
	SocialMatches       []TrendMatch
	TotalStrength       float64
	CrossSourceBoost    float64
	GeographicRelevance float64
}

// BestHeadline returns the title of the strongest correlated content, empty if none.
func (t TrendCoverage) BestHeadline() string {
	best := ""
	bestScore := 0.0
	for _, m := range t.RSSMatches {
		if m.Score > bestScore {
			bestScore = m.Score
			best = m.Item.Title()
		}
	}
	for _, m := range t.SocialMatches {
		if m.Score > bestScore {
			bestScore = m.Score
			best = m.Item.Title()
		}
	}
	return best
}

// CrossSourceTrendAnalysis groups trends by how widely sources cover them.
type CrossSourceTrendAnalysis struct {
	TripleCoverage   []TrendCoverage
	DoubleCoverage   []TrendCoverage
	GeographicTrends []TrendCoverage
	EmergingSignals  []TrendCoverage
	SingleCoverage   []TrendCoverage
}

// SignificantTrends returns triple coverage plus strongly correlated double
// coverage, in group order.
func (a *CrossSourceTrendAnalysis) SignificantTrends() []TrendCoverage {
	out := make([]TrendCoverage, 0, len(a.TripleCoverage)+len(a.DoubleCoverage))
	out = append(out, a.TripleCoverage...)
	for _, t := range a.DoubleCoverage {
		if t.TotalStrength >= strongCorrelationThreshold {
			out = append(out, t)
		}
	}
	return out
}

// Empty reports whether the analysis found no coverage at all.
func (a *CrossSourceTrendAnalysis) Empty() bool {
	return a == nil || (len(a.TripleCoverage) == 0 && len(a.DoubleCoverage) == 0 &&
		len(a.GeographicTrends) == 0 && len(a.EmergingSignals) == 0 && len(a.SingleCoverage) == 0)
}

// GeographicConfig scopes trend relevance to the user's location.
type GeographicConfig struct {
	Country         string
	State           string
	City            string
	IncludeNational bool
}

var stateAbbreviations = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY",
}

// LocationKeywords returns the keyword set used for geographic matching.
func (g GeographicConfig) LocationKeywords() []string {
	var keywords []string
	if g.Country == "United States" {
		keywords = append(keywords, "United States", "US", "USA", "America", "American")
	} else if g.Country != "" {
		keywords = append(keywords, g.Country)
	}
	if g.State != "" {
		keywords = append(keywords, g.State)
		if abbrev, ok := stateAbbreviations[g.State]; ok {
			keywords = append(keywords, abbrev)
		}
	}
	if g.City != "" {
		keywords = append(keywords, g.City)
	}
	return keywords
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}
