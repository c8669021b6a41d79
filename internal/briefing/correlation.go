package briefing

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"golang-news-briefer/internal/entity"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
)

const (
	minCorrelationThreshold    = 0.4
	strongCorrelationThreshold = 0.7
	trendsSourceName           = "trends24"
)

// Weighted correlation methods. Weights sum to 1.0.
var methodWeights = []struct {
	name   string
	weight float64
}{
	{entity.MatchExact, 0.30},
	{entity.MatchSemantic, 0.25},
	{entity.MatchEntity, 0.20},
	{entity.MatchContext, 0.15},
	{entity.MatchPhrase, 0.10},
}

var categoryRelations = map[string][]string{
	"tech":          {"technology", "cutting_edge", "artificial", "ai"},
	"politics":      {"world_news", "government", "election"},
	"business":      {"finance", "economy", "market"},
	"entertainment": {"sports", "celebrity", "media"},
	"health":        {"medical", "science", "wellness"},
}

var emergingCategories = map[string]struct{}{
	"politics": {}, "security": {}, "economy": {}, "health": {},
}

// CorrelationEngine scores trending topics against fetched content and groups
// trends by cross-source coverage.
type CorrelationEngine struct {
	geo    GeographicConfig
	repo   repository.TrendRepository
	logger *logger.Logger
}

// NewCorrelationEngine creates an engine. repo may be nil, in which case
// nothing is persisted.
func NewCorrelationEngine(geo GeographicConfig, repo repository.TrendRepository, log *logger.Logger) *CorrelationEngine {
	return &CorrelationEngine{geo: geo, repo: repo, logger: log}
}

// Correlate analyses all (trend, content) pairs and returns a well-formed
// analysis object, possibly with every group empty. It never fails; store
// errors drop the persistence writes only.
func (e *CorrelationEngine) Correlate(ctx context.Context, trends []entity.TrendingTopic, articles []entity.Article, posts []entity.SocialPost) *CrossSourceTrendAnalysis {
	e.logger.Info("Analyzing trend correlations",
		logger.IntField("trends", len(trends)),
		logger.IntField("articles", len(articles)),
		logger.IntField("posts", len(posts)),
	)

	coverages := make([]TrendCoverage, 0, len(trends))
	for i := range trends {
		coverages = append(coverages, e.analyzeTrend(&trends[i], articles, posts))
	}

	if e.repo != nil {
		if err := e.persist(ctx, coverages); err != nil {
			e.logger.Warn("Dropping correlation writes", logger.ErrorField(err))
		}
	}

	return categorizeBySourceCoverage(coverages)
}

func (e *CorrelationEngine) analyzeTrend(trend *entity.TrendingTopic, articles []entity.Article, posts []entity.SocialPost) TrendCoverage {
	cov := TrendCoverage{
		Trend:               *trend,
		Sources:             []string{trendsSourceName},
		GeographicRelevance: e.GeographicRelevance(trend),
	}

	for i := range articles {
		item := NewArticleItem(&articles[i])
		score, matchTypes := e.scorePair(trend, item)
		if score >= minCorrelationThreshold {
			cov.RSSMatches = append(cov.RSSMatches, TrendMatch{
				Item:       item,
				Score:      score,
				Strong:     score >= strongCorrelationThreshold,
				MatchTypes: matchTypes,
			})
			cov.TotalStrength += score
		}
	}
	for i := range posts {
		item := NewSocialItem(&posts[i])
		score, matchTypes := e.scorePair(trend, item)
		if score >= minCorrelationThreshold {
			cov.SocialMatches = append(cov.SocialMatches, TrendMatch{
				Item:       item,
				Score:      score,
				Strong:     score >= strongCorrelationThreshold,
				MatchTypes: matchTypes,
			})
			cov.TotalStrength += score
		}
	}

	if len(cov.RSSMatches) > 0 {
		cov.Sources = append(cov.Sources, entity.ContentSourceRSS)
	}
	if len(cov.SocialMatches) > 0 {
		cov.Sources = append(cov.Sources, entity.ContentSourceReddit)
	}

	switch {
	case len(cov.Sources) >= 3:
		cov.CrossSourceBoost = 2.0
	case len(cov.Sources) == 2:
		cov.CrossSourceBoost = 1.0
	}
	cov.TotalStrength += cov.CrossSourceBoost

	return cov
}

// scorePair combines the five weighted methods plus geographic boost. A panic
// in any scoring path yields a zero score so one malformed pair cannot take
// down the run.
func (e *CorrelationEngine) scorePair(trend *entity.TrendingTopic, item ContentItem) (score float64, matchTypes []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Recovered pair scoring panic",
				logger.StringField("trend", trend.Keyword),
				logger.Field("panic", r),
			)
			score = 0
			matchTypes = nil
		}
	}()

	text := item.Text()
	lowered := strings.ToLower(text)

	subScores := []float64{
		exactKeywordMatch(trend, lowered),
		semanticSimilarityMatch(trend, lowered),
		entityExtractionMatch(trend, text),
		contextualTopicMatch(trend, item.Category()),
		phraseSimilarityMatch(trend, lowered),
	}

	for i, m := range methodWeights {
		score += subScores[i] * m.weight
		if subScores[i] > 0 {
			matchTypes = append(matchTypes, m.name)
		}
	}

	if e.hasGeographicMention(lowered) {
		score *= 1.2
		matchTypes = append(matchTypes, entity.MatchGeographic)
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, matchTypes
}

func trendTerms(trend *entity.TrendingTopic) []string {
	terms := []string{strings.ToLower(trend.Keyword)}
	for _, alias := range trend.Aliases {
		terms = append(terms, strings.ToLower(alias))
	}
	return terms
}

func exactKeywordMatch(trend *entity.TrendingTopic, loweredText string) float64 {
	terms := trendTerms(trend)
	matches := 0.0
	for _, term := range terms {
		if strings.Contains(loweredText, term) {
			matches += 1.0
		} else if !strings.Contains(term, " ") && containsWord(loweredText, term) {
			matches += 0.8
		}
	}
	score := matches / float64(len(terms))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func semanticSimilarityMatch(trend *entity.TrendingTopic, loweredText string) float64 {
	trendWords := meaningfulWords(trend.Keyword)
	for _, alias := range trend.Aliases {
		for w := range meaningfulWords(alias) {
			trendWords[w] = struct{}{}
		}
	}
	contentWords := meaningfulWords(loweredText)
	if len(trendWords) == 0 || len(contentWords) == 0 {
		return 0
	}

	overlap := 0
	for w := range trendWords {
		if _, ok := contentWords[w]; ok {
			overlap++
		}
	}
	score := jaccard(trendWords, contentWords)
	if overlap >= 2 {
		score *= 1.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func entityExtractionMatch(trend *entity.TrendingTopic, text string) float64 {
	trendEntities := properNouns(trend.Keyword + " " + strings.Join(trend.Aliases, " "))
	if len(trendEntities) == 0 {
		return 0
	}
	contentEntities := properNouns(text)

	matches := 0.0
	for _, te := range trendEntities {
		tl := strings.ToLower(te)
		for _, ce := range contentEntities {
			cl := strings.ToLower(ce)
			if tl == cl {
				matches += 1.0
			} else if strings.Contains(cl, tl) || strings.Contains(tl, cl) {
				matches += 0.5
			}
		}
	}
	score := matches / float64(len(trendEntities))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func contextualTopicMatch(trend *entity.TrendingTopic, contentCategory string) float64 {
	trendCategory := strings.ToLower(trend.Category)
	contentCategory = strings.ToLower(contentCategory)
	if contentCategory == "" || trendCategory == "" {
		return 0
	}
	if contentCategory == trendCategory {
		return 0.8
	}
	for category, related := range categoryRelations {
		if trendCategory == category && containsString(related, contentCategory) {
			return 0.6
		}
		if contentCategory == category && containsString(related, trendCategory) {
			return 0.6
		}
	}
	return 0
}

func phraseSimilarityMatch(trend *entity.TrendingTopic, loweredText string) float64 {
	best := 0.0
	for _, phrase := range trendTerms(trend) {
		words := strings.Fields(phrase)
		if len(words) > 1 {
			matched := 0
			for _, w := range words {
				if strings.Contains(loweredText, w) {
					matched++
				}
			}
			partial := float64(matched) / float64(len(words)) * 0.8
			if partial > best {
				best = partial
			}
		} else if len(words) == 1 && fuzzyWordMatch(words[0], loweredText) {
			if best < 0.6 {
				best = 0.6
			}
		}
	}
	return best
}

// fuzzyWordMatch checks the word and its simple morphological variants.
func fuzzyWordMatch(word, loweredText string) bool {
	variants := []string{word, word + "s", word + "ing", word + "ed"}
	for _, suffix := range []string{"s", "ing", "ed"} {
		if strings.HasSuffix(word, suffix) {
			variants = append(variants, strings.TrimSuffix(word, suffix))
		}
	}
	for _, v := range variants {
		if v != "" && containsWord(loweredText, v) {
			return true
		}
	}
	return false
}

func (e *CorrelationEngine) hasGeographicMention(loweredText string) bool {
	for _, kw := range e.geo.LocationKeywords() {
		if strings.Contains(loweredText, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// GeographicRelevance scores how relevant a trend is to the configured
// location. +0.3 per location keyword, +0.4 for country slug on civic
// categories, capped at 1.0.
func (e *CorrelationEngine) GeographicRelevance(trend *entity.TrendingTopic) float64 {
	trendText := strings.ToLower(trend.Keyword + " " + strings.Join(trend.Aliases, " ") + " " + trend.Region)

	relevance := 0.0
	for _, kw := range e.geo.LocationKeywords() {
		if strings.Contains(trendText, strings.ToLower(kw)) {
			relevance += 0.3
		}
	}

	category := strings.ToLower(trend.Category)
	if (category == "politics" || category == "economy" || category == "government") &&
		strings.Contains(trendText, "us") {
		relevance += 0.4
	}

	if relevance > 1.0 {
		relevance = 1.0
	}
	return relevance
}

func categorizeBySourceCoverage(coverages []TrendCoverage) *CrossSourceTrendAnalysis {
	analysis := &CrossSourceTrendAnalysis{}

	for _, cov := range coverages {
		sourceCount := len(cov.Sources)
		hasContentCorrelation := len(cov.RSSMatches) > 0 || len(cov.SocialMatches) > 0

		switch {
		case sourceCount >= 3:
			analysis.TripleCoverage = append(analysis.TripleCoverage, cov)
		case sourceCount == 2 && hasContentCorrelation:
			analysis.DoubleCoverage = append(analysis.DoubleCoverage, cov)
		case cov.GeographicRelevance > 0.7:
			analysis.GeographicTrends = append(analysis.GeographicTrends, cov)
		case isEmergingSignal(cov):
			analysis.EmergingSignals = append(analysis.EmergingSignals, cov)
		default:
			analysis.SingleCoverage = append(analysis.SingleCoverage, cov)
		}
	}

	for _, group := range [][]TrendCoverage{
		analysis.TripleCoverage, analysis.DoubleCoverage,
		analysis.GeographicTrends, analysis.EmergingSignals, analysis.SingleCoverage,
	} {
		sortCoverage(group)
	}
	return analysis
}

func isEmergingSignal(cov TrendCoverage) bool {
	if cov.Trend.Velocity > 0.7 {
		return true
	}
	_, ok := emergingCategories[strings.ToLower(cov.Trend.Category)]
	return ok
}

// sortCoverage orders by strength descending with lexicographic keyword
// tie-breaks so results are reproducible.
func sortCoverage(group []TrendCoverage) {
	sort.Slice(group, func(i, j int) bool {
		if group[i].TotalStrength != group[j].TotalStrength {
			return group[i].TotalStrength > group[j].TotalStrength
		}
		return group[i].Trend.Keyword < group[j].Trend.Keyword
	})
}

func (e *CorrelationEngine) persist(ctx context.Context, coverages []TrendCoverage) error {
	now := time.Now()
	for _, cov := range coverages {
		topic := cov.Trend
		topic.CorrelationScore = cov.TotalStrength
		topic.GeographicRelevance = cov.GeographicRelevance
		topic.Reach = len(cov.Sources)
		topic.LastUpdated = &now
		if err := e.repo.UpsertTopic(ctx, &topic); err != nil {
			return err
		}

		crossSource := len(cov.Sources) >= 3
		var rows []entity.TrendCorrelation
		appendRows := func(matches []TrendMatch, source string) {
			for _, m := range matches {
				types, _ := json.Marshal(m.MatchTypes)
				contentID := m.Item.URL()
				if m.Item.Kind == KindSocial {
					contentID = m.Item.Post.PostID
				}
				rows = append(rows, entity.TrendCorrelation{
					TrendKeyword:        cov.Trend.Keyword,
					ContentID:           contentID,
					ContentSource:       source,
					CorrelationStrength: m.Score,
					MatchTypes:          types,
					DetectedAt:          now,
					IsCrossSource:       crossSource,
				})
			}
		}
		appendRows(cov.RSSMatches, entity.ContentSourceRSS)
		appendRows(cov.SocialMatches, entity.ContentSourceReddit)
		if err := e.repo.SaveCorrelations(ctx, rows); err != nil {
			return err
		}

		for _, source := range cov.Sources {
			mentions := 0
			strength := 0.0
			switch source {
			case entity.ContentSourceRSS:
				mentions = len(cov.RSSMatches)
				for _, m := range cov.RSSMatches {
					strength += m.Score
				}
			case entity.ContentSourceReddit:
				mentions = len(cov.SocialMatches)
				for _, m := range cov.SocialMatches {
					strength += m.Score
				}
			default:
				mentions = 1
				strength = cov.Trend.Velocity
			}
			row := &entity.TrendSourceCoverage{
				TrendKeyword:  cov.Trend.Keyword,
				SourceName:    source,
				MentionCount:  mentions,
				TotalStrength: strength,
				FirstMention:  now,
				LastMention:   now,
			}
			if err := e.repo.UpsertSourceCoverage(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
