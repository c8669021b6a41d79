package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/entity"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
	"golang-news-briefer/pkg/redis"

	"github.com/PuerkitoBio/goquery"
)

const trendsCacheKey = "trends:topics"

var trendCategoryKeywords = map[string][]string{
	"politics": {
		"congress", "senate", "election", "vote", "politics", "republican",
		"democrat", "president", "white house", "government", "policy",
		"legislation", "campaign", "poll",
	},
	"tech": {
		"ai", "artificial intelligence", "tech", "apple", "google", "microsoft",
		"meta", "tesla", "iphone", "android", "crypto", "bitcoin", "blockchain",
		"startup", "software", "hardware", "app", "platform",
	},
	"entertainment": {
		"movie", "film", "netflix", "disney", "hollywood", "celebrity", "music",
		"album", "concert", "awards", "oscar", "grammy", "streaming", "series",
	},
	"sports": {
		"nfl", "nba", "mlb", "nhl", "soccer", "football", "basketball",
		"baseball", "hockey", "playoff", "championship", "olympics",
		"world cup", "super bowl", "finals", "draft",
	},
	"business": {
		"stock", "market", "business", "economy", "earnings", "ceo", "finance",
		"investment", "merger", "acquisition", "ipo", "revenue", "layoffs",
	},
	"health": {
		"health", "medical", "hospital", "disease", "vaccine", "covid",
		"pandemic", "virus", "treatment", "medicine", "fda", "clinical",
	},
	"science": {
		"science", "research", "discovery", "breakthrough", "nasa", "space",
		"climate", "environment", "energy", "physics",
	},
}

var hashtagRe = regexp.MustCompile(`^#+`)

// Scraper pulls trending keywords from Trends24 region pages. Results are
// cached in redis so repeated runs within the TTL reuse the last scrape.
type Scraper struct {
	cfg       *config.Config
	logger    *logger.Logger
	trendRepo repository.TrendRepository
	cache     *redis.Client
	client    *http.Client
}

// NewScraper creates the Trends24 scraper. cache may be nil to disable
// caching.
func NewScraper(cfg *config.Config, log *logger.Logger, trendRepo repository.TrendRepository, cache *redis.Client) *Scraper {
	timeout := cfg.Trends.SourceTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		cfg:       cfg,
		logger:    log,
		trendRepo: trendRepo,
		cache:     cache,
		client:    &http.Client{Timeout: timeout},
	}
}

// FetchTrends returns current trending topics for the configured regions,
// serving from cache when fresh.
func (s *Scraper) FetchTrends(ctx context.Context) ([]entity.TrendingTopic, error) {
	if cached, ok := s.fromCache(ctx); ok {
		s.logger.Debug("Serving trends from cache", logger.IntField("count", len(cached)))
		return cached, nil
	}

	var all []entity.TrendingTopic
	for _, region := range s.cfg.Trends.Regions {
		topics, err := s.scrapeRegion(ctx, region)
		if err != nil {
			s.logger.Warn("Failed to scrape trends region",
				logger.StringField("region", region),
				logger.ErrorField(err),
			)
			continue
		}
		all = append(all, topics...)
	}

	all = mergeAliases(all)
	if len(all) > s.cfg.Trends.MaxTrends {
		all = all[:s.cfg.Trends.MaxTrends]
	}

	s.toCache(ctx, all)
	s.persist(ctx, all)

	s.logger.Info("Trends fetch complete", logger.IntField("trends", len(all)))
	return all, nil
}

func (s *Scraper) scrapeRegion(ctx context.Context, region string) ([]entity.TrendingTopic, error) {
	endpoint := fmt.Sprintf("%s/%s/", strings.TrimRight(s.cfg.Trends.BaseURL, "/"), region)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response from trends page: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trends page: %w", err)
	}

	now := time.Now()
	seen := make(map[string]struct{})
	var topics []entity.TrendingTopic

	doc.Find(".trend-card ol li a, ol.trend-list li a").Each(func(i int, sel *goquery.Selection) {
		keyword := normalizeKeyword(sel.Text())
		if keyword == "" || len(keyword) < 2 {
			return
		}
		key := strings.ToLower(keyword)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		rank := len(topics) + 1
		velocity := 1.0 - float64(rank-1)*0.05
		if velocity < 0.3 {
			velocity = 0.3
		}

		topics = append(topics, entity.TrendingTopic{
			Keyword:       keyword,
			Category:      categorizeTrend(keyword),
			Source:        "trends24",
			Region:        region,
			Velocity:      velocity,
			Rank:          rank,
			Momentum:      momentumFor(velocity),
			FirstDetected: &now,
			LastUpdated:   &now,
			IsActive:      true,
		})
	})

	return topics, nil
}

// mergeAliases folds near-duplicate keywords across regions into aliases of
// the higher-ranked topic.
func mergeAliases(topics []entity.TrendingTopic) []entity.TrendingTopic {
	var merged []entity.TrendingTopic
	for _, t := range topics {
		found := false
		for i := range merged {
			if sameTrend(merged[i].Keyword, t.Keyword) {
				found = true
				if t.Keyword != merged[i].Keyword && !containsFold(merged[i].Aliases, t.Keyword) {
					merged[i].Aliases = append(merged[i].Aliases, t.Keyword)
				}
				if t.Velocity > merged[i].Velocity {
					merged[i].Velocity = t.Velocity
				}
				break
			}
		}
		if !found {
			merged = append(merged, t)
		}
	}
	return merged
}

func sameTrend(a, b string) bool {
	na := strings.ToLower(hashtagRe.ReplaceAllString(a, ""))
	nb := strings.ToLower(hashtagRe.ReplaceAllString(b, ""))
	return na == nb
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func normalizeKeyword(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text
}

func categorizeTrend(keyword string) string {
	lowered := strings.ToLower(keyword)
	for category, keywords := range trendCategoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return category
			}
		}
	}
	return "general"
}

func momentumFor(velocity float64) string {
	switch {
	case velocity > 0.8:
		return "rising"
	case velocity > 0.5:
		return "steady"
	default:
		return "emerging"
	}
}

func (s *Scraper) fromCache(ctx context.Context) ([]entity.TrendingTopic, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, trendsCacheKey).Result()
	if err != nil {
		return nil, false
	}
	var topics []entity.TrendingTopic
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, false
	}
	return topics, len(topics) > 0
}

func (s *Scraper) toCache(ctx context.Context, topics []entity.TrendingTopic) {
	if s.cache == nil || len(topics) == 0 {
		return
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, trendsCacheKey, raw, s.cfg.Trends.CacheTTL).Err(); err != nil {
		s.logger.Debug("Failed to cache trends", logger.ErrorField(err))
	}
}

func (s *Scraper) persist(ctx context.Context, topics []entity.TrendingTopic) {
	if s.trendRepo == nil {
		return
	}
	for i := range topics {
		if err := s.trendRepo.UpsertTopic(ctx, &topics[i]); err != nil {
			s.logger.Warn("Failed to persist trending topic",
				logger.StringField("keyword", topics[i].Keyword),
				logger.ErrorField(err),
			)
		}
	}
}
