package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/entity"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
	"golang-news-briefer/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Service polls the configured RSS feeds and persists newly-seen articles.
type Service struct {
	cfg           *config.Config
	logger        *logger.Logger
	articleRepo   repository.ArticleRepository
	feedStatsRepo repository.FeedStatsRepository
	client        *http.Client
	inmemoryCache *cache.Cache
}

// NewService creates the RSS fetching service.
func NewService(cfg *config.Config, log *logger.Logger, articleRepo repository.ArticleRepository, feedStatsRepo repository.FeedStatsRepository) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log,
		articleRepo:   articleRepo,
		feedStatsRepo: feedStatsRepo,
		client: &http.Client{
			Timeout: cfg.Fetcher.SourceTimeout,
		},
		inmemoryCache: cache.New(30*time.Minute, time.Hour),
	}
}

// FetchArticles polls every configured feed concurrently and returns the
// newly stored articles. Per-feed failures are recorded in feed stats and do
// not fail the run.
func (s *Service) FetchArticles(ctx context.Context) ([]entity.Article, error) {
	feeds := s.cfg.Fetcher.Feeds
	if len(feeds) == 0 {
		return nil, nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		fetched []entity.Article
	)

	maxConcurrent := s.cfg.Fetcher.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	semaphore := make(chan struct{}, maxConcurrent)

	for _, feed := range feeds {
		feed := feed
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			articles, err := s.fetchFeed(ctx, feed)
			if err != nil {
				s.logger.Error("Failed to fetch feed",
					logger.StringField("feed_url", feed.URL),
					logger.ErrorField(err),
				)
				return
			}
			mu.Lock()
			fetched = append(fetched, articles...)
			mu.Unlock()
		})
	}
	wg.Wait()

	stored, err := s.store(ctx, fetched)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Feed fetch complete",
		logger.IntField("feeds", len(feeds)),
		logger.IntField("fetched", len(fetched)),
		logger.IntField("stored", len(stored)),
	)
	return stored, nil
}

func (s *Service) fetchFeed(ctx context.Context, feed config.Feed) ([]entity.Article, error) {
	start := time.Now()
	fp := gofeed.NewParser()
	fp.UserAgent = fetchUserAgent

	parsed, err := fp.ParseURLWithContext(feed.URL, ctx)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.recordStats(ctx, feed.URL, false, elapsed, 0)
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(s.cfg.Fetcher.MaxArticleAgeHours) * time.Hour)
	var articles []entity.Article
	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		if s.isBlacklisted(item.Link) {
			continue
		}

		urlHash := entity.HashURL(item.Link)
		if _, seen := s.inmemoryCache.Get(urlHash); seen {
			continue
		}
		s.inmemoryCache.SetDefault(urlHash, struct{}{})

		summary := utils.SafeText(stripHTML(item.Description))
		content := utils.SafeText(stripHTML(item.Content))
		if s.cfg.Fetcher.FetchFullContent && content == "" {
			if full, err := s.extractFullContent(ctx, item.Link); err == nil {
				content = full
			} else {
				s.logger.Debug("Full content extraction failed",
					logger.StringField("url", item.Link),
					logger.ErrorField(err),
				)
			}
		}

		article := entity.Article{
			URLHash:         urlHash,
			Title:           utils.CleanToValidUTF8(item.Title),
			Summary:         summary,
			Content:         content,
			URL:             item.Link,
			Category:        feed.Category,
			Source:          sourceHost(parsed, item.Link),
			PublishedDate:   item.PublishedParsed,
			ImportanceScore: ImportanceScore(item.Title, summary),
			WordCount:       len(strings.Fields(content)),
			Language:        "en",
		}
		articles = append(articles, article)
	}

	s.recordStats(ctx, feed.URL, true, elapsed, len(articles))
	return articles, nil
}

func (s *Service) store(ctx context.Context, articles []entity.Article) ([]entity.Article, error) {
	if len(articles) == 0 {
		return nil, nil
	}
	inserted, err := s.articleRepo.BulkCreateIgnoreConflict(ctx, articles)
	if err != nil {
		return nil, fmt.Errorf("failed to store articles: %w", err)
	}
	_ = inserted
	return articles, nil
}

// extractFullContent pulls the article page and runs it through readability.
func (s *Service) extractFullContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article page, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article page: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	content := strings.TrimSpace(docHTML.Text())
	return utils.SafeText(content), nil
}

func (s *Service) recordStats(ctx context.Context, feedURL string, success bool, elapsedMs int64, count int) {
	if err := s.feedStatsRepo.RecordFetch(ctx, feedURL, success, elapsedMs, count); err != nil {
		s.logger.Warn("Failed to record feed stats",
			logger.StringField("feed_url", feedURL),
			logger.ErrorField(err),
		)
	}
}

func (s *Service) isBlacklisted(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return utils.ContainsString(s.cfg.Fetcher.BlacklistedDomains, parsed.Hostname())
}

func sourceHost(feed *gofeed.Feed, link string) string {
	if parsed, err := url.Parse(link); err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	return feed.Title
}

// stripHTML drops tags from feed-provided summary fields.
func stripHTML(s string) string {
	if s == "" || !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
