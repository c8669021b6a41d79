package social

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
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

	"golang.org/x/time/rate"
)

const (
	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
	tokenURL      = "https://www.reddit.com/api/v1/access_token"
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Over18      bool    `json:"over_18"`
	Stickied    bool    `json:"stickied"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client fetches posts from public subreddits and, with OAuth credentials,
// the personal home feed.
type Client struct {
	cfg        *config.Config
	logger     *logger.Logger
	socialRepo repository.SocialPostRepository
	httpClient *http.Client
	limiter    *rate.Limiter

	personal bool

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a public-subreddit Reddit source.
func NewClient(cfg *config.Config, log *logger.Logger, socialRepo repository.SocialPostRepository) *Client {
	return newClient(cfg, log, socialRepo, false)
}

// NewPersonalClient creates a home-feed source using the configured OAuth
// refresh token.
func NewPersonalClient(cfg *config.Config, log *logger.Logger, socialRepo repository.SocialPostRepository) *Client {
	return newClient(cfg, log, socialRepo, true)
}

func newClient(cfg *config.Config, log *logger.Logger, socialRepo repository.SocialPostRepository, personal bool) *Client {
	timeout := cfg.Reddit.SourceTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		logger:     log,
		socialRepo: socialRepo,
		httpClient: &http.Client{Timeout: timeout},
		// Reddit allows 60 requests per minute for script apps.
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		personal: personal,
	}
}

// FetchPosts pulls recent posts, filters them, and persists new ones.
func (c *Client) FetchPosts(ctx context.Context) ([]entity.SocialPost, error) {
	var (
		posts []entity.SocialPost
		err   error
	)
	if c.personal {
		posts, err = c.fetchPersonalFeed(ctx)
	} else {
		posts, err = c.fetchSubreddits(ctx)
	}
	if err != nil {
		return nil, err
	}

	posts = c.filter(posts)
	if len(posts) == 0 {
		return nil, nil
	}

	inserted, err := c.socialRepo.BulkCreateIgnoreConflict(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("failed to store social posts: %w", err)
	}
	c.logger.Info("Reddit fetch complete",
		logger.BoolField("personal", c.personal),
		logger.IntField("fetched", len(posts)),
		logger.IntField("stored", int(inserted)),
	)
	return posts, nil
}

func (c *Client) fetchSubreddits(ctx context.Context) ([]entity.SocialPost, error) {
	var all []entity.SocialPost
	for _, sub := range c.cfg.Reddit.Subreddits {
		if !utils.ShouldContinue(ctx, c.logger) {
			break
		}
		listing, err := c.getListing(ctx, fmt.Sprintf("%s/r/%s/hot.json?limit=%d", publicBaseURL, sub, c.cfg.Reddit.MaxPosts), "")
		if err != nil {
			c.logger.Warn("Failed to fetch subreddit",
				logger.StringField("subreddit", sub),
				logger.ErrorField(err),
			)
			continue
		}
		all = append(all, c.convert(listing, entity.PlatformReddit)...)
	}
	return all, nil
}

func (c *Client) fetchPersonalFeed(ctx context.Context) ([]entity.SocialPost, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain reddit token: %w", err)
	}
	listing, err := c.getListing(ctx, fmt.Sprintf("%s/.json?limit=%d", oauthBaseURL, c.cfg.Reddit.MaxPosts), token)
	if err != nil {
		return nil, err
	}
	return c.convert(listing, entity.PlatformRedditPersonal), nil
}

func (c *Client) getListing(ctx context.Context, endpoint, bearer string) (*redditListing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reddit listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response from reddit: %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode reddit listing: %w", err)
	}
	return &listing, nil
}

// token fetches or reuses a short-lived OAuth access token.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.cfg.Reddit.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Reddit.ClientID, c.cfg.Reddit.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK response from token endpoint: %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) convert(listing *redditListing, platform string) []entity.SocialPost {
	var posts []entity.SocialPost
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.Stickied || p.Title == "" {
			continue
		}

		created := time.Unix(int64(p.CreatedUTC), 0).UTC()
		post := entity.SocialPost{
			PostID:        platform + ":" + p.ID,
			Platform:      platform,
			Title:         utils.CleanToValidUTF8(p.Title),
			Content:       utils.SafeText(p.Selftext),
			URL:           publicBaseURL + p.Permalink,
			SourceURL:     p.URL,
			Community:     p.Subreddit,
			Author:        p.Author,
			Score:         p.Score,
			CommentsCount: p.NumComments,
			CreatedUTC:    &created,
			IsNSFW:        p.Over18,
		}
		post.InterestScore = InterestScore(&post, time.Now())
		posts = append(posts, post)
	}
	return posts
}

func (c *Client) filter(posts []entity.SocialPost) []entity.SocialPost {
	out := posts[:0]
	for _, p := range posts {
		if p.IsNSFW && !c.cfg.Reddit.AllowNSFW {
			continue
		}
		if p.Score < c.cfg.Reddit.MinScore {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Client) userAgent() string {
	if c.cfg.Reddit.UserAgent != "" {
		return c.cfg.Reddit.UserAgent
	}
	return "golang-news-briefer/1.0"
}

// InterestScore rates a post by engagement and recency.
func InterestScore(p *entity.SocialPost, now time.Time) float64 {
	score := math.Min(5.0, math.Log10(math.Max(1, float64(p.Score)))*2)

	if p.CommentsCount > 10 {
		score += math.Min(2.0, math.Log10(float64(p.CommentsCount)))
	}

	if p.CreatedUTC != nil {
		hoursOld := now.Sub(*p.CreatedUTC).Hours()
		if hoursOld < 6 {
			score += 1.0
		} else if hoursOld > 48 {
			score -= 1.0
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}
