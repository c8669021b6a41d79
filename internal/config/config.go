package config

import (
	"fmt"
	"time"

	"golang-news-briefer/pkg/config"
)

// Ollama holds the configuration for the local Ollama provider.
type Ollama struct {
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	Temperature         float64       `mapstructure:"temperature"`
	TopP                float64       `mapstructure:"top_p"`
	ContextSize         int           `mapstructure:"context_size"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Email holds SMTP delivery configuration.
type Email struct {
	Enabled    bool     `mapstructure:"enabled"`
	SMTPHost   string   `mapstructure:"smtp_host"`
	SMTPPort   int      `mapstructure:"smtp_port"`
	Sender     string   `mapstructure:"sender"`
	Password   string   `mapstructure:"password"`
	Recipients []string `mapstructure:"recipients"`
}

// Feed describes one RSS feed to poll.
type Feed struct {
	URL      string `mapstructure:"url"`
	Category string `mapstructure:"category"`
}

// Fetcher holds RSS fetching configuration.
type Fetcher struct {
	Feeds              []Feed        `mapstructure:"feeds"`
	SourceTimeout      time.Duration `mapstructure:"source_timeout"`
	MaxConcurrent      int           `mapstructure:"max_concurrent"`
	MaxArticles        int           `mapstructure:"max_articles"`
	MaxArticleAgeHours int           `mapstructure:"max_article_age_hours"`
	FetchFullContent   bool          `mapstructure:"fetch_full_content"`
	BlacklistedDomains []string      `mapstructure:"blacklisted_domains"`
}

// Reddit holds social source configuration.
type Reddit struct {
	Enabled       bool          `mapstructure:"enabled"`
	Subreddits    []string      `mapstructure:"subreddits"`
	UserAgent     string        `mapstructure:"user_agent"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	RefreshToken  string        `mapstructure:"refresh_token"`
	PersonalFeed  bool          `mapstructure:"personal_feed"`
	MinScore      int           `mapstructure:"min_score"`
	MaxPosts      int           `mapstructure:"max_posts"`
	AllowNSFW     bool          `mapstructure:"allow_nsfw"`
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
}

// Trends holds trending-topics scraper configuration.
type Trends struct {
	Enabled       bool          `mapstructure:"enabled"`
	BaseURL       string        `mapstructure:"base_url"`
	Regions       []string      `mapstructure:"regions"`
	MaxTrends     int           `mapstructure:"max_trends"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
}

// Geography holds the user's location for trend relevance scoring.
type Geography struct {
	Country         string `mapstructure:"country"`
	State           string `mapstructure:"state"`
	City            string `mapstructure:"city"`
	IncludeNational bool   `mapstructure:"include_national"`
}

// Briefing holds briefing pipeline tuning.
type Briefing struct {
	Style         string  `mapstructure:"style"`
	TopCapacity   int     `mapstructure:"top_capacity"`
	MidCapacity   int     `mapstructure:"mid_capacity"`
	QuickCapacity int     `mapstructure:"quick_capacity"`
	MaxArticles   int     `mapstructure:"max_articles"`
	MaxPosts      int     `mapstructure:"max_posts"`
	MaxTrends     int     `mapstructure:"max_trends"`
	MemoryDays    int     `mapstructure:"memory_days"`
	Similarity    float64 `mapstructure:"similarity_threshold"`
	ExportDir     string  `mapstructure:"export_dir"`
}

// Scheduler holds cron expressions for serve mode.
type Scheduler struct {
	BriefingCron string `mapstructure:"briefing_cron"`
	FetchCron    string `mapstructure:"fetch_cron"`
	CleanupCron  string `mapstructure:"cleanup_cron"`
}

// Config holds the full configuration for the briefing service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	AI        AI              `mapstructure:"ai"`
	Ollama    Ollama          `mapstructure:"ollama"`
	Gemini    Gemini          `mapstructure:"gemini"`
	Telegram  Telegram        `mapstructure:"telegram"`
	Email     Email           `mapstructure:"email"`
	Fetcher   Fetcher         `mapstructure:"fetcher"`
	Reddit    Reddit          `mapstructure:"reddit"`
	Trends    Trends          `mapstructure:"trends"`
	Geography Geography       `mapstructure:"geography"`
	Briefing  Briefing        `mapstructure:"briefing"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the briefing service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Briefing.Style == "" {
		c.Briefing.Style = "comprehensive"
	}
	if c.Briefing.TopCapacity == 0 {
		c.Briefing.TopCapacity = 20
	}
	if c.Briefing.MidCapacity == 0 {
		c.Briefing.MidCapacity = 35
	}
	if c.Briefing.QuickCapacity == 0 {
		c.Briefing.QuickCapacity = 45
	}
	if c.Briefing.MaxArticles == 0 {
		c.Briefing.MaxArticles = 100
	}
	if c.Briefing.MaxPosts == 0 {
		c.Briefing.MaxPosts = 25
	}
	if c.Briefing.MaxTrends == 0 {
		c.Briefing.MaxTrends = 50
	}
	if c.Briefing.MemoryDays == 0 {
		c.Briefing.MemoryDays = 5
	}
	if c.Briefing.Similarity == 0 {
		c.Briefing.Similarity = 0.55
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.1:8b"
	}
	if c.Ollama.Temperature == 0 {
		c.Ollama.Temperature = 0.7
	}
	if c.Ollama.TopP == 0 {
		c.Ollama.TopP = 0.9
	}
	if c.Ollama.ContextSize == 0 {
		c.Ollama.ContextSize = 4096
	}
	if c.Ollama.Timeout == 0 {
		c.Ollama.Timeout = 120 * time.Second
	}
	if c.Fetcher.SourceTimeout == 0 {
		c.Fetcher.SourceTimeout = 30 * time.Second
	}
	if c.Fetcher.MaxConcurrent == 0 {
		c.Fetcher.MaxConcurrent = 5
	}
	if c.Reddit.SourceTimeout == 0 {
		c.Reddit.SourceTimeout = 30 * time.Second
	}
	if c.Trends.SourceTimeout == 0 {
		c.Trends.SourceTimeout = 30 * time.Second
	}
	if c.Geography.Country == "" {
		c.Geography.Country = "United States"
		c.Geography.IncludeNational = true
	}
}

// Validate checks configuration that cannot be defaulted. Failures here are
// fatal and abort the run.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "", "ollama":
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("config: gemini provider selected but api_key is missing")
		}
	default:
		return fmt.Errorf("config: unknown ai provider %q", c.AI.Provider)
	}
	if c.Email.Enabled {
		if c.Email.SMTPHost == "" || c.Email.Sender == "" {
			return fmt.Errorf("config: email enabled but smtp_host or sender is missing")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("config: email enabled but no recipients configured")
		}
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("config: telegram enabled but bot_token is missing")
	}
	if c.Reddit.PersonalFeed && (c.Reddit.ClientID == "" || c.Reddit.RefreshToken == "") {
		return fmt.Errorf("config: reddit personal feed requires client_id and refresh_token")
	}
	return nil
}
