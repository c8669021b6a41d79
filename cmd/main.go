package main

import (
	"context"
	"fmt"
	"os"

	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/delivery"
	"golang-news-briefer/internal/fetcher"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/internal/social"
	"golang-news-briefer/internal/trends"
	"golang-news-briefer/pkg/logger"
	"golang-news-briefer/pkg/postgres"
	"golang-news-briefer/pkg/redis"
	"golang-news-briefer/pkg/telegram"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

const exitInterrupted = 130

var configPath string

var rootCmd = &cobra.Command{
	Use:   "briefer",
	Short: "A CLI for the personal multi-source news briefing engine",
	Long:  `Briefer collects news from RSS feeds, Reddit and trending topics, correlates and prioritises them, and generates a linked daily briefing with a local or hosted LLM.`,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	rootCmd.AddCommand(briefingCmd, fetchCmd, trendsCmd, dbCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// app bundles the shared infrastructure every command needs: config, logger,
// database, redis and the repositories on top of them.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *postgres.DB
	redis  *redis.Client

	articleRepo   repository.ArticleRepository
	socialRepo    repository.SocialPostRepository
	summaryRepo   repository.SummaryRepository
	trendRepo     repository.TrendRepository
	storyRepo     repository.StoryFingerprintRepository
	feedStatsRepo repository.FeedStatsRepository
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Redis is optional infrastructure: without it trend caching is skipped.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, caching disabled", logger.ErrorField(err))
			redisClient = nil
		}
	}

	return &app{
		cfg:           cfg,
		logger:        appLogger,
		db:            db,
		redis:         redisClient,
		articleRepo:   repository.NewArticleRepository(db.DB),
		socialRepo:    repository.NewSocialPostRepository(db.DB),
		summaryRepo:   repository.NewSummaryRepository(db.DB),
		trendRepo:     repository.NewTrendRepository(db.DB),
		storyRepo:     repository.NewStoryFingerprintRepository(db.DB),
		feedStatsRepo: repository.NewFeedStatsRepository(db.DB),
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) articleSource() briefing.ArticleSource {
	if len(a.cfg.Fetcher.Feeds) == 0 {
		return nil
	}
	return fetcher.NewService(a.cfg, a.logger, a.articleRepo, a.feedStatsRepo)
}

func (a *app) socialSources() []briefing.SocialSource {
	if !a.cfg.Reddit.Enabled {
		return nil
	}
	var sources []briefing.SocialSource
	if len(a.cfg.Reddit.Subreddits) > 0 {
		sources = append(sources, social.NewClient(a.cfg, a.logger, a.socialRepo))
	}
	if a.cfg.Reddit.PersonalFeed {
		sources = append(sources, social.NewPersonalClient(a.cfg, a.logger, a.socialRepo))
	}
	return sources
}

func (a *app) trendSource() briefing.TrendSource {
	if !a.cfg.Trends.Enabled {
		return nil
	}
	return trends.NewScraper(a.cfg, a.logger, a.trendRepo, a.redis)
}

func (a *app) aiRepository(ctx context.Context) (repository.AIRepository, error) {
	switch a.cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: a.cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		return repository.NewGeminiAIRepository(a.cfg, a.logger, genAiClient)
	default:
		return repository.NewOllamaAIRepository(a.cfg, a.logger), nil
	}
}

func (a *app) deliverers(export string) []briefing.Deliverer {
	out := []briefing.Deliverer{delivery.NewTerminalDeliverer(nil)}

	if a.cfg.Email.Enabled {
		out = append(out, delivery.NewEmailDeliverer(&a.cfg.Email, a.logger))
	}
	if a.cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
		if err != nil {
			a.logger.Warn("Telegram notifier unavailable", logger.ErrorField(err))
		} else {
			out = append(out, delivery.NewTelegramDeliverer(notifier))
		}
	}
	if export != "" {
		dir := a.cfg.Briefing.ExportDir
		if dir == "" {
			dir = "briefings"
		}
		out = append(out, delivery.NewFileExporter(dir, export, a.logger))
	}
	return out
}

// briefingService wires the full orchestrator on top of the app container.
func (a *app) briefingService(ctx context.Context, export string) (*briefing.Service, error) {
	aiRepo, err := a.aiRepository(ctx)
	if err != nil {
		return nil, err
	}

	dedup := briefing.NewDeduplicator(a.storyRepo, a.logger)
	engine := briefing.NewCorrelationEngine(briefing.GeographicConfig{
		Country:         a.cfg.Geography.Country,
		State:           a.cfg.Geography.State,
		City:            a.cfg.Geography.City,
		IncludeNational: a.cfg.Geography.IncludeNational,
	}, a.trendRepo, a.logger)

	return briefing.NewService(
		a.cfg,
		a.logger,
		a.articleRepo,
		a.socialRepo,
		a.summaryRepo,
		a.articleSource(),
		a.socialSources(),
		a.trendSource(),
		dedup,
		engine,
		aiRepo,
		a.deliverers(export),
	), nil
}
