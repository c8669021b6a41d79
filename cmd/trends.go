package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang-news-briefer/internal/briefing"

	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Inspect and test the trending-topics pipeline",
}

var trendsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show currently active trending topics",
	RunE:  runTrendsStatus,
}

var trendsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Scrape trending topics and store them",
	RunE:  runTrendsFetch,
}

var trendsAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Correlate active trends against stored content",
	RunE:  runTrendsAnalyze,
}

var trendsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a cross-source coverage report for active trends",
	RunE:  runTrendsReport,
}

func init() {
	trendsCmd.AddCommand(trendsStatusCmd, trendsFetchCmd, trendsAnalyzeCmd, trendsReportCmd)
}

func trendsContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTrendsStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := trendsContext()
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	topics, err := a.trendRepo.ListActiveTopics(ctx, a.cfg.Briefing.MaxTrends)
	if err != nil {
		return fmt.Errorf("failed to list active trends: %w", err)
	}

	fmt.Printf("%d active trending topics\n\n", len(topics))
	for _, t := range topics {
		fmt.Printf("%3d. %-30s %-14s velocity=%.2f momentum=%-8s reach=%d\n",
			t.Rank, t.Keyword, t.Category, t.Velocity, t.Momentum, t.Reach)
	}
	return nil
}

func runTrendsFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := trendsContext()
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	src := a.trendSource()
	if src == nil {
		return fmt.Errorf("trends source is disabled in configuration")
	}

	topics, err := src.FetchTrends(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch trends: %w", err)
	}
	fmt.Printf("Fetched %d trending topics\n", len(topics))
	return nil
}

func runTrendsAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := trendsContext()
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.analyzeTrends(ctx)
	if err != nil {
		return err
	}
	if analysis.Empty() {
		fmt.Println("No correlations found.")
		return nil
	}

	fmt.Printf("Triple coverage:    %d\n", len(analysis.TripleCoverage))
	fmt.Printf("Double coverage:    %d\n", len(analysis.DoubleCoverage))
	fmt.Printf("Geographic trends:  %d\n", len(analysis.GeographicTrends))
	fmt.Printf("Emerging signals:   %d\n", len(analysis.EmergingSignals))
	fmt.Printf("Single coverage:    %d\n", len(analysis.SingleCoverage))
	return nil
}

func runTrendsReport(cmd *cobra.Command, args []string) error {
	ctx, stop := trendsContext()
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.analyzeTrends(ctx)
	if err != nil {
		return err
	}

	significant := analysis.SignificantTrends()
	if len(significant) == 0 {
		fmt.Println("No significant cross-source trends.")
		return nil
	}

	fmt.Printf("%d significant cross-source trends\n\n", len(significant))
	for _, cov := range significant {
		fmt.Printf("• %s [%s] strength=%.2f sources=%v\n",
			cov.Trend.Keyword, cov.Trend.Category, cov.TotalStrength, cov.Sources)
		if headline := cov.BestHeadline(); headline != "" {
			fmt.Printf("  best headline: %s\n", headline)
		}
	}
	return nil
}

// analyzeTrends runs the correlation engine over active trends and recent
// stored content without persisting new correlations.
func (a *app) analyzeTrends(ctx context.Context) (*briefing.CrossSourceTrendAnalysis, error) {
	topics, err := a.trendRepo.ListActiveTopics(ctx, a.cfg.Briefing.MaxTrends)
	if err != nil {
		return nil, fmt.Errorf("failed to list active trends: %w", err)
	}

	articles, err := a.articleRepo.GetRecent(ctx, a.cfg.Fetcher.MaxArticleAgeHours, a.cfg.Briefing.MaxArticles, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent articles: %w", err)
	}
	posts, err := a.socialRepo.GetRecent(ctx, a.cfg.Fetcher.MaxArticleAgeHours, a.cfg.Briefing.MaxPosts, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent social posts: %w", err)
	}

	engine := briefing.NewCorrelationEngine(briefing.GeographicConfig{
		Country:         a.cfg.Geography.Country,
		State:           a.cfg.Geography.State,
		City:            a.cfg.Geography.City,
		IncludeNational: a.cfg.Geography.IncludeNational,
	}, nil, a.logger)

	return engine.Correlate(ctx, topics, articles, posts), nil
}
