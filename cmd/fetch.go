package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-news-briefer/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	fetchSources    []string
	fetchTrendsOnly bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and store new content without generating a briefing",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchSources, "sources", nil, "Restrict to the named sources (rss, reddit, trends)")
	fetchCmd.Flags().BoolVar(&fetchTrendsOnly, "trends-only", false, "Fetch trending topics only")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	wanted := func(name string) bool {
		if fetchTrendsOnly {
			return name == "trends"
		}
		if len(fetchSources) == 0 {
			return true
		}
		for _, s := range fetchSources {
			if s == name {
				return true
			}
		}
		return false
	}

	if wanted("rss") {
		if src := a.articleSource(); src != nil {
			articles, err := src.FetchArticles(ctx)
			if err != nil {
				a.logger.Warn("RSS fetch failed", logger.ErrorField(err))
			} else {
				a.logger.Info("RSS fetch complete", logger.IntField("articles", len(articles)))
			}
		}
	}
	if wanted("reddit") {
		for _, src := range a.socialSources() {
			posts, err := src.FetchPosts(ctx)
			if err != nil {
				a.logger.Warn("Reddit fetch failed", logger.ErrorField(err))
			} else {
				a.logger.Info("Reddit fetch complete", logger.IntField("posts", len(posts)))
			}
		}
	}
	if wanted("trends") {
		if src := a.trendSource(); src != nil {
			topics, err := src.FetchTrends(ctx)
			if err != nil {
				a.logger.Warn("Trends fetch failed", logger.ErrorField(err))
			} else {
				a.logger.Info("Trends fetch complete", logger.IntField("trends", len(topics)))
			}
		}
	}

	if ctx.Err() != nil {
		os.Exit(exitInterrupted)
	}
	return nil
}
