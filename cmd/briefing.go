package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang-news-briefer/internal/briefing"

	"github.com/spf13/cobra"
)

var (
	briefingStyle    string
	briefingCached   bool
	briefingNoTrends bool
	briefingSources  []string
	briefingExport   string
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Generate and deliver a news briefing",
	RunE:  runBriefing,
}

func init() {
	briefingCmd.Flags().StringVar(&briefingStyle, "style", "", "Briefing style: comprehensive, quick or analytical")
	briefingCmd.Flags().BoolVar(&briefingCached, "cached", false, "Skip fetching and use already stored content")
	briefingCmd.Flags().BoolVar(&briefingNoTrends, "no-trends", false, "Disable trend correlation for this run")
	briefingCmd.Flags().StringSliceVar(&briefingSources, "sources", nil, "Restrict to the named sources (rss, reddit, trends)")
	briefingCmd.Flags().StringVar(&briefingExport, "export", "", "Also export the briefing to a file (md or html)")
}

func runBriefing(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.briefingService(ctx, briefingExport)
	if err != nil {
		return err
	}

	style := briefingStyle
	if style == "" {
		style = a.cfg.Briefing.Style
	}

	b := svc.Generate(ctx, briefing.Options{
		Style:    briefing.Style(style),
		Cached:   briefingCached,
		NoTrends: briefingNoTrends,
		Sources:  briefingSources,
	})

	if errors.Is(ctx.Err(), context.Canceled) {
		os.Exit(exitInterrupted)
	}
	if b.Failed {
		return fmt.Errorf("briefing failed: %s", b.FailureReason)
	}
	return nil
}
