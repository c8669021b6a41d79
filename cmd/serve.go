package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-news-briefer/internal/api"
	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/internal/scheduler"
	"golang-news-briefer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled briefings with a read-only HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("Starting briefing service", logger.StringField("name", a.cfg.App.Name))

	svc, err := a.briefingService(ctx, "")
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(
		a.cfg,
		a.logger,
		svc,
		briefing.NewDeduplicator(a.storyRepo, a.logger),
		a.articleRepo,
		a.socialRepo,
		a.trendRepo,
		a.articleSource(),
		a.socialSources(),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true

	handler := api.NewHandler(a.articleRepo, a.socialRepo, a.summaryRepo, a.trendRepo, a.storyRepo, a.logger)
	handler.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.API.Port)
		a.logger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	a.logger.Info("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("Server exiting")
	return nil
}
