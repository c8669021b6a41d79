package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgconfig "golang-news-briefer/pkg/config"
	"golang-news-briefer/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var cleanupDays int

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance: migrations, cleanup and stats",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all available database migrations",
	RunE:  runDBMigrate,
}

var dbCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove content older than the retention window",
	RunE:  runDBCleanup,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts across the stores",
	RunE:  runDBStats,
}

func init() {
	dbCleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "Retention window in days")
	dbCmd.AddCommand(dbMigrateCmd, dbCleanupCmd, dbStatsCmd)
}

func migrateDSN(dbConfig pkgconfig.Database) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.DBName,
		dbConfig.SSLMode)
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := migrate.New("file://migrations", migrateDSN(a.cfg.Database))
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			a.logger.Warn("Migration source error on close", logger.ErrorField(srcErr))
		}
		if dbErr != nil {
			a.logger.Warn("Migration database error on close", logger.ErrorField(dbErr))
		}
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("Applied migrations successfully.")
	return nil
}

func runDBCleanup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	articles, err := a.articleRepo.Cleanup(ctx, cleanupDays)
	if err != nil {
		return fmt.Errorf("article cleanup failed: %w", err)
	}
	posts, err := a.socialRepo.Cleanup(ctx, cleanupDays)
	if err != nil {
		return fmt.Errorf("social post cleanup failed: %w", err)
	}
	stories, err := a.storyRepo.Cleanup(ctx, cleanupDays)
	if err != nil {
		return fmt.Errorf("story fingerprint cleanup failed: %w", err)
	}
	trends, err := a.trendRepo.DeactivateStale(ctx, time.Duration(cleanupDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("trend deactivation failed: %w", err)
	}

	fmt.Printf("Removed %d articles, %d social posts, %d story fingerprints; deactivated %d trends.\n",
		articles, posts, stories, trends)
	return nil
}

func runDBStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	articles, err := a.articleRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}
	posts, err := a.socialRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count social posts: %w", err)
	}
	summaries, err := a.summaryRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count summaries: %w", err)
	}
	topics, err := a.trendRepo.CountTopics(ctx)
	if err != nil {
		return fmt.Errorf("failed to count trends: %w", err)
	}
	correlations, err := a.trendRepo.CountCorrelations(ctx)
	if err != nil {
		return fmt.Errorf("failed to count correlations: %w", err)
	}
	stories, err := a.storyRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count story fingerprints: %w", err)
	}

	fmt.Printf("articles:           %d\n", articles)
	fmt.Printf("social posts:       %d\n", posts)
	fmt.Printf("summaries:          %d\n", summaries)
	fmt.Printf("trending topics:    %d\n", topics)
	fmt.Printf("correlations:       %d\n", correlations)
	fmt.Printf("story fingerprints: %d\n", stories)
	return nil
}
