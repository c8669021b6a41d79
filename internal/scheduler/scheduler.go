package scheduler

import (
	"context"
	"time"

	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
	"golang-news-briefer/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the recurring jobs in serve mode: briefing generation,
// content refresh and nightly cleanup. Cron expressions come from config and
// fall back to sensible defaults when unset.
type Scheduler struct {
	cfg     *config.Config
	logger  *logger.Logger
	service *briefing.Service
	dedup   *briefing.Deduplicator

	articleRepo repository.ArticleRepository
	socialRepo  repository.SocialPostRepository
	trendRepo   repository.TrendRepository

	articleSource briefing.ArticleSource
	socialSources []briefing.SocialSource

	cron *cron.Cron
}

// NewScheduler creates the serve-mode scheduler.
func NewScheduler(
	cfg *config.Config,
	log *logger.Logger,
	service *briefing.Service,
	dedup *briefing.Deduplicator,
	articleRepo repository.ArticleRepository,
	socialRepo repository.SocialPostRepository,
	trendRepo repository.TrendRepository,
	articleSource briefing.ArticleSource,
	socialSources []briefing.SocialSource,
) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		logger:        log,
		service:       service,
		dedup:         dedup,
		articleRepo:   articleRepo,
		socialRepo:    socialRepo,
		trendRepo:     trendRepo,
		articleSource: articleSource,
		socialSources: socialSources,
		cron:          cron.New(),
	}
}

// Start registers the cron jobs and begins the scheduler. It returns an error
// only when a cron expression fails to parse.
func (s *Scheduler) Start(ctx context.Context) error {
	briefingCron := s.cfg.Scheduler.BriefingCron
	if briefingCron == "" {
		briefingCron = "0 7 * * *"
	}
	fetchCron := s.cfg.Scheduler.FetchCron
	if fetchCron == "" {
		fetchCron = "*/30 * * * *"
	}
	cleanupCron := s.cfg.Scheduler.CleanupCron
	if cleanupCron == "" {
		cleanupCron = "0 3 * * *"
	}

	if _, err := s.cron.AddFunc(briefingCron, func() {
		utils.GoSafe(func() { s.runBriefing(ctx) })
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(fetchCron, func() {
		utils.GoSafe(func() { s.runFetch(ctx) })
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cleanupCron, func() {
		utils.GoSafe(func() { s.runCleanup(ctx) })
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		logger.StringField("briefing_cron", briefingCron),
		logger.StringField("fetch_cron", fetchCron),
		logger.StringField("cleanup_cron", cleanupCron),
	)
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runBriefing(ctx context.Context) {
	if !utils.ShouldContinue(ctx, s.logger) {
		return
	}
	s.logger.Info("Scheduled briefing run starting")
	b := s.service.Generate(ctx, briefing.Options{
		Style:  briefing.Style(s.cfg.Briefing.Style),
		Cached: true, // the fetch job keeps content fresh
	})
	if b.Failed {
		s.logger.Warn("Scheduled briefing run failed",
			logger.StringField("reason", b.FailureReason))
		return
	}
	s.logger.Info("Scheduled briefing run finished",
		logger.DurationField("elapsed", b.Elapsed))
}

func (s *Scheduler) runFetch(ctx context.Context) {
	if !utils.ShouldContinue(ctx, s.logger) {
		return
	}
	if s.articleSource != nil {
		if _, err := s.articleSource.FetchArticles(ctx); err != nil {
			s.logger.Warn("Scheduled article fetch failed", logger.ErrorField(err))
		}
	}
	for _, src := range s.socialSources {
		if _, err := src.FetchPosts(ctx); err != nil {
			s.logger.Warn("Scheduled social fetch failed", logger.ErrorField(err))
		}
	}
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if !utils.ShouldContinue(ctx, s.logger) {
		return
	}
	retentionDays := s.cfg.Briefing.MemoryDays + 2

	if n, err := s.dedup.Cleanup(ctx); err != nil {
		s.logger.Warn("Story fingerprint cleanup failed", logger.ErrorField(err))
	} else if n > 0 {
		s.logger.Info("Expired story fingerprints removed", logger.IntField("count", int(n)))
	}

	if n, err := s.articleRepo.Cleanup(ctx, retentionDays); err != nil {
		s.logger.Warn("Article cleanup failed", logger.ErrorField(err))
	} else if n > 0 {
		s.logger.Info("Old articles removed", logger.IntField("count", int(n)))
	}

	if n, err := s.socialRepo.Cleanup(ctx, retentionDays); err != nil {
		s.logger.Warn("Social post cleanup failed", logger.ErrorField(err))
	} else if n > 0 {
		s.logger.Info("Old social posts removed", logger.IntField("count", int(n)))
	}

	if n, err := s.trendRepo.DeactivateStale(ctx, 48*time.Hour); err != nil {
		s.logger.Warn("Trend deactivation failed", logger.ErrorField(err))
	} else if n > 0 {
		s.logger.Info("Stale trends deactivated", logger.IntField("count", int(n)))
	}
}
