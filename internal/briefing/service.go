package briefing

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/entity"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
	"golang-news-briefer/pkg/utils"
)

// Collaborator interfaces. Each source is independent; a failing source
// contributes an empty list and never aborts the run.
type (
	// ArticleSource fetches and persists new RSS articles.
	ArticleSource interface {
		FetchArticles(ctx context.Context) ([]entity.Article, error)
	}

	// SocialSource fetches and persists new social posts.
	SocialSource interface {
		FetchPosts(ctx context.Context) ([]entity.SocialPost, error)
	}

	// TrendSource fetches current trending topics.
	TrendSource interface {
		FetchTrends(ctx context.Context) ([]entity.TrendingTopic, error)
	}

	// Deliverer hands a finished briefing to one output channel.
	Deliverer interface {
		Name() string
		Deliver(ctx context.Context, b *Briefing) error
	}
)

// Options select how one briefing run behaves.
type Options struct {
	Style    Style
	Cached   bool
	NoTrends bool
	Sources  []string
}

// Briefing is the final artefact of one orchestration run.
type Briefing struct {
	Style        Style
	GeneratedAt  time.Time
	PlainText    string
	HTML         string
	ModelUsed    string
	ArticleCount int
	SocialCount  int
	TrendCount   int
	LinkCoverage float64
	Elapsed      time.Duration

	Failed        bool
	FailureReason string
}

// Subject builds the delivery subject line, prefixed on failure.
func (b *Briefing) Subject() string {
	prefix := ""
	if b.Failed {
		prefix = "❌ "
	}
	return prefix + "News Briefing — " + b.GeneratedAt.Format("Monday, January 2")
}

// Service orchestrates one briefing end to end: gather, dedupe, correlate,
// prioritise, prompt, generate, reconcile, deliver.
type Service struct {
	cfg    *config.Config
	logger *logger.Logger

	articleRepo repository.ArticleRepository
	socialRepo  repository.SocialPostRepository
	summaryRepo repository.SummaryRepository

	articleSource ArticleSource
	socialSources []SocialSource
	trendSource   TrendSource

	dedup       *Deduplicator
	engine      *CorrelationEngine
	prioritizer *Prioritizer
	assembler   *PromptAssembler
	reconciler  *LinkReconciler

	ai         repository.AIRepository
	deliverers []Deliverer
}

// NewService wires the orchestrator. Sources may be nil when a collaborator
// is disabled by configuration.
func NewService(
	cfg *config.Config,
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	socialRepo repository.SocialPostRepository,
	summaryRepo repository.SummaryRepository,
	articleSource ArticleSource,
	socialSources []SocialSource,
	trendSource TrendSource,
	dedup *Deduplicator,
	engine *CorrelationEngine,
	ai repository.AIRepository,
	deliverers []Deliverer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log,
		articleRepo:   articleRepo,
		socialRepo:    socialRepo,
		summaryRepo:   summaryRepo,
		articleSource: articleSource,
		socialSources: socialSources,
		trendSource:   trendSource,
		dedup:         dedup,
		engine:        engine,
		prioritizer: NewPrioritizer(TierCapacities{
			Top:   cfg.Briefing.TopCapacity,
			Mid:   cfg.Briefing.MidCapacity,
			Quick: cfg.Briefing.QuickCapacity,
		}),
		assembler:  NewPromptAssembler(),
		reconciler: NewLinkReconciler(log),
		ai:         ai,
		deliverers: deliverers,
	}
}

// Generate runs one briefing. It always returns a briefing object; failures
// surface as Failed briefings, never as errors, so callers can still deliver
// a notice.
func (s *Service) Generate(ctx context.Context, opts Options) *Briefing {
	start := time.Now()
	b := &Briefing{Style: opts.Style, GeneratedAt: start}
	if _, ok := styleConfigs[opts.Style]; !ok {
		b.Style = StyleComprehensive
	}

	trends := s.gatherTrends(ctx, opts)
	if !opts.Cached {
		s.refreshContent(ctx, opts)
	}

	articles, posts := s.loadContent(ctx, opts)
	admitted := s.dedup.Filter(ctx, articles).Admitted()

	if len(admitted) == 0 && len(posts) == 0 {
		s.logger.Info("No new content for briefing")
		b.Failed = true
		b.FailureReason = "No new content"
		b.PlainText = "No new content since the last briefing."
		s.deliver(ctx, b)
		return b
	}

	var analysis *CrossSourceTrendAnalysis
	if len(trends) > 0 {
		analysis = s.engine.Correlate(ctx, trends, admitted, posts)
		b.TrendCount = len(trends)
	}

	items := make([]ContentItem, 0, len(admitted)+len(posts))
	for i := range admitted {
		items = append(items, NewArticleItem(&admitted[i]))
	}
	for i := range posts {
		items = append(items, NewSocialItem(&posts[i]))
	}
	tiers := s.prioritizer.Prioritize(items, analysis)

	prompt, registry := s.assembler.Build(tiers, analysis, b.Style, start)

	llmCtx, cancel := context.WithTimeout(ctx, s.cfg.Ollama.Timeout)
	defer cancel()
	raw, err := s.ai.GenerateBriefing(llmCtx, prompt)
	b.ModelUsed = s.ai.ModelName()

	if err != nil || strings.HasPrefix(raw, "Error:") || len(raw) < 100 {
		if err != nil {
			s.logger.Error("LLM generation failed", logger.ErrorField(err))
		} else {
			s.logger.Error("LLM output rejected", logger.IntField("length", len(raw)))
		}
		b.Failed = true
		b.FailureReason = "Briefing generation failed"
		b.PlainText = "Briefing generation failed. No briefing was produced for this run."
		s.markProcessed(ctx, tiers)
		s.deliver(ctx, b)
		return b
	}

	html, coverage := s.reconciler.Reconcile(raw, registry)

	b.PlainText = raw
	b.LinkCoverage = coverage
	b.ArticleCount = countKind(tiers, KindArticle)
	b.SocialCount = countKind(tiers, KindSocial)
	b.Elapsed = time.Since(start)
	b.HTML = RenderHTML(b, html)

	s.markProcessed(ctx, tiers)
	s.writeAudit(ctx, b)
	s.deliver(ctx, b)

	s.logger.Info("Briefing generated",
		logger.StringField("style", string(b.Style)),
		logger.IntField("articles", b.ArticleCount),
		logger.IntField("posts", b.SocialCount),
		logger.Float64Field("link_coverage", b.LinkCoverage),
		logger.DurationField("elapsed", b.Elapsed),
	)
	return b
}

// refreshContent fans out to the fetch collaborators. Failures are isolated
// per source.
func (s *Service) refreshContent(ctx context.Context, opts Options) {
	var wg sync.WaitGroup

	if s.articleSource != nil && sourceEnabled(opts.Sources, "rss") {
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			if _, err := s.articleSource.FetchArticles(ctx); err != nil {
				s.logger.Warn("Collaborator fetch failed",
					logger.StringField("component", "rss"),
					logger.IntField("attempt", 1),
					logger.ErrorField(err),
				)
			}
		})
	}
	for _, src := range s.socialSources {
		src := src
		if !sourceEnabled(opts.Sources, "reddit") {
			continue
		}
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			if _, err := src.FetchPosts(ctx); err != nil {
				s.logger.Warn("Collaborator fetch failed",
					logger.StringField("component", "reddit"),
					logger.IntField("attempt", 1),
					logger.ErrorField(err),
				)
			}
		})
	}
	wg.Wait()
}

func (s *Service) gatherTrends(ctx context.Context, opts Options) []entity.TrendingTopic {
	if opts.NoTrends || s.trendSource == nil || !sourceEnabled(opts.Sources, "trends") {
		return nil
	}
	trends, err := s.trendSource.FetchTrends(ctx)
	if err != nil {
		s.logger.Warn("Collaborator fetch failed",
			logger.StringField("component", "trends"),
			logger.IntField("attempt", 1),
			logger.ErrorField(err),
		)
		return nil
	}
	if len(trends) > s.cfg.Briefing.MaxTrends {
		trends = trends[:s.cfg.Briefing.MaxTrends]
	}
	return trends
}

func (s *Service) loadContent(ctx context.Context, opts Options) ([]entity.Article, []entity.SocialPost) {
	var articles []entity.Article
	var posts []entity.SocialPost

	if sourceEnabled(opts.Sources, "rss") {
		var err error
		articles, err = s.articleRepo.GetRecent(ctx, s.cfg.Fetcher.MaxArticleAgeHours, s.cfg.Briefing.MaxArticles, true)
		if err != nil {
			s.logger.Warn("Failed to load recent articles", logger.ErrorField(err))
		}
	}
	if sourceEnabled(opts.Sources, "reddit") {
		var err error
		posts, err = s.socialRepo.GetRecent(ctx, s.cfg.Fetcher.MaxArticleAgeHours, s.cfg.Briefing.MaxPosts, true)
		if err != nil {
			s.logger.Warn("Failed to load recent social posts", logger.ErrorField(err))
		}
	}
	return articles, posts
}

// markProcessed flags everything the briefing consumed so later runs skip it.
// It runs on a detached context so cancellation after the LLM call cannot
// leave articles eligible for re-summarising. The write is idempotent on
// url_hash.
func (s *Service) markProcessed(ctx context.Context, tiers Tiered) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	var urlHashes []string
	var postIDs []string
	for _, item := range tiers.All() {
		if item.Kind == KindSocial {
			postIDs = append(postIDs, item.Post.PostID)
			continue
		}
		urlHashes = append(urlHashes, item.Article.URLHash)
	}

	if len(urlHashes) > 0 {
		if err := s.articleRepo.MarkProcessed(writeCtx, urlHashes); err != nil {
			s.logger.Error("Failed to mark articles processed", logger.ErrorField(err))
		}
	}
	if len(postIDs) > 0 {
		if err := s.socialRepo.MarkProcessed(writeCtx, postIDs); err != nil {
			s.logger.Error("Failed to mark social posts processed", logger.ErrorField(err))
		}
	}
}

func (s *Service) writeAudit(ctx context.Context, b *Briefing) {
	summary := &entity.Summary{
		SummaryDate:    b.GeneratedAt,
		Category:       string(b.Style),
		Content:        b.PlainText,
		ModelUsed:      b.ModelUsed,
		ArticleCount:   b.ArticleCount + b.SocialCount,
		ProcessingTime: b.Elapsed.Seconds(),
		QualityScore:   b.LinkCoverage,
	}
	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		s.logger.Warn("Failed to write briefing audit row", logger.ErrorField(err))
	}
}

// deliver fans the briefing out to every configured channel. Delivery errors
// are logged, never raised.
func (s *Service) deliver(ctx context.Context, b *Briefing) {
	for _, d := range s.deliverers {
		if err := d.Deliver(ctx, b); err != nil {
			s.logger.Error("Delivery failed",
				logger.StringField("channel", d.Name()),
				logger.ErrorField(err),
			)
		}
	}
}

func countKind(tiers Tiered, kind ContentKind) int {
	n := 0
	for _, item := range tiers.All() {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

func sourceEnabled(sources []string, name string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}
