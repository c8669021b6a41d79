package briefing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang-news-briefer/internal/config"
	"golang-news-briefer/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticleRepo struct {
	recent    []entity.Article
	processed [][]string
}

func (f *fakeArticleRepo) CreateIgnoreConflict(ctx context.Context, a *entity.Article) (bool, error) {
	return true, nil
}

func (f *fakeArticleRepo) BulkCreateIgnoreConflict(ctx context.Context, articles []entity.Article) (int, error) {
	return len(articles), nil
}

func (f *fakeArticleRepo) GetRecent(ctx context.Context, hours, limit int, unprocessedOnly bool) ([]entity.Article, error) {
	return f.recent, nil
}

func (f *fakeArticleRepo) MarkProcessed(ctx context.Context, urlHashes []string) error {
	f.processed = append(f.processed, urlHashes)
	return nil
}

func (f *fakeArticleRepo) Cleanup(ctx context.Context, days int) (int64, error) { return 0, nil }
func (f *fakeArticleRepo) Count(ctx context.Context) (int64, error)             { return 0, nil }

type fakeSocialRepo struct {
	recent    []entity.SocialPost
	processed [][]string
}

func (f *fakeSocialRepo) BulkCreateIgnoreConflict(ctx context.Context, posts []entity.SocialPost) (int64, error) {
	return int64(len(posts)), nil
}

func (f *fakeSocialRepo) GetRecent(ctx context.Context, hours, limit int, unprocessedOnly bool) ([]entity.SocialPost, error) {
	return f.recent, nil
}

func (f *fakeSocialRepo) MarkProcessed(ctx context.Context, postIDs []string) error {
	f.processed = append(f.processed, postIDs)
	return nil
}

func (f *fakeSocialRepo) Cleanup(ctx context.Context, days int) (int64, error) { return 0, nil }
func (f *fakeSocialRepo) Count(ctx context.Context) (int64, error)             { return 0, nil }

type fakeSummaryRepo struct {
	created []entity.Summary
}

func (f *fakeSummaryRepo) Create(ctx context.Context, s *entity.Summary) error {
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeSummaryRepo) GetRecent(ctx context.Context, limit int) ([]entity.Summary, error) {
	return f.created, nil
}

func (f *fakeSummaryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeAI struct {
	output string
	err    error
	calls  int
}

func (f *fakeAI) GenerateBriefing(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.output, f.err
}

func (f *fakeAI) ModelName() string { return "fake-model" }

type recordingDeliverer struct {
	delivered []*Briefing
}

func (d *recordingDeliverer) Name() string { return "recorder" }

func (d *recordingDeliverer) Deliver(ctx context.Context, b *Briefing) error {
	d.delivered = append(d.delivered, b)
	return nil
}

func serviceConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Briefing.Style = "comprehensive"
	cfg.Briefing.TopCapacity = 20
	cfg.Briefing.MidCapacity = 35
	cfg.Briefing.QuickCapacity = 45
	cfg.Briefing.MaxArticles = 100
	cfg.Briefing.MaxPosts = 25
	cfg.Briefing.MaxTrends = 50
	cfg.Fetcher.MaxArticleAgeHours = 24
	cfg.Ollama.Timeout = 5 * time.Second
	return cfg
}

func newTestService(t *testing.T, articleRepo *fakeArticleRepo, socialRepo *fakeSocialRepo, summaryRepo *fakeSummaryRepo, ai *fakeAI, deliverer Deliverer) *Service {
	t.Helper()
	log := testLogger(t)
	return NewService(
		serviceConfig(),
		log,
		articleRepo,
		socialRepo,
		summaryRepo,
		nil, // no live sources in tests
		nil,
		nil,
		NewDeduplicator(&fakeStoryStore{}, log),
		NewCorrelationEngine(usGeo(), nil, log),
		ai,
		[]Deliverer{deliverer},
	)
}

func validBriefingText() string {
	return strings.Repeat("A thorough briefing paragraph with plenty of context. ", 5)
}

func TestGenerateNoNewContentShortCircuits(t *testing.T) {
	ai := &fakeAI{output: validBriefingText()}
	recorder := &recordingDeliverer{}
	svc := newTestService(t, &fakeArticleRepo{}, &fakeSocialRepo{}, &fakeSummaryRepo{}, ai, recorder)

	b := svc.Generate(context.Background(), Options{Style: StyleComprehensive, Cached: true})

	assert.True(t, b.Failed)
	assert.Equal(t, "No new content", b.FailureReason)
	// The failure notice is still delivered, but the LLM is never called.
	assert.Zero(t, ai.calls)
	require.Len(t, recorder.delivered, 1)
	assert.True(t, strings.HasPrefix(recorder.delivered[0].Subject(), "❌ "))
}

func TestGenerateHappyPath(t *testing.T) {
	now := time.Now()
	articleRepo := &fakeArticleRepo{recent: []entity.Article{
		{
			URLHash:         entity.HashURL("https://example.com/one"),
			Title:           "Major breakthrough announced in battery technology",
			Summary:         "Researchers announced a new battery chemistry.",
			URL:             "https://example.com/one",
			Category:        entity.CategoryCuttingEdge,
			ImportanceScore: 7,
			PublishedDate:   &now,
		},
	}}
	socialRepo := &fakeSocialRepo{recent: []entity.SocialPost{
		{
			PostID: "reddit:xyz",
			Title:  "Discussion of the battery news",
			URL:    "https://reddit.com/xyz",
			Score:  1200,
		},
	}}
	summaryRepo := &fakeSummaryRepo{}
	ai := &fakeAI{output: validBriefingText()}
	recorder := &recordingDeliverer{}
	svc := newTestService(t, articleRepo, socialRepo, summaryRepo, ai, recorder)

	b := svc.Generate(context.Background(), Options{Style: StyleComprehensive, Cached: true})

	assert.False(t, b.Failed)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, "fake-model", b.ModelUsed)
	assert.Equal(t, 1, b.ArticleCount)
	assert.Equal(t, 1, b.SocialCount)
	assert.NotEmpty(t, b.HTML)

	// Consumed content is marked processed and an audit row is written.
	require.Len(t, articleRepo.processed, 1)
	assert.Equal(t, []string{entity.HashURL("https://example.com/one")}, articleRepo.processed[0])
	require.Len(t, socialRepo.processed, 1)
	assert.Equal(t, []string{"reddit:xyz"}, socialRepo.processed[0])
	require.Len(t, summaryRepo.created, 1)
	assert.Equal(t, "fake-model", summaryRepo.created[0].ModelUsed)

	require.Len(t, recorder.delivered, 1)
	assert.False(t, strings.HasPrefix(recorder.delivered[0].Subject(), "❌"))
}

func TestGenerateRejectsLLMError(t *testing.T) {
	articleRepo := &fakeArticleRepo{recent: []entity.Article{
		{URLHash: "h1", Title: "Some story worth briefing about today", URL: "https://example.com/s", Category: entity.CategoryTech},
	}}
	ai := &fakeAI{err: errors.New("model unavailable")}
	recorder := &recordingDeliverer{}
	svc := newTestService(t, articleRepo, &fakeSocialRepo{}, &fakeSummaryRepo{}, ai, recorder)

	b := svc.Generate(context.Background(), Options{Cached: true})

	assert.True(t, b.Failed)
	assert.Equal(t, "Briefing generation failed", b.FailureReason)
	// Content is still marked processed so the next run is not poisoned.
	require.Len(t, articleRepo.processed, 1)
	require.Len(t, recorder.delivered, 1)
}

func TestGenerateRejectsShortOutput(t *testing.T) {
	articleRepo := &fakeArticleRepo{recent: []entity.Article{
		{URLHash: "h1", Title: "Another story for the daily briefing run", URL: "https://example.com/s", Category: entity.CategoryTech},
	}}
	ai := &fakeAI{output: "too short"}
	svc := newTestService(t, articleRepo, &fakeSocialRepo{}, &fakeSummaryRepo{}, ai, &recordingDeliverer{})

	b := svc.Generate(context.Background(), Options{Cached: true})
	assert.True(t, b.Failed)
}

func TestGenerateRejectsErrorPrefix(t *testing.T) {
	articleRepo := &fakeArticleRepo{recent: []entity.Article{
		{URLHash: "h1", Title: "Story headline for the error prefix case", URL: "https://example.com/s", Category: entity.CategoryTech},
	}}
	ai := &fakeAI{output: "Error: " + validBriefingText()}
	svc := newTestService(t, articleRepo, &fakeSocialRepo{}, &fakeSummaryRepo{}, ai, &recordingDeliverer{})

	b := svc.Generate(context.Background(), Options{Cached: true})
	assert.True(t, b.Failed)
}

func TestGenerateUnknownStyleFallsBack(t *testing.T) {
	ai := &fakeAI{output: validBriefingText()}
	svc := newTestService(t, &fakeArticleRepo{}, &fakeSocialRepo{}, &fakeSummaryRepo{}, ai, &recordingDeliverer{})

	b := svc.Generate(context.Background(), Options{Style: Style("bogus"), Cached: true})
	assert.Equal(t, StyleComprehensive, b.Style)
}

func TestSubjectFormatting(t *testing.T) {
	at := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	ok := &Briefing{GeneratedAt: at}
	assert.Equal(t, "News Briefing — Friday, January 2", ok.Subject())

	failed := &Briefing{GeneratedAt: at, Failed: true}
	assert.Equal(t, "❌ News Briefing — Friday, January 2", failed.Subject())
}

func TestSourceEnabled(t *testing.T) {
	assert.True(t, sourceEnabled(nil, "rss"))
	assert.True(t, sourceEnabled([]string{"RSS", "reddit"}, "rss"))
	assert.False(t, sourceEnabled([]string{"reddit"}, "rss"))
}
