package briefing

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-news-briefer/internal/entity"
	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"
)

const (
	similarityThreshold = 0.55
	storyMemoryDays     = 5
	storyCleanupDays    = storyMemoryDays + 1
)

var updateKeywords = []string{
	"breaking", "update", "new", "latest", "developing", "confirmed",
	"announced", "revealed", "leaked", "exclusive", "unprecedented",
	"major", "significant", "emergency",
}

var ongoingIndicators = []string{
	"crisis", "war", "conflict", "investigation", "trial", "election",
	"pandemic", "outbreak", "emergency", "disaster", "negotiations",
	"summit", "ongoing", "continues",
}

// DedupResult partitions a candidate batch into disjoint sets. Fresh and
// Updates are admitted; Duplicates are discarded.
type DedupResult struct {
	Fresh      []entity.Article
	Updates    []entity.Article
	Duplicates []entity.Article
}

// Admitted returns fresh plus update articles in input order.
func (r *DedupResult) Admitted() []entity.Article {
	out := make([]entity.Article, 0, len(r.Fresh)+len(r.Updates))
	out = append(out, r.Fresh...)
	out = append(out, r.Updates...)
	return out
}

// Deduplicator filters candidate articles against the story fingerprint store.
type Deduplicator struct {
	store      repository.StoryFingerprintRepository
	logger     *logger.Logger
	threshold  float64
	memoryDays int
}

// NewDeduplicator creates a Deduplicator with the default 5-day memory window.
func NewDeduplicator(store repository.StoryFingerprintRepository, log *logger.Logger) *Deduplicator {
	return &Deduplicator{
		store:      store,
		logger:     log,
		threshold:  similarityThreshold,
		memoryDays: storyMemoryDays,
	}
}

// Filter partitions articles into fresh, significant updates, and duplicates,
// then updates the fingerprint store. A store failure degrades to all-fresh
// and never fails the pipeline.
func (d *Deduplicator) Filter(ctx context.Context, articles []entity.Article) *DedupResult {
	result := &DedupResult{}
	if len(articles) == 0 {
		return result
	}

	fingerprints, err := d.store.ListRecent(ctx, d.memoryDays)
	if err != nil {
		d.logger.Warn("Fingerprint store unreachable, admitting all articles as fresh",
			logger.ErrorField(err),
			logger.IntField("articles", len(articles)),
		)
		result.Fresh = append(result.Fresh, articles...)
		return result
	}

	now := time.Now()
	for _, article := range articles {
		best, bestScore := d.bestMatch(&article, fingerprints)
		if best == nil || bestScore < d.threshold {
			if err := d.trackNewStory(ctx, &article, now); err != nil {
				d.logger.Warn("Failed to track new story", logger.ErrorField(err),
					logger.StringField("title", article.Title))
			}
			result.Fresh = append(result.Fresh, article)
			continue
		}

		if d.isSignificantUpdate(&article, best, now) {
			article.UpdateContext = updateReason(article.Title)
			article.PreviousCoverage = best.Title
			if err := d.store.Touch(ctx, best.StoryHash, article.ImportanceScore); err != nil {
				d.logger.Warn("Failed to bump story fingerprint", logger.ErrorField(err),
					logger.StringField("story_hash", best.StoryHash))
			}
			result.Updates = append(result.Updates, article)
			continue
		}

		result.Duplicates = append(result.Duplicates, article)
	}

	d.logger.Info("Deduplication complete",
		logger.IntField("fresh", len(result.Fresh)),
		logger.IntField("updates", len(result.Updates)),
		logger.IntField("duplicates", len(result.Duplicates)),
	)
	return result
}

// Cleanup removes fingerprints idle past the retention window.
func (d *Deduplicator) Cleanup(ctx context.Context) (int64, error) {
	removed, err := d.store.Cleanup(ctx, storyCleanupDays)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup story fingerprints: %w", err)
	}
	return removed, nil
}

func (d *Deduplicator) bestMatch(article *entity.Article, fingerprints []entity.StoryFingerprint) (*entity.StoryFingerprint, float64) {
	var best *entity.StoryFingerprint
	bestScore := 0.0
	for i := range fingerprints {
		score := StorySimilarity(article, &fingerprints[i])
		if score > bestScore {
			bestScore = score
			best = &fingerprints[i]
		}
	}
	return best, bestScore
}

// StorySimilarity scores how likely an article covers the same story as a
// stored fingerprint. Title similarity dominates, topic overlap and category
// agreement refine.
func StorySimilarity(article *entity.Article, fp *entity.StoryFingerprint) float64 {
	titleSim := lcsRatio(article.Title, fp.Title)

	articleTopics := topicSet(mainTopics(article.Title+" "+article.Summary, 5))
	storyTopics := topicSet(fp.MainTopics)
	topicOverlap := jaccard(articleTopics, storyTopics)

	categoryMatch := 0.0
	if article.Category == fp.Category {
		categoryMatch = 1.0
	}

	return 0.5*titleSim + 0.4*topicOverlap + 0.1*categoryMatch
}

func (d *Deduplicator) isSignificantUpdate(article *entity.Article, fp *entity.StoryFingerprint, now time.Time) bool {
	hoursSince := now.Sub(fp.LastMentioned).Hours()

	if fp.IsOngoing && hoursSince < 24 {
		return hasNewDevelopments(article, fp)
	}
	if fp.ImportanceScore > 7.0 && hoursSince < 72 {
		return hasNewDevelopments(article, fp)
	}
	return false
}

func hasNewDevelopments(article *entity.Article, fp *entity.StoryFingerprint) bool {
	text := strings.ToLower(article.Title + " " + article.Summary)

	for _, kw := range updateKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	articleNumbers := numericTokens(text)
	storyNumbers := numericTokens(strings.ToLower(fp.Summary))
	for n := range articleNumbers {
		if _, ok := storyNumbers[n]; !ok {
			return true
		}
	}
	return false
}

func updateReason(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "breaking"):
		return "Breaking development"
	case strings.Contains(t, "confirmed") || strings.Contains(t, "announced") || strings.Contains(t, "revealed"):
		return "New information confirmed"
	case strings.Contains(t, "update") || strings.Contains(t, "latest") || strings.Contains(t, "new"):
		return "Story update"
	default:
		return "Continuing coverage"
	}
}

// IsLikelyOngoing reports whether a story is likely to receive continued
// coverage over the following days.
func IsLikelyOngoing(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)
	for _, indicator := range ongoingIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

// StoryHash derives the fingerprint identity from title, category and the
// top title topic words.
func StoryHash(title, category string) string {
	lowered := strings.ToLower(title)
	truncated := lowered
	if len(truncated) > 50 {
		truncated = truncated[:50]
	}

	keyWords := mainTopics(lowered, 3)
	sort.Strings(keyWords)

	input := truncated + "_" + category + "_" + strings.Join(keyWords, "_")
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (d *Deduplicator) trackNewStory(ctx context.Context, article *entity.Article, now time.Time) error {
	fp := &entity.StoryFingerprint{
		StoryHash:       StoryHash(article.Title, article.Category),
		Title:           article.Title,
		Summary:         article.Summary,
		MainTopics:      mainTopics(article.Title+" "+article.Summary, 5),
		FirstMentioned:  now,
		LastMentioned:   now,
		MentionCount:    1,
		ImportanceScore: article.ImportanceScore,
		Category:        article.Category,
		IsOngoing:       IsLikelyOngoing(article.Title, article.Summary),
	}
	return d.store.Create(ctx, fp)
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	return set
}
