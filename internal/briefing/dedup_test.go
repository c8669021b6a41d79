package briefing

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-news-briefer/internal/entity"
	"golang-news-briefer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStoryStore struct {
	fingerprints []entity.StoryFingerprint
	created      []entity.StoryFingerprint
	touched      []string
	listErr      error
}

func (f *fakeStoryStore) ListRecent(ctx context.Context, days int) ([]entity.StoryFingerprint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.fingerprints, nil
}

func (f *fakeStoryStore) Create(ctx context.Context, fp *entity.StoryFingerprint) error {
	f.created = append(f.created, *fp)
	return nil
}

func (f *fakeStoryStore) Touch(ctx context.Context, storyHash string, importanceScore float64) error {
	f.touched = append(f.touched, storyHash)
	return nil
}

func (f *fakeStoryStore) Cleanup(ctx context.Context, days int) (int64, error) {
	return int64(len(f.fingerprints)), nil
}

func (f *fakeStoryStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.fingerprints)), nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func storedStory(title, category string, importance float64, lastMentioned time.Time, ongoing bool) entity.StoryFingerprint {
	return entity.StoryFingerprint{
		StoryHash:       StoryHash(title, category),
		Title:           title,
		Summary:         title,
		MainTopics:      mainTopics(title, 5),
		FirstMentioned:  lastMentioned,
		LastMentioned:   lastMentioned,
		MentionCount:    1,
		ImportanceScore: importance,
		Category:        category,
		IsOngoing:       ongoing,
	}
}

func TestFilterAdmitsUnrelatedArticles(t *testing.T) {
	store := &fakeStoryStore{
		fingerprints: []entity.StoryFingerprint{
			storedStory("Central bank raises interest rates again", entity.CategoryBusiness, 5, time.Now().Add(-2*time.Hour), false),
		},
	}
	d := NewDeduplicator(store, testLogger(t))

	articles := []entity.Article{
		{Title: "New species of deep sea fish discovered near Japan", Summary: "Researchers found a previously unknown species.", Category: entity.CategoryCuttingEdge},
	}
	result := d.Filter(context.Background(), articles)

	assert.Len(t, result.Fresh, 1)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Duplicates)
	// Fresh admission tracks a new fingerprint.
	require.Len(t, store.created, 1)
	assert.Equal(t, entity.CategoryCuttingEdge, store.created[0].Category)
}

func TestFilterDiscardsNearDuplicate(t *testing.T) {
	title := "Central bank raises interest rates to fight inflation"
	store := &fakeStoryStore{
		fingerprints: []entity.StoryFingerprint{
			storedStory(title, entity.CategoryBusiness, 5, time.Now().Add(-30*time.Hour), false),
		},
	}
	d := NewDeduplicator(store, testLogger(t))

	// Same story, low importance, not ongoing, outside the 24h ongoing window:
	// the update predicate cannot fire, so it is a duplicate.
	articles := []entity.Article{
		{Title: title, Summary: "Central bank raises interest rates to fight inflation.", Category: entity.CategoryBusiness},
	}
	result := d.Filter(context.Background(), articles)

	assert.Empty(t, result.Fresh)
	assert.Empty(t, result.Updates)
	assert.Len(t, result.Duplicates, 1)
	assert.Empty(t, store.created)
}

func TestFilterAdmitsSignificantUpdate(t *testing.T) {
	title := "Wildfire crisis forces evacuations across the region"
	fp := storedStory(title, entity.CategoryWorldNews, 8, time.Now().Add(-3*time.Hour), true)
	store := &fakeStoryStore{fingerprints: []entity.StoryFingerprint{fp}}
	d := NewDeduplicator(store, testLogger(t))

	articles := []entity.Article{
		{
			Title:           "Breaking: wildfire crisis forces evacuations across the region",
			Summary:         "Officials confirmed 12000 residents were moved overnight.",
			Category:        entity.CategoryWorldNews,
			ImportanceScore: 9,
		},
	}
	result := d.Filter(context.Background(), articles)

	require.Len(t, result.Updates, 1)
	assert.Equal(t, "Breaking development", result.Updates[0].UpdateContext)
	assert.Equal(t, title, result.Updates[0].PreviousCoverage)
	assert.Equal(t, []string{fp.StoryHash}, store.touched)
}

func TestFilterDegradesToAllFreshOnStoreError(t *testing.T) {
	store := &fakeStoryStore{listErr: errors.New("connection refused")}
	d := NewDeduplicator(store, testLogger(t))

	articles := []entity.Article{
		{Title: "Anything at all", Category: entity.CategoryOther},
		{Title: "Something else entirely", Category: entity.CategoryTech},
	}
	result := d.Filter(context.Background(), articles)

	assert.Len(t, result.Fresh, 2)
	assert.Empty(t, result.Duplicates)
}

func TestStoryHashDeterministic(t *testing.T) {
	h1 := StoryHash("Senate passes the budget bill", "world_news")
	h2 := StoryHash("Senate passes the budget bill", "world_news")
	h3 := StoryHash("Senate passes the budget bill", "tech")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}

func TestUpdateReason(t *testing.T) {
	assert.Equal(t, "Breaking development", updateReason("Breaking: dam fails"))
	assert.Equal(t, "New information confirmed", updateReason("Officials confirmed the toll"))
	assert.Equal(t, "Story update", updateReason("Latest on the storm"))
	assert.Equal(t, "Continuing coverage", updateReason("Storm coverage"))
}

func TestIsLikelyOngoing(t *testing.T) {
	assert.True(t, IsLikelyOngoing("Trial begins for former executive", ""))
	assert.True(t, IsLikelyOngoing("Markets steady", "negotiations continue over the deal"))
	assert.False(t, IsLikelyOngoing("New phone released", "hands on with the device"))
}

func TestHasNewDevelopments(t *testing.T) {
	fp := &entity.StoryFingerprint{Summary: "death toll reached 40"}

	// New numeric token counts as a development.
	article := &entity.Article{Title: "Storm aftermath", Summary: "death toll reached 52"}
	assert.True(t, hasNewDevelopments(article, fp))

	// Same numbers, no update keyword: no development.
	article = &entity.Article{Title: "Storm aftermath", Summary: "death toll reached 40"}
	assert.False(t, hasNewDevelopments(article, fp))
}

func TestFilterIdempotentOnSecondPass(t *testing.T) {
	store := &fakeStoryStore{}
	d := NewDeduplicator(store, testLogger(t))

	articles := []entity.Article{
		{Title: "Quantum computing milestone reached by research lab", Summary: "A lab reports a stable logical qubit.", Category: entity.CategoryCuttingEdge},
	}
	first := d.Filter(context.Background(), articles)
	require.Len(t, first.Fresh, 1)

	// Feed the created fingerprints back in; the same article is now a
	// duplicate, not fresh again.
	store.fingerprints = store.created
	second := d.Filter(context.Background(), articles)
	assert.Empty(t, second.Fresh)
	assert.Len(t, second.Duplicates, 1)
}
