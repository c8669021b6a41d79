package social

import (
	"math"
	"testing"
	"time"

	"golang-news-briefer/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestInterestScoreEngagement(t *testing.T) {
	now := time.Now()

	high := &entity.SocialPost{Score: 10000, CommentsCount: 2000}
	low := &entity.SocialPost{Score: 5, CommentsCount: 1}

	assert.Greater(t, InterestScore(high, now), InterestScore(low, now))
	// log10 score component is capped at 5, comments at 2.
	assert.LessOrEqual(t, InterestScore(high, now), 8.0)
}

func TestInterestScoreRecencyBonus(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-2 * time.Hour)
	stale := now.Add(-72 * time.Hour)

	freshPost := &entity.SocialPost{Score: 500, CreatedUTC: &fresh}
	stalePost := &entity.SocialPost{Score: 500, CreatedUTC: &stale}

	diff := InterestScore(freshPost, now) - InterestScore(stalePost, now)
	assert.InDelta(t, 2.0, diff, 1e-9)
}

func TestInterestScoreNeverNegative(t *testing.T) {
	now := time.Now()
	old := now.Add(-100 * time.Hour)
	post := &entity.SocialPost{Score: 0, CreatedUTC: &old}
	assert.Equal(t, 0.0, InterestScore(post, now))
}

func TestInterestScoreCommentThreshold(t *testing.T) {
	now := time.Now()
	few := &entity.SocialPost{Score: 100, CommentsCount: 10}
	many := &entity.SocialPost{Score: 100, CommentsCount: 100}

	// Comments only count beyond the threshold of 10.
	base := math.Min(5, math.Log10(100)*2)
	assert.InDelta(t, base, InterestScore(few, now), 1e-9)
	assert.InDelta(t, base+2, InterestScore(many, now), 1e-9)
}

func TestEngagementLevels(t *testing.T) {
	assert.Equal(t, "viral", (&entity.SocialPost{Score: 6000}).EngagementLevel())
	assert.Equal(t, "high", (&entity.SocialPost{Score: 1500}).EngagementLevel())
	assert.Equal(t, "moderate", (&entity.SocialPost{Score: 300}).EngagementLevel())
	assert.Equal(t, "low", (&entity.SocialPost{Score: 10}).EngagementLevel())
}
