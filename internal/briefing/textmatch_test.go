package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLCSRatio(t *testing.T) {
	assert.Equal(t, 1.0, lcsRatio("Fed raises rates", "fed raises rates"))
	assert.Equal(t, 0.0, lcsRatio("", "anything"))
	assert.Equal(t, 0.0, lcsRatio("abc", ""))

	// Shared subsequence normalised by the longer string.
	score := lcsRatio("fed raises interest rates", "fed raises rates")
	assert.Greater(t, score, 0.6)
	assert.Less(t, score, 1.0)

	// Symmetric.
	assert.Equal(t,
		lcsRatio("market rally continues", "rally in markets"),
		lcsRatio("rally in markets", "market rally continues"))
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"fed": {}, "rates": {}, "economy": {}}
	b := map[string]struct{}{"fed": {}, "rates": {}, "inflation": {}}

	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)
	assert.Equal(t, 0.0, jaccard(a, map[string]struct{}{}))
	assert.Equal(t, 1.0, jaccard(a, a))
}

func TestMainTopics(t *testing.T) {
	topics := mainTopics("the senate vote on the budget budget budget", 3)
	assert.Equal(t, []string{"budget", "senate", "vote"}, topics)

	// Stop words and short tokens never appear.
	topics = mainTopics("it is on at by ai", 5)
	assert.Empty(t, topics)

	// Lexicographic tie-break at equal frequency.
	topics = mainTopics("zebra apple", 2)
	assert.Equal(t, []string{"apple", "zebra"}, topics)
}

func TestNumericTokens(t *testing.T) {
	set := numericTokens("inflation hit 3.5 percent, up from 2,100 basis points in 2024")
	assert.Contains(t, set, "3.5")
	assert.Contains(t, set, "2,100")
	assert.Contains(t, set, "2024")
	assert.Len(t, set, 3)
}

func TestProperNouns(t *testing.T) {
	nouns := properNouns("Apple and Tim Cook announced the deal in New York today")
	assert.Contains(t, nouns, "Apple")
	assert.Contains(t, nouns, "Tim Cook")
	assert.Contains(t, nouns, "New York")
}

func TestStripNonAlnum(t *testing.T) {
	assert.Equal(t, "Apples iPhone 16 Event", stripNonAlnum("Apple's iPhone 16 Event!"))
	assert.Equal(t, "", stripNonAlnum("!!!"))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("the fed raised rates", "fed"))
	assert.False(t, containsWord("confederate statues", "fed"))
}
