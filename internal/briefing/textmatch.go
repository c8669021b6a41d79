package briefing

import (
	"regexp"
	"sort"
	"strings"
)

var (
	wordRe       = regexp.MustCompile(`[a-z0-9]+`)
	numberRe     = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`)
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
)

// lcsRatio computes the longest-common-subsequence ratio of two lowercased
// strings, normalised by the longer length. Returns a value in [0,1].
func lcsRatio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	return float64(prev[len(rb)]) / float64(longer)
}

// jaccard computes set overlap of two word sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// tokenize lowercases text and splits it into alphanumeric word tokens.
func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// meaningfulWords returns the set of tokens with length >= 3 that are not
// stop words.
func meaningfulWords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if len(w) < 3 || isStopWord(w) {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// mainTopics extracts the top-n non-stopword tokens of length >= 3,
// frequency-ordered with lexicographic tie-breaks.
func mainTopics(text string, n int) []string {
	counts := make(map[string]int)
	for _, w := range tokenize(text) {
		if len(w) < 3 || isStopWord(w) {
			continue
		}
		counts[w]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// numericTokens extracts numeric tokens from text.
func numericTokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range numberRe.FindAllString(text, -1) {
		set[n] = struct{}{}
	}
	return set
}

// properNouns extracts capitalised token runs, skipping a leading sentence
// capital heuristically kept since trend keywords are capitalised too.
func properNouns(text string) []string {
	return properNounRe.FindAllString(text, -1)
}

// stripNonAlnum removes everything except letters, digits and spaces.
func stripNonAlnum(s string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(s, ""))
}

// containsWord reports whether word appears in text on token boundaries.
func containsWord(text, word string) bool {
	for _, t := range tokenize(text) {
		if t == word {
			return true
		}
	}
	return false
}
