package briefing

import (
	"math"
	"sort"
	"strings"
)

// TierCapacities bounds how many items each tier may hold.
type TierCapacities struct {
	Top   int
	Mid   int
	Quick int
}

// DefaultTierCapacities returns the standard 20/35/45 split.
func DefaultTierCapacities() TierCapacities {
	return TierCapacities{Top: 20, Mid: 35, Quick: 45}
}

// Tiered holds the three disjoint ordered output lists.
type Tiered struct {
	Top   []ContentItem
	Mid   []ContentItem
	Quick []ContentItem
}

// All returns every tiered item in top, mid, quick order.
func (t Tiered) All() []ContentItem {
	out := make([]ContentItem, 0, len(t.Top)+len(t.Mid)+len(t.Quick))
	out = append(out, t.Top...)
	out = append(out, t.Mid...)
	out = append(out, t.Quick...)
	return out
}

// Size returns the total number of tiered items.
func (t Tiered) Size() int {
	return len(t.Top) + len(t.Mid) + len(t.Quick)
}

// Diversity ceilings applied while filling the top tier.
var categoryTargetRatios = map[string]float64{
	"world_news":   0.25,
	"tech":         0.20,
	"business":     0.15,
	"cutting_edge": 0.15,
	"security":     0.10,
	"sports":       0.10,
	"other":        0.05,
}

var categoryMultipliers = map[string]float64{
	"world_news":   1.2,
	"cutting_edge": 1.1,
	"security":     1.3,
	"sports":       0.8,
}

// Prioritizer scores and tiers content. It is a pure function of its inputs;
// equal inputs and capacities always produce the same ordering.
type Prioritizer struct {
	caps TierCapacities
}

// NewPrioritizer creates a Prioritizer with the given tier capacities.
func NewPrioritizer(caps TierCapacities) *Prioritizer {
	if caps.Top <= 0 && caps.Mid <= 0 && caps.Quick <= 0 {
		caps = DefaultTierCapacities()
	}
	return &Prioritizer{caps: caps}
}

// Prioritize scores every item, applies the category diversity pass, and
// allocates the result to tiers. analysis may be nil when trends are disabled.
func (p *Prioritizer) Prioritize(items []ContentItem, analysis *CrossSourceTrendAnalysis) Tiered {
	if len(items) == 0 {
		return Tiered{}
	}

	groupSizes := storyGroupSizes(items)
	trendBoosts := trendBoostIndex(analysis)

	scored := make([]ContentItem, len(items))
	copy(scored, items)
	for i := range scored {
		scored[i].PriorityScore = p.score(scored[i], groupSizes, trendBoosts)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].PriorityScore != scored[j].PriorityScore {
			return scored[i].PriorityScore > scored[j].PriorityScore
		}
		return scored[i].Title() < scored[j].Title()
	})

	diversified := p.diversify(scored)
	return p.allocate(diversified)
}

func (p *Prioritizer) score(item ContentItem, groupSizes map[string]int, trendBoosts map[string]float64) float64 {
	score := 2.0 * item.Importance()

	if item.Kind == KindSocial {
		post := item.Post
		score += math.Min(5, math.Log10(math.Max(1, float64(post.Score)))*2)
		score += math.Min(2, math.Log10(1+float64(post.CommentsCount)))
		if post.Score > 5000 {
			score += 3
		} else if post.Score > 2000 {
			score += 1.5
		}
	}

	if size := groupSizes[storyGroupKey(item.Title())]; size >= 2 {
		score += math.Min(4, 1.5*float64(size))
	}

	if hasPublishedDate(item) {
		score += 0.5
	}

	if mult, ok := categoryMultipliers[item.Category()]; ok {
		score *= mult
	}

	contentLen := contentLength(item)
	if contentLen > 200 {
		score += 0.5
	}
	if contentLen > 500 {
		score += 0.5
	}
	titleLen := len(item.Title())
	if titleLen >= 10 && titleLen <= 100 {
		score += 0.3
	}

	score += trendBoosts[item.URL()]

	return score
}

// diversify enforces per-category ceilings while the top tier fills, then
// appends the remainder in pure score order.
func (p *Prioritizer) diversify(sorted []ContentItem) []ContentItem {
	total := len(sorted)
	out := make([]ContentItem, 0, total)
	var deferred []ContentItem
	counts := make(map[string]int)

	i := 0
	for ; i < len(sorted) && len(out) < p.caps.Top; i++ {
		item := sorted[i]
		category := item.Category()
		ratio, ok := categoryTargetRatios[category]
		if !ok {
			ratio = categoryTargetRatios["other"]
		}
		ceiling := int(math.Round(ratio * float64(total)))
		if counts[category] >= ceiling {
			deferred = append(deferred, item)
			continue
		}
		counts[category]++
		out = append(out, item)
	}

	// Merge the deferred overflow with the untouched tail, both already in
	// score order.
	rest := sorted[i:]
	for len(deferred) > 0 && len(rest) > 0 {
		if deferred[0].PriorityScore >= rest[0].PriorityScore {
			out = append(out, deferred[0])
			deferred = deferred[1:]
		} else {
			out = append(out, rest[0])
			rest = rest[1:]
		}
	}
	out = append(out, deferred...)
	out = append(out, rest...)
	return out
}

func (p *Prioritizer) allocate(items []ContentItem) Tiered {
	var tiered Tiered
	for _, item := range items {
		switch {
		case len(tiered.Top) < p.caps.Top:
			item.Tier = TierTop
			tiered.Top = append(tiered.Top, item)
		case len(tiered.Mid) < p.caps.Mid:
			item.Tier = TierMid
			tiered.Mid = append(tiered.Mid, item)
		case len(tiered.Quick) < p.caps.Quick:
			item.Tier = TierQuick
			tiered.Quick = append(tiered.Quick, item)
		default:
			return tiered
		}
	}
	return tiered
}

// storyGroupKey normalises a title to its first three non-stopword tokens.
func storyGroupKey(title string) string {
	var key []string
	for _, w := range tokenize(title) {
		if isStopWord(w) {
			continue
		}
		key = append(key, w)
		if len(key) == 3 {
			break
		}
	}
	return strings.Join(key, " ")
}

func storyGroupSizes(items []ContentItem) map[string]int {
	sizes := make(map[string]int)
	for _, item := range items {
		if key := storyGroupKey(item.Title()); key != "" {
			sizes[key]++
		}
	}
	return sizes
}

// trendBoostIndex maps content URL to the strongest trend boost term
// P · 2.0 · (0.5 · |sources|).
func trendBoostIndex(analysis *CrossSourceTrendAnalysis) map[string]float64 {
	boosts := make(map[string]float64)
	if analysis == nil {
		return boosts
	}
	apply := func(cov TrendCoverage) {
		factor := 2.0 * 0.5 * float64(len(cov.Sources))
		for _, m := range append(append([]TrendMatch{}, cov.RSSMatches...), cov.SocialMatches...) {
			boost := m.Score * factor
			if boost > boosts[m.Item.URL()] {
				boosts[m.Item.URL()] = boost
			}
		}
	}
	for _, group := range [][]TrendCoverage{
		analysis.TripleCoverage, analysis.DoubleCoverage,
		analysis.GeographicTrends, analysis.EmergingSignals, analysis.SingleCoverage,
	} {
		for _, cov := range group {
			apply(cov)
		}
	}
	return boosts
}

func hasPublishedDate(item ContentItem) bool {
	if item.Kind == KindSocial {
		return item.Post.CreatedUTC != nil
	}
	return item.Article.PublishedDate != nil
}

func contentLength(item ContentItem) int {
	if item.Kind == KindSocial {
		return len(item.Post.Content)
	}
	if len(item.Article.Content) > 0 {
		return len(item.Article.Content)
	}
	return len(item.Article.Summary)
}
