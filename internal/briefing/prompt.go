package briefing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-news-briefer/pkg/utils"
)

// Style selects the voice and depth of the generated briefing.
type Style string

const (
	StyleComprehensive Style = "comprehensive"
	StyleQuick         Style = "quick"
	StyleAnalytical    Style = "analytical"
)

// Marker is the sentinel glyph the model must emit after every article
// mention. The link reconciler rewrites it to a hyperlink.
const Marker = "⛓"

type styleConfig struct {
	greeting string
	approach string
	tone     string
}

var styleConfigs = map[Style]styleConfig{
	StyleComprehensive: {
		greeting: "Here's your full briefing",
		approach: "Provide a thorough, insightful briefing that connects related stories and offers context.",
		tone:     "professional yet conversational",
	},
	StyleQuick: {
		greeting: "Here are today's essentials",
		approach: "Give a concise, punchy summary hitting only the most important points.",
		tone:     "direct and efficient",
	},
	StyleAnalytical: {
		greeting: "Here's what's moving beneath the headlines",
		approach: "Focus on implications, underlying trends, and deeper meaning.",
		tone:     "analytical and thoughtful",
	},
}

var variationPrefixes = []string{"[Reddit]", "[Twitter]", "[Breaking]", "Breaking:", "Update:"}

type registryEntry struct {
	Variation string
	Canonical string
	URL       string
}

// URLRegistry is an ordered many-to-one mapping from article titles and their
// variations to URLs. Collisions overwrite silently.
type URLRegistry struct {
	titles  []string
	urls    map[string]string
	entries map[string]registryEntry
}

// NewURLRegistry creates an empty registry.
func NewURLRegistry() *URLRegistry {
	return &URLRegistry{
		urls:    make(map[string]string),
		entries: make(map[string]registryEntry),
	}
}

// Register adds a title and all its matching variations.
func (r *URLRegistry) Register(title, url string) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" || url == "" {
		return
	}
	if _, seen := r.urls[title]; !seen {
		r.titles = append(r.titles, title)
	}
	r.urls[title] = url

	r.add(title, title, url)
	for _, v := range TitleVariations(title) {
		r.add(v, title, url)
	}
}

func (r *URLRegistry) add(variation, canonical, url string) {
	key := strings.ToLower(strings.TrimSpace(variation))
	if key == "" {
		return
	}
	r.entries[key] = registryEntry{Variation: variation, Canonical: canonical, URL: url}
}

// Lookup resolves a variation case-insensitively.
func (r *URLRegistry) Lookup(variation string) (string, bool) {
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(variation))]
	if !ok {
		return "", false
	}
	return e.URL, true
}

// Size returns the number of distinct registered articles.
func (r *URLRegistry) Size() int {
	return len(r.titles)
}

// Titles returns canonical titles in registration order.
func (r *URLRegistry) Titles() []string {
	return r.titles
}

// URLFor returns the URL registered for a canonical title.
func (r *URLRegistry) URLFor(title string) (string, bool) {
	url, ok := r.urls[title]
	return url, ok
}

// sortedEntries returns every entry ordered by variation length descending,
// with lexicographic tie-breaks for determinism.
func (r *URLRegistry) sortedEntries() []registryEntry {
	out := make([]registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Variation) != len(out[j].Variation) {
			return len(out[i].Variation) > len(out[j].Variation)
		}
		return out[i].Variation < out[j].Variation
	})
	return out
}

// TitleVariations generates the lookup variations for one title: lowercase,
// stripped bracket prefixes, truncations, leading token runs, and the title
// with non-alphanumerics removed.
func TitleVariations(title string) []string {
	var variations []string
	variations = append(variations, strings.ToLower(title))

	cleaned := title
	for _, prefix := range variationPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
			variations = append(variations, cleaned)
		}
	}

	if len(title) > 30 {
		for _, n := range []int{50, 40, 30} {
			if len(title) > n {
				variations = append(variations, strings.TrimSpace(title[:n]))
			}
		}
	}

	words := strings.Fields(title)
	for _, n := range []int{2, 3, 4, 5} {
		if len(words) >= n {
			variations = append(variations, strings.Join(words[:n], " "))
		}
	}

	if stripped := stripNonAlnum(title); stripped != "" && stripped != title {
		variations = append(variations, stripped)
	}
	return variations
}

// PromptAssembler renders tiered content into a single LLM prompt and the
// registry used afterwards for link reconciliation.
type PromptAssembler struct{}

// NewPromptAssembler creates a PromptAssembler.
func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// Build renders the prompt. Every item rendered is also registered; every URL
// appears exactly once.
func (a *PromptAssembler) Build(tiers Tiered, analysis *CrossSourceTrendAnalysis, style Style, now time.Time) (string, *URLRegistry) {
	cfg, ok := styleConfigs[style]
	if !ok {
		style = StyleComprehensive
		cfg = styleConfigs[style]
	}

	registry := NewURLRegistry()
	for _, item := range tiers.All() {
		registry.Register(item.Title(), item.URL())
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert news analyst providing a personalized %s briefing.\n", style)
	fmt.Fprintf(&b, "Current time: %s %s, %s.\n\n", now.Weekday(), now.Format("January 2"), strings.ToLower(utils.TimePeriod(now.Hour())))
	fmt.Fprintf(&b, "Greeting to open with: %s.\n", cfg.greeting)
	fmt.Fprintf(&b, "Approach: %s\n", cfg.approach)
	fmt.Fprintf(&b, "Tone: %s.\n", cfg.tone)

	a.writeTrendAlert(&b, analysis)
	a.writeTopSection(&b, tiers.Top)
	a.writeMidSection(&b, tiers.Mid)
	a.writeQuickSection(&b, tiers.Quick, style)
	a.writeLinkingInstructions(&b)

	b.WriteString("\nSTRUCTURE YOUR RESPONSE:\n")
	b.WriteString("1. Open with the greeting above, acknowledging the time of day\n")
	b.WriteString("2. Lead with the most significant developments\n")
	b.WriteString("3. Group related stories and explain the connections\n")
	b.WriteString("4. Close with a short summary tying key themes together\n\n")
	b.WriteString("Write flowing prose, not bullet lists. Begin your briefing:\n")

	return b.String(), registry
}

func (a *PromptAssembler) writeTrendAlert(b *strings.Builder, analysis *CrossSourceTrendAnalysis) {
	if analysis == nil {
		return
	}
	significant := analysis.SignificantTrends()
	if len(significant) == 0 {
		return
	}
	if len(significant) > 3 {
		significant = significant[:3]
	}

	b.WriteString("\n=== CROSS-SOURCE TREND ALERT ===\n")
	b.WriteString("These topics are trending across multiple independent sources right now:\n")
	for i, cov := range significant {
		fmt.Fprintf(b, "%d. %s — covered by %d sources (strength %.1f)\n",
			i+1, cov.Trend.Keyword, len(cov.Sources), cov.TotalStrength)
		if headline := cov.BestHeadline(); headline != "" {
			fmt.Fprintf(b, "   Best coverage: %s\n", headline)
		}
	}
	b.WriteString("Weave these cross-source trends into the briefing where the related stories appear.\n")
}

func (a *PromptAssembler) writeTopSection(b *strings.Builder, items []ContentItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n=== TOP STORIES (%d) — full detail ===\n", len(items))
	for i, item := range items {
		a.writeItem(b, i+1, item, 400)
	}
}

func (a *PromptAssembler) writeMidSection(b *strings.Builder, items []ContentItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n=== ALSO NOTABLE (%d) ===\n", len(items))
	for i, item := range items {
		a.writeItem(b, i+1, item, 200)
	}
}

func (a *PromptAssembler) writeQuickSection(b *strings.Builder, items []ContentItem, style Style) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n=== QUICK HEADLINES (%d) ===\n", len(items))

	byCategory := make(map[string][]ContentItem)
	var categories []string
	for _, item := range items {
		c := item.Category()
		if _, seen := byCategory[c]; !seen {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], item)
	}
	sort.Strings(categories)

	for _, c := range categories {
		fmt.Fprintf(b, "\n[%s]\n", strings.ToUpper(c))
		for _, item := range byCategory[c] {
			fmt.Fprintf(b, "- %s (%s) %s\n", item.Title(), item.Source(), item.URL())
		}
	}
}

func (a *PromptAssembler) writeItem(b *strings.Builder, n int, item ContentItem, truncate int) {
	fmt.Fprintf(b, "\n--- ITEM %d ---\n", n)
	fmt.Fprintf(b, "TITLE: %s\n", item.Title())
	fmt.Fprintf(b, "SOURCE: %s\n", item.Source())
	fmt.Fprintf(b, "URL: %s\n", item.URL())
	if item.Kind == KindArticle && item.Article.UpdateContext != "" {
		fmt.Fprintf(b, "UPDATE: %s (previously: %s)\n", item.Article.UpdateContext, item.Article.PreviousCoverage)
	}
	content := itemBody(item)
	if content != "" {
		fmt.Fprintf(b, "CONTENT: %s\n", utils.TruncateString(content, truncate))
	}
}

func itemBody(item ContentItem) string {
	if item.Kind == KindSocial {
		return strings.TrimSpace(item.Post.Content)
	}
	if item.Article.Content != "" {
		return strings.TrimSpace(item.Article.Content)
	}
	return strings.TrimSpace(item.Article.Summary)
}

func (a *PromptAssembler) writeLinkingInstructions(b *strings.Builder) {
	fmt.Fprintf(b, "\nCRITICAL LINKING REQUIREMENTS:\n")
	fmt.Fprintf(b, "1. When mentioning ANY article, immediately append %s after the title or reference\n", Marker)
	fmt.Fprintf(b, "2. EVERY article mention must carry %s - no exceptions\n", Marker)
	fmt.Fprintf(b, "3. Format: \"Article Title %s\" or \"According to the report %s...\"\n\n", Marker, Marker)
	fmt.Fprintf(b, "EXAMPLES:\n")
	fmt.Fprintf(b, "✅ \"Apple's iPhone announcement %s shows major improvements...\"\n", Marker)
	fmt.Fprintf(b, "✅ \"The study %s reveals concerning trends...\"\n", Marker)
	fmt.Fprintf(b, "❌ \"Several articles mentioned\" (missing %s)\n", Marker)
}
