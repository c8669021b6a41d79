package briefing

import (
	"fmt"
	"strings"

	"golang-news-briefer/pkg/logger"
)

const (
	minVariationLen   = 10
	minLenRatio       = 0.6
	minResolveScore   = 0.4
	coverageWarnRatio = 0.7

	anchorStyle  = "color: #007bff; text-decoration: none; font-weight: bold;"
	neutralStyle = "color: #666;"
)

// LinkReconciler rewrites sentinel markers in LLM output into hyperlinks.
// Given the same text and registry it always produces the same result.
type LinkReconciler struct {
	logger *logger.Logger
}

// NewLinkReconciler creates a LinkReconciler.
func NewLinkReconciler(log *logger.Logger) *LinkReconciler {
	return &LinkReconciler{logger: log}
}

// Reconcile completes missing markers, resolves each marker to a URL, and
// reports anchor coverage over the registry.
func (l *LinkReconciler) Reconcile(text string, registry *URLRegistry) (string, float64) {
	if registry == nil || registry.Size() == 0 {
		return text, 0
	}

	withMarkers := l.completeMarkers(text, registry)
	resolved, anchors := l.resolveMarkers(withMarkers, registry)

	coverage := float64(anchors) / float64(registry.Size())
	if coverage < coverageWarnRatio {
		l.logger.Warn("Low link coverage",
			logger.Float64Field("coverage", coverage),
			logger.IntField("anchors", anchors),
			logger.IntField("articles", registry.Size()),
		)
	}
	return resolved, coverage
}

// completeMarkers inserts the sentinel after article mentions the model left
// unmarked. Lines that already carry a marker or an anchor are skipped.
func (l *LinkReconciler) completeMarkers(text string, registry *URLRegistry) string {
	entries := registry.sortedEntries()
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if strings.Contains(line, Marker) || strings.Contains(line, "href=") {
			continue
		}
		loweredLine := strings.ToLower(line)
		for _, e := range entries {
			if len(e.Variation) < minVariationLen {
				break
			}
			if float64(len(e.Variation))/float64(len(e.Canonical)) < minLenRatio {
				continue
			}
			idx := strings.Index(loweredLine, strings.ToLower(e.Variation))
			if idx < 0 {
				continue
			}
			end := idx + len(e.Variation)
			lines[i] = line[:end] + " " + Marker + line[end:]
			break
		}
	}
	return strings.Join(lines, "\n")
}

// resolveMarkers replaces every sentinel with an anchor when the surrounding
// context identifies an article, or with a neutral span otherwise.
func (l *LinkReconciler) resolveMarkers(text string, registry *URLRegistry) (string, int) {
	var b strings.Builder
	anchors := 0
	linkedURLs := make(map[string]struct{})

	rest := text
	offset := 0
	for {
		idx := strings.Index(rest, Marker)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])

		absolute := offset + idx
		context := markerContext(text, absolute, len(Marker))

		if url, ok := l.resolveContext(context, registry); ok {
			fmt.Fprintf(&b, `<a href="%s" style="%s">%s</a>`, url, anchorStyle, Marker)
			if _, seen := linkedURLs[url]; !seen {
				linkedURLs[url] = struct{}{}
				anchors++
			}
		} else {
			fmt.Fprintf(&b, `<span style="%s">%s</span>`, neutralStyle, Marker)
		}

		rest = rest[idx+len(Marker):]
		offset = absolute + len(Marker)
	}
	return b.String(), anchors
}

// markerContext takes 100 characters before and 50 after the marker.
func markerContext(text string, idx, markerLen int) string {
	start := idx - 100
	if start < 0 {
		start = 0
	}
	end := idx + markerLen + 50
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func (l *LinkReconciler) resolveContext(context string, registry *URLRegistry) (string, bool) {
	lowered := strings.ToLower(context)

	// Direct variation substring wins.
	for _, e := range registry.sortedEntries() {
		if len(e.Variation) < 5 {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(e.Variation)) {
			return e.URL, true
		}
	}

	// Fall back to fuzzy title similarity over the context window.
	contextWords := meaningfulWords(lowered)
	bestScore := 0.0
	bestURL := ""
	for _, title := range registry.Titles() {
		url, _ := registry.URLFor(title)
		score := 0.6*jaccard(contextWords, meaningfulWords(title)) + 0.4*lcsRatio(context, title)
		if score > bestScore || (score == bestScore && url < bestURL) {
			bestScore = score
			bestURL = url
		}
	}
	if bestScore >= minResolveScore {
		return bestURL, true
	}
	return "", false
}
