package briefing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileResolvesMarkerNextToTitle(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Apple announces satellite messaging for iPhone", "https://example.com/apple")

	text := "Big day in tech: Apple announces satellite messaging for iPhone " + Marker + " and more."
	out, coverage := r.Reconcile(text, registry)

	assert.Contains(t, out, `<a href="https://example.com/apple"`)
	assert.Contains(t, out, Marker)
	assert.NotContains(t, out, "<span")
	assert.Equal(t, 1.0, coverage)
}

func TestReconcileCompletesMissingMarker(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Central bank holds interest rates steady", "https://example.com/rates")

	// The model mentioned the article but forgot the sentinel.
	text := "Meanwhile the Central bank holds interest rates steady according to reports."
	out, coverage := r.Reconcile(text, registry)

	assert.Contains(t, out, `<a href="https://example.com/rates"`)
	assert.Equal(t, 1.0, coverage)
}

func TestReconcileUnresolvableMarkerBecomesNeutralSpan(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Completely unrelated story about llamas and alpacas", "https://example.com/llamas")

	text := "qqq zzz xxx " + Marker + " vvv www"
	out, coverage := r.Reconcile(text, registry)

	assert.Contains(t, out, `<span style="`+neutralStyle+`">`+Marker+`</span>`)
	assert.NotContains(t, out, "href=")
	assert.Equal(t, 0.0, coverage)
}

func TestReconcileEmptyRegistryPassthrough(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))

	text := "No registry here " + Marker
	out, coverage := r.Reconcile(text, NewURLRegistry())
	assert.Equal(t, text, out)
	assert.Equal(t, 0.0, coverage)
}

func TestReconcileCountsDistinctURLsOnce(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Volcano eruption disrupts air travel across Europe", "https://example.com/volcano")
	registry.Register("Rail strike enters its second week of disruption", "https://example.com/strike")

	text := "Volcano eruption disrupts air travel across Europe " + Marker + " continues. " +
		"Later, Volcano eruption disrupts air travel across Europe " + Marker + " again."
	out, coverage := r.Reconcile(text, registry)

	// Two anchors in the text, one distinct URL out of two registered.
	assert.Equal(t, 2, strings.Count(out, `<a href="https://example.com/volcano"`))
	assert.InDelta(t, 0.5, coverage, 1e-9)
}

func TestReconcileDeterministic(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Quarterly earnings beat analyst expectations again", "https://example.com/earnings")

	text := "Markets rallied after Quarterly earnings beat analyst expectations again " + Marker + "."
	out1, cov1 := r.Reconcile(text, registry)
	out2, cov2 := r.Reconcile(text, registry)
	assert.Equal(t, out1, out2)
	assert.Equal(t, cov1, cov2)
}

func TestCompleteMarkersSkipsLinesWithMarkerOrAnchor(t *testing.T) {
	r := NewLinkReconciler(testLogger(t))
	registry := NewURLRegistry()
	registry.Register("Historic peace agreement signed at the summit", "https://example.com/peace")

	already := "Historic peace agreement signed at the summit " + Marker + " today"
	withAnchor := `see <a href="https://x">Historic peace agreement signed at the summit</a>`

	out := r.completeMarkers(already+"\n"+withAnchor, registry)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 1, strings.Count(lines[0], Marker))
	assert.NotContains(t, lines[1], Marker)
}

func TestMarkerContextWindow(t *testing.T) {
	text := strings.Repeat("a", 200) + Marker + strings.Repeat("b", 100)
	idx := strings.Index(text, Marker)

	ctx := markerContext(text, idx, len(Marker))
	assert.Equal(t, 100+len(Marker)+50, len(ctx))
	assert.True(t, strings.HasPrefix(ctx, "a"))
	assert.True(t, strings.HasSuffix(ctx, "b"))
}
