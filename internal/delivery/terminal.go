package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang-news-briefer/internal/briefing"
)

// TerminalDeliverer prints the plain-text briefing to stdout.
type TerminalDeliverer struct {
	out io.Writer
}

// NewTerminalDeliverer creates a terminal writer. out defaults to stdout.
func NewTerminalDeliverer(out io.Writer) *TerminalDeliverer {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDeliverer{out: out}
}

func (t *TerminalDeliverer) Name() string { return "terminal" }

func (t *TerminalDeliverer) Deliver(_ context.Context, b *briefing.Briefing) error {
	divider := strings.Repeat("=", 70)
	if _, err := fmt.Fprintf(t.out, "\n%s\n%s\n%s\n\n%s\n", divider, b.Subject(), divider, b.PlainText); err != nil {
		return fmt.Errorf("failed to write briefing to terminal: %w", err)
	}
	if !b.Failed {
		fmt.Fprintf(t.out, "\n%s\nSources: %d articles, %d social posts | link coverage %.0f%%\n",
			divider, b.ArticleCount, b.SocialCount, b.LinkCoverage*100)
	}
	return nil
}
