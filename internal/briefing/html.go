package briefing

import (
	"fmt"
	"strings"
)

// RenderHTML wraps reconciled briefing text in a self-contained inline-styled
// document suitable for email clients. No CSS classes, no external assets.
func RenderHTML(b *Briefing, bodyHTML string) string {
	var doc strings.Builder

	doc.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"></head>\n")
	doc.WriteString(`<body style="margin: 0; padding: 0; background-color: #f4f4f4; font-family: Georgia, 'Times New Roman', serif;">`)
	doc.WriteString("\n")

	doc.WriteString(`<div style="max-width: 680px; margin: 0 auto; background-color: #ffffff;">`)
	doc.WriteString("\n")

	// Header
	doc.WriteString(`<div style="background-color: #1a1a2e; color: #ffffff; padding: 24px 32px;">`)
	fmt.Fprintf(&doc, `<h1 style="margin: 0; font-size: 22px; font-weight: normal;">%s</h1>`, htmlEscape(b.Subject()))
	fmt.Fprintf(&doc, `<p style="margin: 8px 0 0; font-size: 13px; color: #b8b8d0;">%s briefing · generated %s</p>`,
		htmlEscape(string(b.Style)), b.GeneratedAt.Format("15:04"))
	doc.WriteString("</div>\n")

	// Body
	doc.WriteString(`<div style="padding: 28px 32px; font-size: 15px; line-height: 1.7; color: #2a2a2a;">`)
	doc.WriteString("\n")
	for _, para := range splitParagraphs(bodyHTML) {
		fmt.Fprintf(&doc, `<p style="margin: 0 0 16px;">%s</p>`, para)
		doc.WriteString("\n")
	}
	doc.WriteString("</div>\n")

	// Footer
	doc.WriteString(`<div style="padding: 18px 32px; background-color: #fafafa; border-top: 1px solid #e0e0e0; font-size: 12px; color: #888888;">`)
	fmt.Fprintf(&doc, "Sources: %d articles, %d social posts", b.ArticleCount, b.SocialCount)
	if b.TrendCount > 0 {
		fmt.Fprintf(&doc, ", %d trending topics", b.TrendCount)
	}
	if b.ModelUsed != "" {
		fmt.Fprintf(&doc, " · summarised by %s", htmlEscape(b.ModelUsed))
	}
	doc.WriteString("</div>\n")

	doc.WriteString("</div>\n</body>\n</html>\n")
	return doc.String()
}

// splitParagraphs breaks reconciled text on blank lines. Anchor tags inside
// the text are preserved as-is.
func splitParagraphs(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(block, "\n", "<br>"))
	}
	return out
}

// htmlEscape escapes text destined for attribute-free element content.
func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
