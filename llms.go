package inkpress

import (
	"strconv"
	"strings"

	"github.com/eringen/inkpress/content"
)

// LlmsTxt builds the llms.txt document: a compact, Markdown-shaped index
// of the site for LLM crawlers. Posts are listed newest-first with one-line
// summaries and ISO dates.
func LlmsTxt(cfg SiteConfig, posts []content.Post) string {
	var b strings.Builder
	writeLlmsHeader(&b, cfg)

	b.WriteString("## Posts\n\n")
	for _, p := range posts {
		b.WriteString("- [" + escapeMarkdownLabel(p.Title) + "](" + PostURL(cfg.URL, p) + ")")
		if s := oneLine(p.Summary); s != "" {
			b.WriteString(": " + s)
		}
		b.WriteString(" (" + p.Date.Format("2006-01-02") + ")\n")
	}

	b.WriteString("\n## Optional\n\n")
	b.WriteString("- [Full post contents](" + strings.TrimSuffix(cfg.URL, "/") + "/llms-full.txt)\n")
	b.WriteString("- [RSS feed](" + strings.TrimSuffix(cfg.URL, "/") + "/feed.xml)\n")
	return b.String()
}

// LlmsFullTxt builds the llms-full.txt document: the llms.txt header
// followed by every published post in full, raw Markdown included,
// separated by horizontal rules.
func LlmsFullTxt(cfg SiteConfig, posts []content.Post) string {
	var b strings.Builder
	writeLlmsHeader(&b, cfg)

	for i, p := range posts {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		b.WriteString("# " + p.Title + "\n\n")
		b.WriteString("URL: " + PostURL(cfg.URL, p) + "\n")
		b.WriteString("Published: " + p.Date.Format("2006-01-02") + "\n")
		if len(p.Tags) > 0 {
			b.WriteString("Tags: " + strings.Join(p.Tags, ", ") + "\n")
		}
		b.WriteString("Reading time: " + readingTimeLabel(p.ReadingTime) + "\n\n")
		b.WriteString(strings.TrimSpace(p.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// writeLlmsHeader writes the shared site preamble of both documents.
func writeLlmsHeader(b *strings.Builder, cfg SiteConfig) {
	b.WriteString("# " + cfg.Name + "\n\n")
	if cfg.Description != "" {
		b.WriteString("> " + oneLine(cfg.Description) + "\n\n")
	}
	if cfg.Author != "" {
		b.WriteString("Author: " + cfg.Author + "\n")
	}
	if cfg.Locale != "" {
		b.WriteString("Language: " + cfg.Locale + "\n")
	}
	if cfg.Author != "" || cfg.Locale != "" {
		b.WriteString("\n")
	}
}

// escapeMarkdownLabel escapes square brackets so titles stay valid inside
// Markdown link labels.
func escapeMarkdownLabel(s string) string {
	s = strings.ReplaceAll(s, "[", `\[`)
	return strings.ReplaceAll(s, "]", `\]`)
}

// oneLine collapses a possibly multi-line string to a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func readingTimeLabel(minutes int) string {
	if minutes <= 1 {
		return "1 min"
	}
	return strconv.Itoa(minutes) + " min"
}
