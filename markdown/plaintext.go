package markdown

import (
	"regexp"
	"strings"
)

var reHeadingMarks = regexp.MustCompile(`^#{1,6}\s+`)

// PlainText strips Markdown syntax from md and returns readable prose.
// Fenced code blocks are dropped entirely, link and image labels survive
// while their URLs do not, and structural markers (headings, lists,
// blockquotes, tables, rules) are removed. Lines come back separated by
// single newlines with no blank runs, which keeps the result usable both
// for word counting and as feed text.
func PlainText(md string) string {
	var out []string
	inFence := false
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "|") {
			if isTableSeparator(line) {
				continue
			}
			line = strings.Join(tableCells(line), " ")
		}
		line = reHeadingMarks.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, "> ")
		line = strings.TrimPrefix(line, "- ")
		line = reOrderedList.ReplaceAllString(line, "")
		line = stripInline(line)
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// stripInline removes inline Markdown from a single line of text. Only
// paired emphasis markers are stripped, so identifiers like snake_case
// survive intact.
func stripInline(line string) string {
	line = reImg.ReplaceAllString(line, "$1")
	line = reLink.ReplaceAllString(line, "$1")
	line = reInlineCode.ReplaceAllString(line, "$1")
	line = reBold.ReplaceAllString(line, "$1")
	line = reBoldUnderscore.ReplaceAllString(line, "$1")
	line = reItalic.ReplaceAllString(line, "$1")
	line = reItalicUnderscore.ReplaceAllString(line, "$1")
	return line
}
