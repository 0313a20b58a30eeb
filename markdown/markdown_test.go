package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func render(t *testing.T, md string) string {
	t.Helper()
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text *italic* more", "text <em>italic</em> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineNested(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"__bold _italic_ text__", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineBoldNotMatchedAsItalic(t *testing.T) {
	input := "**bold**"
	got := FormatInline(input, new(int))
	if strings.Contains(got, "<em>") {
		t.Errorf("FormatInline(%q) = %q, should not contain <em>", input, got)
	}
}

func TestFormatInlineInlineCode(t *testing.T) {
	got := FormatInline("use `go test` here", new(int))
	want := "use <code>go test</code> here"
	if got != want {
		t.Errorf("FormatInline = %q, want %q", got, want)
	}
}

func TestFormatInlineCodeNotFormatted(t *testing.T) {
	got := FormatInline("`**not bold**`", new(int))
	if strings.Contains(got, "<strong>") {
		t.Errorf("emphasis inside inline code should not be formatted: %q", got)
	}
	if !strings.Contains(got, "<code>**not bold**</code>") {
		t.Errorf("inline code content should survive verbatim: %q", got)
	}
}

func TestFormatInlineLink(t *testing.T) {
	got := FormatInline("[site](https://example.com)", new(int))
	want := `<a href="https://example.com">site</a>`
	if got != want {
		t.Errorf("FormatInline = %q, want %q", got, want)
	}
}

func TestFormatInlineLinkNewTab(t *testing.T) {
	got := FormatInline("[site](https://example.com)^", new(int))
	if !strings.Contains(got, `target="_blank"`) || !strings.Contains(got, `rel="noopener noreferrer"`) {
		t.Errorf("caret link should open in a new tab: %q", got)
	}
}

func TestFormatInlineLinkUnsafeScheme(t *testing.T) {
	got := FormatInline("[click](javascript:alert(1))", new(int))
	if strings.Contains(got, "javascript") {
		t.Errorf("unsafe scheme should be dropped: %q", got)
	}
	if !strings.Contains(got, "click") {
		t.Errorf("link text should survive: %q", got)
	}
}

func TestFormatInlineImages(t *testing.T) {
	count := 0
	first := FormatInline("![alt one](/a.jpg)", &count)
	if !strings.Contains(first, `fetchpriority="high"`) {
		t.Errorf("first image should be eager: %q", first)
	}
	second := FormatInline("![alt two](/b.jpg)", &count)
	if !strings.Contains(second, `loading="lazy"`) {
		t.Errorf("subsequent images should be lazy: %q", second)
	}
}

func TestFormatInlineEscapesHTML(t *testing.T) {
	got := FormatInline("<script>alert(1)</script>", new(int))
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML should be escaped: %q", got)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# One", "<h1>One</h1>"},
		{"## Two", "<h2>Two</h2>"},
		{"### Three", "<h3>Three</h3>"},
		{"#### Four", "<h4>Four</h4>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderParagraph(t *testing.T) {
	got := render(t, "hello world")
	if !strings.HasPrefix(got, "<p>") || !strings.HasSuffix(got, "</p>") {
		t.Errorf("Render paragraph = %q", got)
	}
	if !strings.Contains(got, "hello world") {
		t.Errorf("Render paragraph missing text: %q", got)
	}
}

func TestRenderParagraphJoinsLines(t *testing.T) {
	got := render(t, "line one\nline two")
	if strings.Count(got, "<p>") != 1 {
		t.Errorf("adjacent lines should share a paragraph: %q", got)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render(t, "```\ncode here\n```")
	if !strings.Contains(got, "<pre><code>") {
		t.Errorf("code block missing pre/code: %q", got)
	}
	if !strings.Contains(got, "code here") {
		t.Errorf("code block missing content: %q", got)
	}
	if strings.Contains(got, "highlight-lang") {
		t.Errorf("bare fence should have no language badge: %q", got)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfmt.Println(\"hi\")\n```")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should carry language class: %q", got)
	}
	if !strings.Contains(got, `<div class="highlight"><span class="highlight-lang">go</span>`) {
		t.Errorf("code block should carry language badge: %q", got)
	}
	if !strings.Contains(got, "</div>") {
		t.Errorf("highlight wrapper should be closed: %q", got)
	}
}

func TestRenderCodeBlockEscapesContent(t *testing.T) {
	got := render(t, "```\n<b>raw</b> **not bold**\n```")
	if strings.Contains(got, "<b>") {
		t.Errorf("code content should be escaped: %q", got)
	}
	if strings.Contains(got, "<strong>") {
		t.Errorf("code content should not be formatted: %q", got)
	}
}

func TestRenderUnorderedList(t *testing.T) {
	got := render(t, "- one\n- two")
	want := "<ul><li>one</li><li>two</li></ul>"
	if got != want {
		t.Errorf("Render list = %q, want %q", got, want)
	}
}

func TestRenderOrderedList(t *testing.T) {
	got := render(t, "1. first\n2. second")
	want := "<ol><li>first</li><li>second</li></ol>"
	if got != want {
		t.Errorf("Render ordered list = %q, want %q", got, want)
	}
}

func TestRenderBlockquote(t *testing.T) {
	got := render(t, "> wise words")
	want := "<blockquote>wise words</blockquote>"
	if got != want {
		t.Errorf("Render blockquote = %q, want %q", got, want)
	}
}

func TestRenderHorizontalRule(t *testing.T) {
	got := render(t, "---")
	if got != "<hr/>" {
		t.Errorf("Render rule = %q, want <hr/>", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| Name | Count |\n| --- | --- |\n| foo | 3 |")
	for _, want := range []string{
		"<table>", "<thead><tr><th>Name</th><th>Count</th></tr></thead>",
		"<tbody>", "<tr><td>foo</td><td>3</td></tr>", "</tbody></table>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render table missing %q: %q", want, got)
		}
	}
}

func TestRenderBlockTransitions(t *testing.T) {
	got := render(t, "para\n\n- item\n\n> quote\n\n# head")
	for _, want := range []string{"</p>", "</ul>", "</blockquote>", "<h1>head</h1>"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render transitions missing %q: %q", want, got)
		}
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com/a?b=c", "http://example.com/a?b=c"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"tel:+123456", "tel:+123456"},
		{"/local/path", "/local/path"},
		{"#anchor", "#anchor"},
		{"javascript:alert(1)", ""},
		{"data:text/html,x", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
