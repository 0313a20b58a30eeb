package inkpress

import (
	"strings"
	"testing"
	"time"

	"github.com/eringen/inkpress/content"
)

func feedFixture() (SiteConfig, []content.Post) {
	cfg := SiteConfig{
		Name:        "My Blog",
		URL:         "https://example.com",
		Description: "Notes on Go\nand the web",
		Author:      "Jane Doe",
		Locale:      "en",
	}
	posts := []content.Post{
		{
			Title:       "Second [Draft] Post",
			Slug:        "second-post",
			Summary:     "The newer one.",
			Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Tags:        []string{"go"},
			Content:     "Body of the **second** post.",
			ReadingTime: 1,
		},
		{
			Title:       "First Post",
			Slug:        "first-post",
			Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Content:     "Body of the first post.",
			ReadingTime: 3,
		},
	}
	return cfg, posts
}

func TestLlmsTxt(t *testing.T) {
	cfg, posts := feedFixture()
	got := LlmsTxt(cfg, posts)

	if !strings.HasPrefix(got, "# My Blog\n") {
		t.Errorf("llms.txt should open with the site name: %q", got)
	}
	if !strings.Contains(got, "> Notes on Go and the web\n") {
		t.Errorf("description should be one line: %q", got)
	}
	if !strings.Contains(got, "Author: Jane Doe\n") {
		t.Errorf("missing author line: %q", got)
	}
	if !strings.Contains(got, "## Posts\n") {
		t.Errorf("missing posts section: %q", got)
	}
	if !strings.Contains(got, `- [Second \[Draft\] Post](https://example.com/blog/second-post/): The newer one. (2024-06-01)`) {
		t.Errorf("post entry malformed: %q", got)
	}
	// No summary means no colon segment.
	if !strings.Contains(got, "- [First Post](https://example.com/blog/first-post/) (2024-05-01)") {
		t.Errorf("summaryless entry malformed: %q", got)
	}
	if !strings.Contains(got, "https://example.com/llms-full.txt") {
		t.Errorf("missing llms-full.txt pointer: %q", got)
	}
	if !strings.Contains(got, "https://example.com/feed.xml") {
		t.Errorf("missing feed pointer: %q", got)
	}
}

func TestLlmsTxtOrderFollowsInput(t *testing.T) {
	cfg, posts := feedFixture()
	got := LlmsTxt(cfg, posts)
	second := strings.Index(got, "second-post")
	first := strings.Index(got, "first-post")
	if second < 0 || first < 0 || second > first {
		t.Errorf("posts should keep feed order (newest first): %q", got)
	}
}

func TestLlmsFullTxt(t *testing.T) {
	cfg, posts := feedFixture()
	got := LlmsFullTxt(cfg, posts)

	if !strings.HasPrefix(got, "# My Blog\n") {
		t.Errorf("llms-full.txt should open with the site name: %q", got)
	}
	if !strings.Contains(got, "# Second [Draft] Post\n") {
		t.Errorf("post heading should be unescaped: %q", got)
	}
	if !strings.Contains(got, "URL: https://example.com/blog/second-post/\n") {
		t.Errorf("missing URL line: %q", got)
	}
	if !strings.Contains(got, "Published: 2024-06-01\n") {
		t.Errorf("missing published line: %q", got)
	}
	if !strings.Contains(got, "Tags: go\n") {
		t.Errorf("missing tags line: %q", got)
	}
	if !strings.Contains(got, "Reading time: 3 min\n") {
		t.Errorf("missing reading time line: %q", got)
	}
	if !strings.Contains(got, "Body of the **second** post.") {
		t.Errorf("post body should be raw Markdown: %q", got)
	}
	if !strings.Contains(got, "\n---\n") {
		t.Errorf("posts should be separated by rules: %q", got)
	}
}

func TestLlmsFullTxtNoTagsNoTagLine(t *testing.T) {
	cfg, posts := feedFixture()
	got := LlmsFullTxt(cfg, posts[1:]) // only the untagged post
	if strings.Contains(got, "Tags:") {
		t.Errorf("untagged post should omit the tags line: %q", got)
	}
}
