package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const samplePost = `---
title: "Hello World"
date: 2024-03-10
tags:
  - Go
  - web
summary: "A first post."
---

Some **body** text with enough words to count.
`

func TestParseDocument(t *testing.T) {
	post, err := ParseDocument([]byte(samplePost), "content/hello-world.md", 0)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if post.Title != "Hello World" {
		t.Errorf("Title = %q", post.Title)
	}
	if post.Slug != "hello-world" {
		t.Errorf("Slug = %q", post.Slug)
	}
	if post.Link != "/blog/hello-world/" {
		t.Errorf("Link = %q", post.Link)
	}
	if want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC); !post.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", post.Date, want)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" || post.Tags[1] != "web" {
		t.Errorf("Tags = %v, want lowercased [go web]", post.Tags)
	}
	if post.Summary != "A first post." {
		t.Errorf("Summary = %q", post.Summary)
	}
	if post.Draft {
		t.Error("Draft should default to false")
	}
	if !strings.Contains(post.Content, "**body**") {
		t.Errorf("Content should keep raw Markdown: %q", post.Content)
	}
	if post.Words == 0 || post.ReadingTime < 1 {
		t.Errorf("Words = %d, ReadingTime = %d", post.Words, post.ReadingTime)
	}
}

func TestParseDocumentExplicitSlug(t *testing.T) {
	src := "---\ntitle: T\nslug: custom-slug\ndate: 2024-01-01\n---\nbody\n"
	post, err := ParseDocument([]byte(src), "content/whatever.md", 0)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if post.Slug != "custom-slug" {
		t.Errorf("Slug = %q, want custom-slug", post.Slug)
	}
}

func TestParseDocumentRFC3339Date(t *testing.T) {
	src := "---\ntitle: T\ndate: 2024-06-01T15:04:05Z\n---\nbody\n"
	post, err := ParseDocument([]byte(src), "content/t.md", 0)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if post.Date.Hour() != 15 {
		t.Errorf("Date = %v, want 15:04:05", post.Date)
	}
}

func TestParseDocumentBOM(t *testing.T) {
	src := "\ufeff---\ntitle: T\ndate: 2024-01-01\n---\nbody\n"
	if _, err := ParseDocument([]byte(src), "content/t.md", 0); err != nil {
		t.Fatalf("ParseDocument with BOM: %v", err)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no frontmatter", "just a body\n"},
		{"unterminated", "---\ntitle: T\ndate: 2024-01-01\nbody\n"},
		{"missing title", "---\ndate: 2024-01-01\n---\nbody\n"},
		{"missing date", "---\ntitle: T\n---\nbody\n"},
		{"bad date", "---\ntitle: T\ndate: yesterday\n---\nbody\n"},
		{"bad yaml", "---\ntitle: [\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(tt.src), "content/t.md", 0); err == nil {
				t.Errorf("ParseDocument(%s) should fail", tt.name)
			}
		})
	}
}

func TestSplitFrontmatterCRLF(t *testing.T) {
	src := "---\r\ntitle: T\r\ndate: 2024-01-01\r\n---\r\nbody\r\n"
	fm, body, err := splitFrontmatter(src)
	if err != nil {
		t.Fatalf("splitFrontmatter: %v", err)
	}
	if !strings.Contains(fm, "title: T") {
		t.Errorf("fm = %q", fm)
	}
	if !strings.HasPrefix(body, "body") {
		t.Errorf("body = %q", body)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.24 Released!", "go-1-24-released"},
		{"  spaces  ", "spaces"},
		{"already-a-slug", "already-a-slug"},
		{"Ünïcödé Tïtle", "n-c-d-t-tle"},
		{"trailing---", "trailing"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func writePost(t *testing.T, dir, name, title, date string, extra string) {
	t.Helper()
	src := "---\ntitle: \"" + title + "\"\ndate: " + date + "\n" + extra + "---\nbody text here\n"
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "first.md", "First", "2024-01-01", "")
	writePost(t, dir, "second.mdx", "Second", "2024-02-01", "")
	writePost(t, dir, "nested/third.md", "Third", "2024-03-01", "")
	// Not a post file.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatal(err)
	}

	posts, problems, err := LoadDir(dir, 0)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("problems = %v", problems)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	// Newest first.
	if posts[0].Slug != "third" || posts[1].Slug != "second" || posts[2].Slug != "first" {
		t.Errorf("order = %s, %s, %s", posts[0].Slug, posts[1].Slug, posts[2].Slug)
	}
}

func TestLoadDirReportsProblems(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.md", "Good", "2024-01-01", "")
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0o644); err != nil {
		t.Fatal(err)
	}

	posts, problems, err := LoadDir(dir, 0)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, want 1", len(posts))
	}
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}
	if !strings.HasSuffix(problems[0].Path, "broken.md") {
		t.Errorf("problem path = %q", problems[0].Path)
	}
}

func TestLoadDirDuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "Same", "2024-01-01", "slug: same\n")
	writePost(t, dir, "b.md", "Same Again", "2024-02-01", "slug: same\n")

	posts, problems, err := LoadDir(dir, 0)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, want 1", len(posts))
	}
	if len(problems) != 1 || !strings.Contains(problems[0].Err.Error(), "duplicate slug") {
		t.Errorf("problems = %v", problems)
	}
}

func TestSortPostsTieBreak(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	posts := []Post{
		{Slug: "zebra", Date: d},
		{Slug: "apple", Date: d},
		{Slug: "older", Date: d.AddDate(0, 0, -1)},
	}
	SortPosts(posts)
	if posts[0].Slug != "apple" || posts[1].Slug != "zebra" || posts[2].Slug != "older" {
		t.Errorf("order = %s, %s, %s", posts[0].Slug, posts[1].Slug, posts[2].Slug)
	}
}
