// Package content loads blog posts from Markdown files on disk and provides
// the in-memory query operations the rest of the engine is built on.
//
// A post is a .md or .mdx file with a YAML frontmatter block between ---
// delimiters. The body below the frontmatter is kept as raw Markdown.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/eringen/inkpress/markdown"
)

// Post is the core content type loaded from disk and rendered by templates.
type Post struct {
	Title       string
	Slug        string
	Date        time.Time
	Tags        []string
	Summary     string
	Draft       bool
	Content     string // raw Markdown body
	Link        string // site-relative, e.g. /blog/my-post/
	SourcePath  string
	Words       int
	ReadingTime int // minutes
}

// frontmatter mirrors the YAML header of a post file.
type frontmatter struct {
	Title   string   `yaml:"title"`
	Slug    string   `yaml:"slug"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
	Draft   bool     `yaml:"draft"`
}

const frontmatterDelim = "---"

// dateLayouts are the accepted frontmatter date formats, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDocument parses a post file. The slug falls back to the slugified
// file stem when the frontmatter does not set one. wpm drives the reading
// time estimate; pass 0 for the default.
func ParseDocument(src []byte, sourcePath string, wpm int) (Post, error) {
	fm, body, err := splitFrontmatter(string(src))
	if err != nil {
		return Post{}, err
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return Post{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return Post{}, fmt.Errorf("missing title")
	}

	date, err := parseDate(meta.Date)
	if err != nil {
		return Post{}, err
	}

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = Slugify(fileStem(sourcePath))
	}
	if slug == "" {
		return Post{}, fmt.Errorf("cannot derive slug from %q", sourcePath)
	}

	words := CountWords(body)
	return Post{
		Title:       strings.TrimSpace(meta.Title),
		Slug:        slug,
		Date:        date,
		Tags:        normalizeTags(meta.Tags),
		Summary:     strings.TrimSpace(meta.Summary),
		Draft:       meta.Draft,
		Content:     body,
		Link:        "/blog/" + slug + "/",
		SourcePath:  sourcePath,
		Words:       words,
		ReadingTime: EstimateReadingTime(words, wpm),
	}, nil
}

// splitFrontmatter separates the YAML header from the Markdown body.
func splitFrontmatter(src string) (fm, body string, err error) {
	src = strings.TrimPrefix(src, "\ufeff")
	lines := strings.SplitAfter(src, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != frontmatterDelim {
		return "", "", fmt.Errorf("missing frontmatter")
	}
	var b strings.Builder
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == frontmatterDelim {
			return b.String(), strings.TrimLeft(strings.Join(lines[i+1:], ""), "\r\n"), nil
		}
		b.WriteString(lines[i])
	}
	return "", "", fmt.Errorf("unterminated frontmatter")
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Slugify converts a title or file stem to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dashed := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dashed = false
		default:
			if !dashed && b.Len() > 0 {
				b.WriteByte('-')
				dashed = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Problem records a file that could not be loaded as a post.
type Problem struct {
	Path string
	Err  error
}

// postGlob matches post files at any depth below the content dir.
const postGlob = "**/*.{md,mdx}"

// LoadDir loads every post under dir. Files that fail to parse, and files
// whose slug collides with an earlier file, are reported as Problems and
// skipped; the returned error covers only directory-level failures.
// Posts come back sorted by date descending, slug ascending on ties.
func LoadDir(dir string, wpm int) ([]Post, []Problem, error) {
	pattern := filepath.Join(dir, postGlob)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	var posts []Post
	var problems []Problem
	seen := make(map[string]string)
	for _, path := range matches {
		src, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, Problem{Path: path, Err: err})
			continue
		}
		post, err := ParseDocument(src, path, wpm)
		if err != nil {
			problems = append(problems, Problem{Path: path, Err: err})
			continue
		}
		if prev, ok := seen[post.Slug]; ok {
			problems = append(problems, Problem{Path: path, Err: fmt.Errorf("duplicate slug %q (also in %s)", post.Slug, prev)})
			continue
		}
		seen[post.Slug] = path
		posts = append(posts, post)
	}
	SortPosts(posts)
	return posts, problems, nil
}

// SortPosts orders posts by date descending, slug ascending on equal dates.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// PlainText returns the post body stripped of Markdown syntax.
func (p Post) PlainText() string {
	return markdown.PlainText(p.Content)
}
