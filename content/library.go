package content

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("content: post not found")

// Library holds the loaded post collection in memory. All query methods
// operate on the snapshot taken by the last Reload, so page handlers never
// touch the filesystem.
type Library struct {
	mu   sync.RWMutex
	dir  string
	wpm  int
	live []Post // published posts, sorted
	all  []Post // everything including drafts, sorted
	tags []string
}

// NewLibrary creates a Library over the given content directory. Call Reload
// before querying. wpm is the reading speed for estimates; 0 means default.
func NewLibrary(dir string, wpm int) *Library {
	return &Library{dir: dir, wpm: wpm}
}

// Dir returns the content directory the library loads from.
func (l *Library) Dir() string {
	return l.dir
}

// Reload re-reads the content directory and swaps in the new snapshot.
// Per-file load problems are returned for logging; they do not fail the
// reload.
func (l *Library) Reload() ([]Problem, error) {
	all, problems, err := LoadDir(l.dir, l.wpm)
	if err != nil {
		return problems, err
	}

	var live []Post
	tagSet := make(map[string]struct{})
	for _, p := range all {
		if p.Draft {
			continue
		}
		live = append(live, p)
		for _, t := range p.Tags {
			tagSet[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	l.mu.Lock()
	l.all = all
	l.live = live
	l.tags = tags
	l.mu.Unlock()
	return problems, nil
}

// Posts returns published posts, optionally filtered by tag
// (case-insensitive). The slice is shared; callers must not mutate it.
func (l *Library) Posts(tag string) []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if tag == "" {
		return l.live
	}
	needle := strings.ToLower(strings.TrimSpace(tag))
	var filtered []Post
	for _, p := range l.live {
		for _, t := range p.Tags {
			if t == needle {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

// All returns every loaded post including drafts.
func (l *Library) All() []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.all
}

// Get returns a single published post by slug.
func (l *Library) Get(slug string) (Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.live {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// Tags returns the sorted, deduplicated tags of all published posts.
func (l *Library) Tags() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tags
}

// Latest returns the n most recent published posts. n larger than the
// collection returns everything; n <= 0 returns nothing.
func (l *Library) Latest(n int) []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(l.live) {
		n = len(l.live)
	}
	return l.live[:n]
}

// Related returns published posts sharing at least one tag with current,
// excluding current itself, in feed order. n <= 0 means no limit.
func (l *Library) Related(current Post, n int) []Post {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[t] = struct{}{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var related []Post
	for _, p := range l.live {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
		if n > 0 && len(related) == n {
			break
		}
	}
	return related
}
