package inkpress

import "github.com/eringen/inkpress/content"

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> of
// user templates.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// HomeMeta builds the PageMeta for the home page.
func HomeMeta(cfg SiteConfig) PageMeta {
	return PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
	}
}

// PostMeta builds the PageMeta for a single post page. The description
// falls back to the site description when the post has no summary.
func PostMeta(cfg SiteConfig, p content.Post) PageMeta {
	desc := p.Summary
	if desc == "" {
		desc = cfg.Description
	}
	return PageMeta{
		Title:       p.Title + " — " + cfg.Name,
		Description: desc,
		URL:         PostURL(cfg.URL, p),
		OGType:      "article",
	}
}
