package inkpress

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an inkpress site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for feeds and meta tags
	Author      string `yaml:"author"`      // Author name for feeds and JSON-LD
	Locale      string `yaml:"locale"`      // BCP 47 language tag (default "en")

	Addr       string `yaml:"addr"`        // Listen address (default ":3000")
	ContentDir string `yaml:"content_dir"` // Markdown posts directory (default "content")
	StaticDir  string `yaml:"static_dir"`  // User static assets (default "public")

	WordsPerMinute int `yaml:"words_per_minute"` // Reading speed (default 200)

	WatchContent  bool          `yaml:"watch_content"` // Reload posts on file changes
	WatchDebounce time.Duration `yaml:"-"`             // Settle window for the watcher (default 500ms)

	AnalyticsEnabled      bool   `yaml:"analytics_enabled"`
	AnalyticsDatabasePath string `yaml:"analytics_db_path"` // SQLite path (default "data/analytics.db")
	AnalyticsRetainDays   int    `yaml:"analytics_retain_days"`

	AdminPassword string `yaml:"-"` // Required when analytics is enabled; from env, never the site file
	SessionSecret string `yaml:"-"` // Required when analytics is enabled; from env, never the site file
	CookieSecure  bool   `yaml:"cookie_secure"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.WordsPerMinute == 0 {
		c.WordsPerMinute = 200
	}
	if c.WatchDebounce == 0 {
		c.WatchDebounce = 500 * time.Millisecond
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetainDays == 0 {
		c.AnalyticsRetainDays = 365
	}
}

// LoadSiteConfig reads a site.yaml file. A missing file returns a zero
// config with no error so defaults apply; secrets come from the environment
// either way.
func LoadSiteConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("inkpress: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the config. Env wins over
// the site file for values, and secrets only ever come from env.
func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("SITE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("SITE_DESCRIPTION"); v != "" {
		c.Description = v
	}
	if v := os.Getenv("SITE_AUTHOR"); v != "" {
		c.Author = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("ADMIN_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
