package inkpress

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.Name != "Blog" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ContentDir != "content" {
		t.Errorf("ContentDir = %q", cfg.ContentDir)
	}
	if cfg.WordsPerMinute != 200 {
		t.Errorf("WordsPerMinute = %d", cfg.WordsPerMinute)
	}
	if cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("WatchDebounce = %v", cfg.WatchDebounce)
	}
	if cfg.AnalyticsRetainDays != 365 {
		t.Errorf("AnalyticsRetainDays = %d", cfg.AnalyticsRetainDays)
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := SiteConfig{Name: "Custom", Addr: ":8080", WordsPerMinute: 150}
	cfg.setDefaults()
	if cfg.Name != "Custom" || cfg.Addr != ":8080" || cfg.WordsPerMinute != 150 {
		t.Errorf("explicit values were overwritten: %+v", cfg)
	}
}

func TestLoadSiteConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	src := `name: "Test Site"
url: "https://test.example"
description: "A test"
locale: "de"
content_dir: "posts"
words_per_minute: 180
analytics_enabled: true
analytics_retain_days: 30
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if cfg.Name != "Test Site" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.URL != "https://test.example" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Locale != "de" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if cfg.ContentDir != "posts" {
		t.Errorf("ContentDir = %q", cfg.ContentDir)
	}
	if cfg.WordsPerMinute != 180 {
		t.Errorf("WordsPerMinute = %d", cfg.WordsPerMinute)
	}
	if !cfg.AnalyticsEnabled || cfg.AnalyticsRetainDays != 30 {
		t.Errorf("analytics = %v / %d", cfg.AnalyticsEnabled, cfg.AnalyticsRetainDays)
	}
}

func TestLoadSiteConfigMissingFile(t *testing.T) {
	cfg, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("missing file should return a zero config, got %+v", cfg)
	}
}

func TestLoadSiteConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(path, []byte("name: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSiteConfig(path); err == nil {
		t.Fatal("invalid YAML should error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SITE_NAME", "Env Site")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("ADMIN_SESSION_SECRET", "sssh")

	cfg := SiteConfig{Name: "File Site"}
	cfg.applyEnv()

	if cfg.Name != "Env Site" {
		t.Errorf("env should win over the file: Name = %q", cfg.Name)
	}
	if cfg.AdminPassword != "hunter2" {
		t.Errorf("AdminPassword = %q", cfg.AdminPassword)
	}
	if cfg.SessionSecret != "sssh" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}
}

func TestSecretsNeverFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	// Keys present in the file must not populate env-only fields.
	src := "name: X\nadmin_password: leaked\nsession_secret: leaked\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if cfg.AdminPassword != "" || cfg.SessionSecret != "" {
		t.Errorf("secrets leaked from YAML: %+v", cfg)
	}
}
