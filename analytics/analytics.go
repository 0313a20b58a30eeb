// Package analytics provides privacy-first website analytics: salted
// hashes instead of IP addresses, no cookies, and separate accounting for
// human visitors, classic crawlers, and the AI crawler generation.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// salt holds the per-installation random salt for IP hashing, protected by sync.Once.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

func getSalt() string {
	return salt.value
}

// Visit represents a single human page view.
type Visit struct {
	ID          int64     `json:"-"`
	VisitorID   string    `json:"visitor_id"` // anonymous fingerprint hash
	SessionID   string    `json:"session_id"`
	IPHash      string    `json:"-"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"` // desktop, mobile, tablet
	Path        string    `json:"path"`
	Referrer    string    `json:"referrer"`
	ScreenSize  string    `json:"screen_size"`
	Timestamp   time.Time `json:"timestamp"`
	DurationSec int       `json:"duration_sec"`
}

// BotVisit represents a single bot/crawler page view.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	AICrawler bool      `json:"ai_crawler"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds aggregated visitor data.
type Stats struct {
	Period         string            `json:"period"`
	UniqueVisitors int               `json:"unique_visitors"`
	TotalViews     int               `json:"total_views"`
	AvgDuration    int               `json:"avg_duration_sec"`
	TopPages       []PageStat        `json:"top_pages"`
	LatestPages    []LatestPageVisit `json:"latest_pages"`
	BrowserStats   []DimensionStat   `json:"browsers"`
	OSStats        []DimensionStat   `json:"os"`
	DeviceStats    []DimensionStat   `json:"devices"`
	ReferrerStats  []DimensionStat   `json:"referrers"`
	DailyViews     []DailyView       `json:"daily_views"`
}

// BotStats holds aggregated crawler data. AICrawlers is the subset of
// TopBots identified as LLM-era crawlers; serving llms.txt and watching
// this number is how you know anyone reads it.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	AIVisits    int             `json:"ai_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	AICrawlers  []DimensionStat `json:"ai_crawlers"`
	TopPages    []PageStat      `json:"top_pages"`
	DailyVisits []DailyView     `json:"daily_visits"`
}

// PageStat represents page view counts.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// LatestPageVisit represents a single recent page visit.
type LatestPageVisit struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Browser   string `json:"browser"`
}

// DimensionStat represents a dimension breakdown (browser, OS, bot name).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView represents views per day (or hour/month depending on period).
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// HashIP creates a salted SHA-256 hash of an IP address.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GenerateVisitorID creates a salted visitor ID from IP and User-Agent.
func GenerateVisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GenerateSessionID creates a session ID from visitor identity and date,
// so a returning visitor gets a fresh session each day without any cookie.
func GenerateSessionID(visitorID string) string {
	day := time.Now().UTC().Format("2006-01-02")
	h := sha256.New()
	h.Write([]byte(visitorID + "|" + day))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// Order matters: more specific patterns before generic ones.
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android before Linux since Android UAs contain "linux".
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile"; check tablet first.
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

// aiCrawlers maps User-Agent substrings of LLM-era crawlers to display
// names. These are the agents llms.txt is written for.
var aiCrawlers = map[string]string{
	"gptbot":             "GPTBot",
	"oai-searchbot":      "OpenAI SearchBot",
	"chatgpt-user":       "ChatGPT-User",
	"claudebot":          "ClaudeBot",
	"claude-web":         "Claude-Web",
	"anthropic-ai":       "Anthropic",
	"perplexitybot":      "PerplexityBot",
	"ccbot":              "CCBot",
	"google-extended":    "Google-Extended",
	"bytespider":         "Bytespider",
	"cohere-ai":          "Cohere",
	"meta-externalagent": "Meta-ExternalAgent",
	"amazonbot":          "Amazonbot",
	"applebot-extended":  "Applebot-Extended",
}

// classicBots maps User-Agent substrings of traditional crawlers to
// display names.
var classicBots = map[string]string{
	"googlebot":           "Googlebot",
	"bingbot":             "Bingbot",
	"yandex":              "Yandex",
	"baidu":               "Baidu",
	"duckduckbot":         "DuckDuckBot",
	"facebookexternalhit": "Facebook",
	"twitterbot":          "Twitterbot",
	"linkedinbot":         "LinkedIn",
	"ahrefsbot":           "Ahrefs",
	"semrushbot":          "SEMrush",
	"mj12bot":             "Majestic",
	"dotbot":              "Moz",
	"slurp":               "Yahoo Slurp",
}

// genericBotMarkers identify crawlers that match no named pattern.
var genericBotMarkers = []string{"bot", "crawler", "spider", "crawl", "slurp", "scrape"}

// IsBot checks if the User-Agent is likely a bot/crawler of any kind.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for pattern := range aiCrawlers {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	for pattern := range classicBots {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	for _, marker := range genericBotMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// IsAICrawler checks if the User-Agent belongs to an LLM-era crawler.
func IsAICrawler(ua string) bool {
	ua = strings.ToLower(ua)
	for pattern := range aiCrawlers {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

// ExtractBotName extracts a display name from a crawler User-Agent.
func ExtractBotName(ua string) string {
	lower := strings.ToLower(ua)
	for pattern, name := range aiCrawlers {
		if strings.Contains(lower, pattern) {
			return name
		}
	}
	for pattern, name := range classicBots {
		if strings.Contains(lower, pattern) {
			return name
		}
	}
	switch {
	case strings.Contains(lower, "crawler"):
		return "Generic Crawler"
	case strings.Contains(lower, "spider"):
		return "Generic Spider"
	case strings.Contains(lower, "bot"):
		return "Other Bot"
	}
	return "Unknown"
}

// referrerDomainRegex is pre-compiled for use in CleanReferrer.
var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer extracts a readable source from a referrer URL.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}

	refLower := strings.ToLower(ref)
	switch {
	case strings.Contains(refLower, "google."):
		return "Google"
	case strings.Contains(refLower, "bing."):
		return "Bing"
	case strings.Contains(refLower, "duckduckgo."):
		return "DuckDuckGo"
	case strings.Contains(refLower, "yahoo."):
		return "Yahoo"
	case strings.Contains(refLower, "github."):
		return "GitHub"
	}

	matches := referrerDomainRegex.FindStringSubmatch(ref)
	if len(matches) > 1 {
		return matches[1]
	}
	return "Other"
}
