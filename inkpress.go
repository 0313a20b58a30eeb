// Package inkpress is a blog engine built with Go, Echo, and templ, where
// the content layer is Markdown files on disk instead of a database.
// It provides post loading with live reload, RSS/sitemap/llms.txt feeds,
// privacy-first analytics, and an admin stats dashboard out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// inkpress handles routing, middleware, and content management.
package inkpress

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/analytics"
	"github.com/eringen/inkpress/content"
)

const (
	loginWindow     = time.Minute
	cleanupInterval = 24 * time.Hour
)

// ViewFuncs holds user-provided templ components that the engine calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home        func(posts []content.Post, activeTag string, tags []string, siteURL string) templ.Component
	Post        func(post content.Post, related []content.Post, siteURL string) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	AdminHome   func(csrfToken string, message string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central inkpress application. It wires together the content
// library, watcher, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Library *content.Library
	Views   ViewFuncs

	watcher          *content.Watcher
	loginLimiter     *LoginLimiter
	analyticsStore   *analytics.Store
	analyticsHandler *analytics.Handler
	customRoutes     []func(*App)
	staticDir        string
}

// New creates a new inkpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: cfg.StaticDir,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start loads the content library, sets up middleware and routes, and
// starts the server. It blocks until the server stops.
func (a *App) Start() error {
	if a.Config.AnalyticsEnabled {
		if a.Config.AdminPassword == "" {
			return fmt.Errorf("inkpress: AdminPassword is required when analytics is enabled")
		}
		if a.Config.SessionSecret == "" {
			return fmt.Errorf("inkpress: SessionSecret is required when analytics is enabled")
		}
	}

	a.Library = content.NewLibrary(a.Config.ContentDir, a.Config.WordsPerMinute)
	if err := a.reloadContent(); err != nil {
		return fmt.Errorf("inkpress: load content: %w", err)
	}

	if a.Config.WatchContent {
		w, err := content.WatchDir(a.Config.ContentDir, a.Config.WatchDebounce, func() {
			if err := a.reloadContent(); err != nil {
				a.Echo.Logger.Errorf("content reload: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("inkpress: watch content: %w", err)
		}
		a.watcher = w
	}

	a.loginLimiter = NewLoginLimiter(5, loginWindow)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("inkpress: init analytics: %w", err)
		}
		a.analyticsStore = store
		if err := analytics.InitSalt(store); err != nil {
			return fmt.Errorf("inkpress: init analytics salt: %w", err)
		}
		stopCleanup := store.StartCleanupScheduler(a.Config.AnalyticsRetainDays, cleanupInterval)
		defer stopCleanup()
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// reloadContent reloads the library and logs any per-file problems.
func (a *App) reloadContent() error {
	problems, err := a.Library.Reload()
	for _, p := range problems {
		a.Echo.Logger.Warnf("skipping %s: %v", p.Path, p.Err)
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded engine assets (metrics.js) are served under /public/ and
	// fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/metrics.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)

	// Public routes
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/llms.txt", a.handleLlmsTxt)
	e.GET("/llms-full.txt", a.handleLlmsFullTxt)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	// Admin routes (analytics dashboard access + content reload)
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/reload/", a.handleAdminReload)

	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		a.analyticsHandler = analytics.NewHandler(a.analyticsStore)
		authMiddleware := func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.Redirect(http.StatusSeeOther, "/admin/")
				}
				return next(c)
			}
		}
		a.analyticsHandler.RegisterRoutes(e, e.Group(""), authMiddleware)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.analyticsHandler != nil {
		a.analyticsHandler.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("inkpress: required environment variable %s is not set", key)
	}
	return v
}
