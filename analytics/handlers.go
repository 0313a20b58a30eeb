package analytics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the metrics collection endpoint and the admin stats API.
type Handler struct {
	store   *Store
	limiter *rateLimiter
}

// NewHandler creates an analytics HTTP handler backed by store.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:   store,
		limiter: newRateLimiter(60, time.Minute),
	}
}

// Close stops the handler's rate-limiter cleanup goroutine.
func (h *Handler) Close() {
	h.limiter.Stop()
}

// RegisterRoutes wires the analytics endpoints: the public collect
// endpoint on publicGroup and the admin JSON API behind authMiddleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, publicGroup *echo.Group, authMiddleware echo.MiddlewareFunc) {
	publicGroup.POST("/api/metrics/collect", h.Collect)

	admin := e.Group("/admin/metrics/api", authMiddleware)
	admin.GET("/stats", h.GetStats)
	admin.GET("/bot-stats", h.GetBotStats)
	admin.GET("/realtime", h.GetRealtime)
}

// collectPayload is the JSON body sent by the metrics beacon.
type collectPayload struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	UserAgent   string `json:"user_agent"`
	DurationSec int    `json:"duration_sec"`
}

// Collect records a page view. Bots are recorded separately from humans,
// Do Not Track is honored, and a nonzero duration updates the visitor's
// latest view instead of creating a new one.
func (h *Handler) Collect(c echo.Context) error {
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	ip := c.RealIP()
	if !h.limiter.allow(ip) {
		return c.NoContent(http.StatusTooManyRequests)
	}

	var p collectPayload
	if err := c.Bind(&p); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if p.Path == "" || !strings.HasPrefix(p.Path, "/") || len(p.Path) > 512 {
		return c.NoContent(http.StatusBadRequest)
	}
	if strings.HasPrefix(p.Path, "/admin") || strings.HasPrefix(p.Path, "/api") {
		return c.NoContent(http.StatusNoContent)
	}
	if p.DurationSec < 0 || p.DurationSec > 24*60*60 {
		p.DurationSec = 0
	}

	ua := p.UserAgent
	if ua == "" {
		ua = c.Request().UserAgent()
	}

	if IsBot(ua) {
		err := h.store.SaveBotVisit(BotVisit{
			BotName:   ExtractBotName(ua),
			AICrawler: IsAICrawler(ua),
			IPHash:    HashIP(ip),
			UserAgent: truncate(ua, 256),
			Path:      p.Path,
		})
		if err != nil {
			c.Logger().Errorf("save bot visit: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := GenerateVisitorID(ip, ua)

	if p.DurationSec > 0 {
		if err := h.store.UpdateVisitDuration(visitorID, p.Path, p.DurationSec); err != nil {
			c.Logger().Errorf("update duration: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(ua)
	err := h.store.SaveVisit(Visit{
		VisitorID:  visitorID,
		SessionID:  GenerateSessionID(visitorID),
		IPHash:     HashIP(ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       p.Path,
		Referrer:   CleanReferrer(p.Referrer),
		ScreenSize: truncate(p.ScreenSize, 16),
	})
	if err != nil {
		c.Logger().Errorf("save visit: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStats returns aggregated visitor stats for ?period=today|week|month|year.
func (h *Handler) GetStats(c echo.Context) error {
	period, from, to, hourly, monthly, err := parsePeriod(c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stats, err := h.store.GetStats(period, from, to, hourly, monthly)
	if err != nil {
		c.Logger().Errorf("get stats: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	if hourly {
		stats.DailyViews = fillHourlyData(stats.DailyViews)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetBotStats returns aggregated crawler stats for the same periods.
func (h *Handler) GetBotStats(c echo.Context) error {
	period, from, to, hourly, monthly, err := parsePeriod(c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stats, err := h.store.GetBotStats(period, from, to, hourly, monthly)
	if err != nil {
		c.Logger().Errorf("get bot stats: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	if hourly {
		stats.DailyVisits = fillHourlyData(stats.DailyVisits)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetRealtime returns the number of distinct visitors in the last five minutes.
func (h *Handler) GetRealtime(c echo.Context) error {
	n, err := h.store.GetRealtimeVisitors()
	if err != nil {
		c.Logger().Errorf("realtime visitors: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	return c.JSON(http.StatusOK, map[string]int{"visitors": n})
}

// parsePeriod maps a period name to a UTC time range plus the bucket
// granularity for the views timeline.
func parsePeriod(period string) (name string, from, to time.Time, hourly, monthly bool, err error) {
	if period == "" {
		period = "week"
	}
	now := time.Now().UTC()
	to = now

	switch period {
	case "today":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		hourly = true
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
		monthly = true
	default:
		return "", time.Time{}, time.Time{}, false, false,
			fmt.Errorf("unknown period %q", period)
	}
	return period, from, to, hourly, monthly, nil
}

// fillHourlyData pads an hourly timeline with zero buckets so charts show
// all 24 hours.
func fillHourlyData(views []DailyView) []DailyView {
	byHour := make(map[string]int, len(views))
	for _, v := range views {
		byHour[v.Date] = v.Views
	}
	out := make([]DailyView, 0, 24)
	for h := 0; h < 24; h++ {
		label := fmt.Sprintf("%02d:00", h)
		out = append(out, DailyView{Date: label, Views: byHour[label]})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
