package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is the SQLite datetime format; stored strings sort
// chronologically and work with strftime().
const timeLayout = "2006-01-02 15:04:05"

// Store wraps the analytics SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates if needed) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	// WAL for concurrent reads during writes; NORMAL sync is fine for
	// analytics data.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS visits (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		visitor_id   TEXT NOT NULL,
		session_id   TEXT NOT NULL,
		ip_hash      TEXT NOT NULL,
		browser      TEXT NOT NULL DEFAULT '',
		os           TEXT NOT NULL DEFAULT '',
		device       TEXT NOT NULL DEFAULT '',
		path         TEXT NOT NULL,
		referrer     TEXT NOT NULL DEFAULT '',
		screen_size  TEXT NOT NULL DEFAULT '',
		timestamp    TEXT NOT NULL,
		duration_sec INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
	CREATE INDEX IF NOT EXISTS idx_visits_visitor ON visits(visitor_id, path);
	CREATE TABLE IF NOT EXISTS bot_visits (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		bot_name   TEXT NOT NULL,
		ai_crawler INTEGER NOT NULL DEFAULT 0,
		ip_hash    TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		path       TEXT NOT NULL,
		timestamp  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create analytics schema: %w", err)
	}
	return nil
}

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a key/value pair, replacing any existing value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// SaveVisit records a human page view.
func (s *Store) SaveVisit(v Visit) error {
	ts := v.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO visits (visitor_id, session_id, ip_hash, browser, os, device,
		 path, referrer, screen_size, timestamp, duration_sec)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device,
		v.Path, v.Referrer, v.ScreenSize, ts.UTC().Format(timeLayout), v.DurationSec)
	if err != nil {
		return fmt.Errorf("save visit: %w", err)
	}
	return nil
}

// SaveBotVisit records a crawler page view.
func (s *Store) SaveBotVisit(v BotVisit) error {
	ts := v.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ai := 0
	if v.AICrawler {
		ai = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO bot_visits (bot_name, ai_crawler, ip_hash, user_agent, path, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.BotName, ai, v.IPHash, v.UserAgent, v.Path, ts.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save bot visit: %w", err)
	}
	return nil
}

// UpdateVisitDuration sets the duration of the visitor's most recent view
// of path, for the duration beacon sent when the visitor leaves the page.
func (s *Store) UpdateVisitDuration(visitorID, path string, durationSec int) error {
	_, err := s.db.Exec(
		`UPDATE visits SET duration_sec = ?
		 WHERE id = (SELECT id FROM visits WHERE visitor_id = ? AND path = ?
		             ORDER BY timestamp DESC LIMIT 1)`,
		durationSec, visitorID, path)
	if err != nil {
		return fmt.Errorf("update visit duration: %w", err)
	}
	return nil
}

// GetStats aggregates human visits between from and to. The label layout
// of DailyViews follows the period: hours for a single day, months for a
// year, days otherwise.
func (s *Store) GetStats(period string, from, to time.Time, hourly, monthly bool) (*Stats, error) {
	stats := &Stats{Period: period}
	lo, hi := from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)

	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor_id), COUNT(*),
		        CAST(COALESCE(AVG(NULLIF(duration_sec, 0)), 0) AS INTEGER)
		 FROM visits WHERE timestamp >= ? AND timestamp < ?`, lo, hi).
		Scan(&stats.UniqueVisitors, &stats.TotalViews, &stats.AvgDuration)
	if err != nil {
		return nil, fmt.Errorf("visit totals: %w", err)
	}

	stats.TopPages, err = s.pageStats(
		`SELECT path, COUNT(*) AS views FROM visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY path ORDER BY views DESC LIMIT 10`, lo, hi)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT path, timestamp, browser FROM visits
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp DESC LIMIT 20`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("latest pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v LatestPageVisit
		if err := rows.Scan(&v.Path, &v.Timestamp, &v.Browser); err != nil {
			return nil, err
		}
		stats.LatestPages = append(stats.LatestPages, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, dim := range []struct {
		column string
		dest   *[]DimensionStat
	}{
		{"browser", &stats.BrowserStats},
		{"os", &stats.OSStats},
		{"device", &stats.DeviceStats},
		{"referrer", &stats.ReferrerStats},
	} {
		*dim.dest, err = s.dimensionStats(
			`SELECT `+dim.column+`, COUNT(*) AS c FROM visits
			 WHERE timestamp >= ? AND timestamp < ? AND `+dim.column+` != ''
			 GROUP BY `+dim.column+` ORDER BY c DESC LIMIT 10`, lo, hi)
		if err != nil {
			return nil, err
		}
	}

	stats.DailyViews, err = s.bucketedViews("visits", lo, hi, hourly, monthly)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetBotStats aggregates crawler visits between from and to, with a
// separate breakdown for AI crawlers.
func (s *Store) GetBotStats(period string, from, to time.Time, hourly, monthly bool) (*BotStats, error) {
	stats := &BotStats{Period: period}
	lo, hi := from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(ai_crawler), 0) FROM bot_visits
		 WHERE timestamp >= ? AND timestamp < ?`, lo, hi).
		Scan(&stats.TotalVisits, &stats.AIVisits)
	if err != nil {
		return nil, fmt.Errorf("bot totals: %w", err)
	}

	stats.TopBots, err = s.dimensionStats(
		`SELECT bot_name, COUNT(*) AS c FROM bot_visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY bot_name ORDER BY c DESC LIMIT 15`, lo, hi)
	if err != nil {
		return nil, err
	}

	stats.AICrawlers, err = s.dimensionStats(
		`SELECT bot_name, COUNT(*) AS c FROM bot_visits
		 WHERE timestamp >= ? AND timestamp < ? AND ai_crawler = 1
		 GROUP BY bot_name ORDER BY c DESC LIMIT 15`, lo, hi)
	if err != nil {
		return nil, err
	}

	stats.TopPages, err = s.pageStats(
		`SELECT path, COUNT(*) AS views FROM bot_visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY path ORDER BY views DESC LIMIT 10`, lo, hi)
	if err != nil {
		return nil, err
	}

	stats.DailyVisits, err = s.bucketedViews("bot_visits", lo, hi, hourly, monthly)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetRealtimeVisitors counts distinct visitors seen in the last five minutes.
func (s *Store) GetRealtimeVisitors() (int, error) {
	cutoff := time.Now().Add(-5 * time.Minute).UTC().Format(timeLayout)
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("realtime visitors: %w", err)
	}
	return n, nil
}

// CleanupOldVisits deletes visits and bot visits older than retainDays.
func (s *Store) CleanupOldVisits(retainDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retainDays).UTC().Format(timeLayout)
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs CleanupOldVisits immediately and then on
// every interval tick. The returned function stops the scheduler.
func (s *Store) StartCleanupScheduler(retainDays int, interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		_ = s.CleanupOldVisits(retainDays)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.CleanupOldVisits(retainDays)
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

func (s *Store) pageStats(query string, args ...any) ([]PageStat, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("page stats: %w", err)
	}
	defer rows.Close()

	var out []PageStat
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) dimensionStats(query string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("dimension stats: %w", err)
	}
	defer rows.Close()

	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// bucketedViews groups view counts by hour, month, or day.
func (s *Store) bucketedViews(table, lo, hi string, hourly, monthly bool) ([]DailyView, error) {
	format := "%Y-%m-%d"
	if hourly {
		format = "%H:00"
	} else if monthly {
		format = "%Y-%m"
	}
	rows, err := s.db.Query(
		`SELECT strftime('`+format+`', timestamp) AS bucket, COUNT(*) FROM `+table+`
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY bucket ORDER BY bucket`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("bucketed views: %w", err)
	}
	defer rows.Close()

	var out []DailyView
	for rows.Next() {
		var v DailyView
		if err := rows.Scan(&v.Date, &v.Views); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
