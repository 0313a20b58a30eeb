package analytics

import (
	"sync"
	"time"
)

// rateLimiter is a simple per-IP sliding window limiter for the collect
// endpoint. A background goroutine prunes stale IP keys so the map does
// not grow with every unique client ever seen.
type rateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	stop   chan struct{}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	r := &rateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		stop:   make(chan struct{}),
	}
	go r.cleanup()
	return r
}

func (r *rateLimiter) cleanup() {
	ticker := time.NewTicker(r.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-r.window)
			r.mu.Lock()
			for ip, hits := range r.hits {
				kept := hits[:0]
				for _, t := range hits {
					if t.After(cutoff) {
						kept = append(kept, t)
					}
				}
				if len(kept) == 0 {
					delete(r.hits, ip)
				} else {
					r.hits[ip] = kept
				}
			}
			r.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}

// Stop ends the background cleanup goroutine.
func (r *rateLimiter) Stop() {
	close(r.stop)
}

// allow records a hit for ip and reports whether it is within the limit.
func (r *rateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	recent := r.hits[ip][:0]
	for _, t := range r.hits[ip] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.hits[ip] = recent
		return false
	}

	r.hits[ip] = append(recent, now)
	return true
}
