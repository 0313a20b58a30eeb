package analytics

import (
	"strconv"
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	r := newRateLimiter(2, time.Minute)
	defer r.Stop()
	ip := "203.0.113.50"

	if !r.allow(ip) || !r.allow(ip) {
		t.Fatalf("expected the first two hits to be allowed")
	}
	if r.allow(ip) {
		t.Fatalf("expected the third hit to be blocked")
	}
	if !r.allow("203.0.113.51") {
		t.Fatalf("expected a different ip to be allowed independently")
	}
}

func TestRateLimiterPrunesStaleIPs(t *testing.T) {
	r := newRateLimiter(5, 20*time.Millisecond)
	defer r.Stop()

	// One entry per unique client, like crawler traffic on a public
	// endpoint; without the cleanup goroutine these keys live forever.
	for i := 0; i < 500; i++ {
		r.allow("203.0.113." + strconv.Itoa(i))
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		r.mu.Lock()
		n := len(r.hits)
		r.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stale ip entries never pruned: %d keys still in map after window expiry", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
