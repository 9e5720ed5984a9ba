package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding window limiter keyed by client IP.
type RateLimiter struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	requests  map[string][]time.Time
	lastSweep time.Time
}

// NewRateLimiter allows max requests per client within window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{max: max, window: window, requests: make(map[string][]time.Time)}
}

// Allow records a request from key and reports whether it fits the window.
func (l *RateLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}
	kept := l.requests[key][:0]
	for _, ts := range l.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.requests[key] = kept
		return false
	}
	l.requests[key] = append(kept, now)
	return true
}

// sweep forgets clients with no request after cutoff. Timestamps are
// appended in order, so the last one is the newest.
func (l *RateLimiter) sweep(cutoff time.Time) {
	for key, ts := range l.requests {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(l.requests, key)
		}
	}
}

// Handler rejects clients over the limit with 429. A non-positive max disables it.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.max <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			abort(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		c.Next()
	}
}
