// Package middleware holds the HTTP middleware shared by every route group.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/uniformhub/pkg/response"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window per-IP counter.
type RateLimiter struct {
	max    int
	period time.Duration

	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	return &RateLimiter{max: max, period: period, windows: map[string]*window{}, now: time.Now}
}

// Allow counts one hit for key and reports whether it is within budget.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++
	if len(l.windows) > 10000 {
		l.evict(now)
	}
	return w.count <= l.max
}

func (l *RateLimiter) evict(now time.Time) {
	for k, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, k)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit is shorthand for NewRateLimiter(max, period).Middleware.
func RateLimit(max int, period time.Duration) func(http.Handler) http.Handler {
	return NewRateLimiter(max, period).Middleware
}

// clientIP is the socket peer. Forwarding headers only count once
// TrustedProxies has rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
