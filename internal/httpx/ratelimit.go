// Package httpx holds HTTP middleware shared by the API and web routers.
package httpx

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

var (
	// StrictLimit guards sign-in, sign-up and password reset.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards transfer and notification writes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}
)

// KeyExtractor picks the bucket a request is counted against.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	cfg   RateLimitConfig
	key   KeyExtractor
	rate  rate.Limit
	burst int

	limiters    sync.Map // map[string]*rate.Limiter
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewLimiter creates a limiter allowing cfg.RequestsPerWindow per key.
func NewLimiter(cfg RateLimitConfig, key KeyExtractor) *Limiter {
	return &Limiter{
		cfg:         cfg,
		key:         key,
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}
}

// Allow consumes a token for r. When the bucket is empty it reports how long
// the client should wait.
func (l *Limiter) Allow(r *http.Request) (bool, time.Duration) {
	key := l.key(r)
	if key == "" {
		Logger(r.Context()).Warn("rate limit: unable to extract key, allowing request")
		return true, 0
	}

	limiter := l.get(key)
	if limiter.Allow() {
		return true, 0
	}
	res := limiter.Reserve()
	delay := res.Delay()
	res.Cancel()
	return false, max(delay, time.Second)
}

func (l *Limiter) get(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle buckets at most once every five minutes.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// Middleware rejects requests over the limit with 429 and a JSON error.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := l.Allow(r)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		secs := int(retryAfter.Seconds())
		Logger(r.Context()).Warn("rate limit exceeded", "path", r.URL.Path, "retry_after", secs)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.RequestsPerWindow))
		w.Header().Set("X-RateLimit-Window", l.cfg.Window.String())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many requests, please try again later"})
	})
}
