package security

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles requests per client IP. Each IP gets a bucket of
// tokens that refills once the window has fully elapsed; credential
// endpoints use it to slow down password guessing.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
}

type bucket struct {
	mu       sync.Mutex
	tokens   int
	refilled time.Time
}

// NewRateLimiter allows rate requests per window for each client IP
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
	}
	go rl.evictIdle()
	return rl
}

// Allow reports whether a request from ip fits within its budget
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: time.Now()}
		rl.buckets[ip] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.refilled) >= rl.window {
		b.tokens = rl.rate
		b.refilled = now
	}
	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// evictIdle drops buckets that have sat untouched for two full windows,
// keeping the map from growing without bound
func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, b := range rl.buckets {
			b.mu.Lock()
			if now.Sub(b.refilled) > 2*rl.window {
				delete(rl.buckets, ip)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// GetClientIP resolves the client address, preferring proxy headers over
// the socket address
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// first hop is the original client
		if ip, _, found := strings.Cut(forwarded, ","); found {
			return strings.TrimSpace(ip)
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
