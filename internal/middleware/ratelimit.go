package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aitools/aitools/internal/models"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out a token bucket per client key. Each bucket refills
// at limit per minute and holds at most limit tokens.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	every   rate.Limit
}

func NewRateLimiter(limitPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limitPerMinute,
		every:   rate.Every(time.Minute / time.Duration(limitPerMinute)),
	}
	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()
	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-time.Minute)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) allow(key string) (remaining int, ok bool) {
	rl.mu.Lock()
	c, exists := rl.clients[key]
	if !exists {
		c = &client{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	ok = c.limiter.Allow()
	remaining = int(c.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, ok
}

// RateLimit limits requests per API key, falling back to the client address.
// A non-positive limit disables limiting.
func RateLimit(limitPerMinute int) func(http.Handler) http.Handler {
	if limitPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := NewRateLimiter(limitPerMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Key: prefer API key, fall back to IP
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.RemoteAddr
			}

			remaining, ok := rl.allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", "60")
				models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
