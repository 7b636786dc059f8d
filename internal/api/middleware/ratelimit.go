package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP in fixed windows backed by
// Redis, so the limit holds across replicas. Without Redis it degrades to
// pass-through rather than blocking traffic.
type RateLimiter struct {
	redis    *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(rdb *redis.Client, requests, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &RateLimiter{
		redis:    rdb,
		requests: requests,
		window:   time.Duration(windowSeconds) * time.Second,
	}
}

// Allow reports whether a request from ip fits the current window, along
// with the remaining quota and the window reset time.
func (rl *RateLimiter) Allow(r *http.Request) (bool, int, time.Time) {
	now := time.Now()
	reset := now.Truncate(rl.window).Add(rl.window)

	if rl.redis == nil {
		return true, rl.requests, reset
	}

	key := fmt.Sprintf("ratelimit:%s:%d", getClientIP(r), now.Truncate(rl.window).Unix())

	pipe := rl.redis.TxPipeline()
	count := pipe.Incr(r.Context(), key)
	pipe.Expire(r.Context(), key, rl.window)
	if _, err := pipe.Exec(r.Context()); err != nil {
		// Redis trouble should not take the API down.
		return true, rl.requests, reset
	}

	used := int(count.Val())
	remaining := rl.requests - used
	if remaining < 0 {
		remaining = 0
	}
	return used <= rl.requests, remaining, reset
}

// RateLimit returns a middleware that applies rate limiting
func RateLimit(rdb *redis.Client, requests, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rdb, requests, windowSeconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetTime := limiter.Allow(r)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds())+1, 10))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	return r.RemoteAddr
}
