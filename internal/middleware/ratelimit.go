package middleware

import (
	"net/http"
	"strconv"
	"time"

	"hotspothub.io/platform/internal/response"
	"hotspothub.io/platform/pkg/redis"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Middleware applies a per-IP fixed window limit. Fails open when Redis
// is unavailable.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ip = forwarded
		}

		key := "ratelimit:" + ip

		allowed, retryAfter, err := rl.redis.CheckRateLimit(key, rl.limit, rl.window)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			response.Write(w, response.Error(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."))
			return
		}

		next.ServeHTTP(w, r)
	})
}
