package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sigbus/sigbus/pkg/api/response"
)

// RateLimiter tracks a token-bucket limiter per client, keyed by the
// request's remote address.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput per client with the given burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[clientID]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[clientID] = limiter
	}
	return limiter
}

// RateLimit returns a middleware that rejects requests exceeding the
// per-client rate with 429 once a client's token bucket is exhausted.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.RemoteAddr
			if clientID == "" {
				clientID = "anonymous"
			}

			limiter := rl.getLimiter(clientID)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				retryAfter := reservation.Delay()
				reservation.Cancel()

				w.Header().Set("Retry-After", retryAfter.String())
				requestID := GetRequestID(r.Context())
				response.Error(w, http.StatusTooManyRequests, response.ErrCodeTooManyRequests, "rate limit exceeded", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
