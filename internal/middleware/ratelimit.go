// Package middleware holds the HTTP admission and surface middleware.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cinewise/movie-assistant/internal/metrics"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	"github.com/cinewise/movie-assistant/pkg/utils"
)

// Guard wraps a route with the admission middleware for one named rule.
type Guard func(rule ratelimit.Rule) func(http.Handler) http.Handler

// NewGuard builds the per-route admission factory. A nil limiter disables
// admission entirely (local development).
func NewGuard(limiter *ratelimit.Limiter) Guard {
	return func(rule ratelimit.Rule) func(http.Handler) http.Handler {
		if limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return RateLimit(limiter, rule)
	}
}

type rateLimitExceeded struct {
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	Limit      string    `json:"limit"`
	RetryAfter int       `json:"retry_after"`
	Timestamp  time.Time `json:"timestamp"`
}

// RateLimit admits or rejects requests against rule, keyed by the client
// address. Every response carries the X-RateLimit-* headers; a rejection is
// a 429 with retry metadata, not an error surfaced to handlers.
func RateLimit(limiter *ratelimit.Limiter, rule ratelimit.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Allow(clientKey(r), rule)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				metrics.RateLimitDenials.WithLabelValues(rule.Name).Inc()

				retryAfter := int(decision.RetryAfter(time.Now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				utils.RespondJSON(w, http.StatusTooManyRequests, rateLimitExceeded{
					Error:      "Rate limit exceeded",
					Message:    fmt.Sprintf("Too many requests. Limit: %s", rule),
					Limit:      rule.String(),
					RetryAfter: retryAfter,
					Timestamp:  time.Now().UTC(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by address. chi's RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For where applicable.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
