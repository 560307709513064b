package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/scrypster/focusd/internal/config"
)

// unauthorized writes the JSON 401 body shared by every auth failure so
// callers cannot distinguish a missing token from a wrong one.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"unauthorized","code":"UNAUTHORIZED"}`,
		http.StatusUnauthorized)
}

// RequireAuth guards the API with the configured bearer token. The
// daemon binds to localhost by default, so development mode waives the
// check; production mode requires a configured token and compares it in
// constant time. An unset production token locks the API out entirely
// rather than failing open.
func RequireAuth(next http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Security.SecurityMode == "development" {
			next.ServeHTTP(w, r)
			return
		}

		expected := cfg.Security.APIToken
		if expected == "" {
			unauthorized(w)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimiter throttles the whole API with one shared token bucket.
// The surface is single-user, so there is no per-client bookkeeping.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows reqPerSec sustained requests with the given
// burst headroom for UI refreshes that fire several calls at once.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(reqPerSec), burst)}
}

// RateLimitMiddleware rejects requests over the limit with a JSON 429.
func RateLimitMiddleware(next http.Handler, rl *RateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"rate limit exceeded","code":"RATE_LIMITED"}`,
				http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
