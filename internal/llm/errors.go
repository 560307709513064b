package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors categorizing vision-service failures. The tracker maps
// these to status messages; none of them stop the scheduler.
var (
	// ErrAuth indicates a rejected API key.
	ErrAuth = errors.New("vision service authentication failed")

	// ErrRateLimited indicates the service asked us to slow down.
	ErrRateLimited = errors.New("vision service rate limited")

	// ErrQuotaExceeded indicates the account has run out of quota.
	ErrQuotaExceeded = errors.New("vision service quota exceeded")
)

// classifyStatusError maps an HTTP error response from a vision provider
// onto the sentinel taxonomy. Unrecognized statuses produce a generic
// error carrying the status and body.
func classifyStatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s returned status %d: %w", provider, status, ErrAuth)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s returned status %d: %w", provider, status, ErrRateLimited)
	case strings.Contains(msg, "insufficient_quota"):
		return fmt.Errorf("%s returned status %d: %w", provider, status, ErrQuotaExceeded)
	default:
		return fmt.Errorf("%s returned status %d: %s", provider, status, msg)
	}
}

// ErrorStatus renders an error as a short human-readable status fragment.
func ErrorStatus(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "invalid API key"
	case errors.Is(err, ErrRateLimited):
		return "rate limited"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota exceeded"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit open"
	default:
		return "service error"
	}
}
