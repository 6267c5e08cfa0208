package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	pkghttp "github.com/zhaoeryu/eu-authd/pkg/http"
)

// RateLimitConfig holds per-endpoint rate limiting configuration
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LoginRateLimit returns the limit applied to login attempts. Deliberately
// tight: the lockout service throttles per account, this throttles per IP.
func LoginRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 10, Window: 1 * time.Minute}
}

// ChallengeRateLimit returns the limit applied to challenge issuance, which
// writes a key per request.
func ChallengeRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 30, Window: 1 * time.Minute}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.Requests,
		config.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests, slow down")
		}),
	)
}
