package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/getmockd/mockrest/pkg/httputil"
)

// MessageTooManyRequests is the error returned with a 429.
const MessageTooManyRequests = "Too many requests"

// MiddlewareOption configures the rate limiting middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onReject func(r *http.Request, ip string)
	skip     func(r *http.Request) bool
}

// WithOnReject registers a callback invoked for every rejected request.
func WithOnReject(fn func(r *http.Request, ip string)) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.onReject = fn
	}
}

// WithSkip exempts requests for which fn returns true, e.g. OPTIONS preflights.
func WithSkip(fn func(r *http.Request) bool) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skip = fn
	}
}

// Middleware enforces per-IP rate limiting. A nil limiter passes everything.
func Middleware(limiter *PerIPLimiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, o := range opts {
		o(cfg)
	}

	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skip != nil && cfg.skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := limiter.ClientIP(r)
			allowed, remaining, resetOrRetry := limiter.Allow(ip)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetOrRetry, 10))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Retry-After", strconv.FormatInt(resetOrRetry, 10))
			if cfg.onReject != nil {
				cfg.onReject(r, ip)
			}
			httputil.WriteTooManyRequests(w, MessageTooManyRequests)
		})
	}
}
