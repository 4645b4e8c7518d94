// CORS middleware for the mock API.

package engine

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/getmockd/mockrest/pkg/config"
)

// CORSMiddleware wraps an http.Handler and adds CORS headers to every
// response. OPTIONS requests are answered with 204 without reaching the
// wrapped handler.
type CORSMiddleware struct {
	handler http.Handler
	config  *config.CORSConfig
	methods string
	headers string
}

// NewCORSMiddleware creates a new CORS middleware with the given configuration.
// If cfg is nil, config.DefaultCORSConfig is used.
func NewCORSMiddleware(handler http.Handler, cfg *config.CORSConfig) *CORSMiddleware {
	if cfg == nil {
		cfg = config.DefaultCORSConfig()
	}
	defaults := config.DefaultCORSConfig()

	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = defaults.AllowMethods
	}
	headers := cfg.AllowHeaders
	if len(headers) == 0 {
		headers = defaults.AllowHeaders
	}

	return &CORSMiddleware{
		handler: handler,
		config:  cfg,
		methods: strings.Join(methods, ", "),
		headers: strings.Join(headers, ", "),
	}
}

// ServeHTTP implements the http.Handler interface.
func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !m.config.Enabled {
		m.handler.ServeHTTP(w, r)
		return
	}

	if allowOrigin := m.allowOrigin(r.Header.Get("Origin")); allowOrigin != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", m.methods)
		h.Set("Access-Control-Allow-Headers", m.headers)
		if m.config.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
		}
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m.handler.ServeHTTP(w, r)
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (m *CORSMiddleware) allowOrigin(origin string) string {
	allowed := m.config.AllowOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin
	}
	return ""
}
