package engine

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getmockd/mockrest/internal/id"
	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/httputil"
	"github.com/getmockd/mockrest/pkg/logging"
	"github.com/getmockd/mockrest/pkg/metrics"
	"github.com/getmockd/mockrest/pkg/ratelimit"
	"github.com/getmockd/mockrest/pkg/requestlog"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// MessageInternalError is the body of every 500 response.
const MessageInternalError = "internal error"

// MiddlewareChain manages the HTTP middleware stack for the mock server.
type MiddlewareChain struct {
	cfg     *config.ServerConfiguration
	log     *slog.Logger
	metrics *metrics.Metrics
	limiter *ratelimit.PerIPLimiter
	journal requestlog.Logger
}

// MiddlewareChainOption configures a MiddlewareChain.
type MiddlewareChainOption func(*MiddlewareChain)

// WithChainLogger sets the base logger. Request loggers derive from it.
func WithChainLogger(logger *slog.Logger) MiddlewareChainOption {
	return func(mc *MiddlewareChain) {
		if logger != nil {
			mc.log = logger
		}
	}
}

// WithChainMetrics enables request metrics.
func WithChainMetrics(m *metrics.Metrics) MiddlewareChainOption {
	return func(mc *MiddlewareChain) {
		mc.metrics = m
	}
}

// WithChainJournal records requests in journal.
func WithChainJournal(journal requestlog.Logger) MiddlewareChainOption {
	return func(mc *MiddlewareChain) {
		mc.journal = journal
	}
}

// NewMiddlewareChain creates a new middleware chain from configuration.
// A per-IP limiter is started when rate limiting is enabled; Close stops it.
func NewMiddlewareChain(cfg *config.ServerConfiguration, opts ...MiddlewareChainOption) *MiddlewareChain {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}
	mc := &MiddlewareChain{cfg: cfg, log: logging.Nop()}
	for _, opt := range opts {
		opt(mc)
	}

	if rl := cfg.RateLimit; rl != nil && rl.Enabled {
		mc.limiter = ratelimit.NewPerIPLimiter(ratelimit.PerIPConfig{
			Rate:           rl.RequestsPerSecond,
			Burst:          rl.BurstSize,
			TrustedProxies: rl.TrustedProxies,
		})
	}
	return mc
}

// Wrap wraps the given handler with all configured middleware.
// The order is: request id -> access log -> journal -> metrics -> recover ->
// CORS -> rate limit -> handler.
func (mc *MiddlewareChain) Wrap(handler http.Handler) http.Handler {
	h := handler

	h = ratelimit.Middleware(mc.limiter,
		ratelimit.WithSkip(func(r *http.Request) bool { return r.Method == http.MethodOptions }),
		ratelimit.WithOnReject(mc.onRateLimited),
	)(h)

	if mc.cfg.CORS != nil {
		h = NewCORSMiddleware(h, mc.cfg.CORS)
	}

	h = Recover(h)
	h = MetricsMiddleware(mc.metrics)(h)
	h = RequestJournal(mc.journal)(h)

	if mc.cfg.Log.Requests {
		h = AccessLog(h)
	}

	return RequestID(mc.log)(h)
}

func (mc *MiddlewareChain) onRateLimited(r *http.Request, ip string) {
	if mc.metrics != nil {
		_ = mc.metrics.RateLimited.Inc()
	}
	logging.FromContext(r.Context()).Warn("rate limit exceeded", "client", ip, "path", r.URL.Path)
}

// Close stops the rate limiter, if any.
func (mc *MiddlewareChain) Close() error {
	if mc.limiter != nil {
		mc.limiter.Stop()
	}
	return nil
}

// RequestID tags each request with an id (taken from X-Request-ID when the
// client sends one), echoes it in the response and stores a logger carrying
// it in the request context.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(HeaderRequestID)
			if rid == "" || len(rid) > 128 {
				rid = id.RequestID()
			}
			w.Header().Set(HeaderRequestID, rid)

			ctx := logging.WithContext(r.Context(), base.With("request_id", rid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLog writes one line per request to the request logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		log := logging.FromContext(r.Context())
		level := slog.LevelInfo
		if rec.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// Recover turns a panic in next into a 500 {"error": "internal error"}.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logging.FromContext(r.Context()).Error("panic serving request",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", v,
				"stack", string(debug.Stack()),
			)
			if !rec.written {
				httputil.WriteInternalError(rec, MessageInternalError)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
