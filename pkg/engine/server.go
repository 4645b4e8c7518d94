package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/logging"
	"github.com/getmockd/mockrest/pkg/metrics"
	"github.com/getmockd/mockrest/pkg/requestlog"
	"github.com/getmockd/mockrest/pkg/stateful"
)

// Server is the mock API HTTP server.
type Server struct {
	cfg     *config.ServerConfiguration
	store   *stateful.StateStore
	handler *Handler
	chain   *MiddlewareChain
	metrics *metrics.Metrics
	journal *requestlog.MemoryStore
	log     *slog.Logger
	version string

	httpHandler http.Handler
	httpServer  *http.Server
	listener    net.Listener

	mu      sync.Mutex
	running bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger. A nil logger keeps the no-op default.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithServerVersion sets the version reported by / and /openapi.json.
func WithServerVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer wires the store, metrics, middleware chain and router. The
// store's observer is replaced by the metrics observer.
func NewServer(cfg *config.ServerConfiguration, store *stateful.StateStore, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		log:     logging.Nop(),
		version: "dev",
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if store != nil {
		s.metrics.WatchStore(store)
		store.SetObserver(s.metrics.Observer())
	}

	handlerOpts := []HandlerOption{
		WithHandlerLogger(s.log),
		WithHandlerMetrics(s.metrics),
		WithVersion(s.version),
	}
	chainOpts := []MiddlewareChainOption{WithChainLogger(s.log), WithChainMetrics(s.metrics)}
	if cfg.Admin && cfg.MaxLogEntries > 0 {
		s.journal = requestlog.NewMemoryStore(cfg.MaxLogEntries)
		handlerOpts = append(handlerOpts, WithHandlerJournal(s.journal))
		chainOpts = append(chainOpts, WithChainJournal(s.journal))
	}

	handler, err := NewHandler(store, cfg, handlerOpts...)
	if err != nil {
		return nil, err
	}
	s.handler = handler

	s.chain = NewMiddlewareChain(cfg, chainOpts...)
	s.httpHandler = s.chain.Wrap(handler)
	return s, nil
}

// Handler returns the router wrapped in the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpHandler
}

// Journal returns the request journal, or nil when it is disabled.
func (s *Server) Journal() *requestlog.MemoryStore {
	return s.journal
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.httpHandler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	s.log.Info("starting HTTP server", "addr", ln.Addr().String(), "prefix", s.cfg.NormalizedPrefix())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether Start has succeeded and Stop has not been called.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop drains in-flight requests for up to ShutdownTimeout seconds. It also
// releases the rate limiter, so it is safe to call on a server that was
// never started.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return s.chain.Close()
	}

	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := s.chain.Close(); err != nil {
		errs = append(errs, fmt.Errorf("middleware chain close: %w", err))
	}

	s.running = false
	s.log.Info("HTTP server stopped")
	return errors.Join(errs...)
}
