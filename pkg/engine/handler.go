package engine

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/httputil"
	"github.com/getmockd/mockrest/pkg/logging"
	"github.com/getmockd/mockrest/pkg/metrics"
	"github.com/getmockd/mockrest/pkg/openapi"
	"github.com/getmockd/mockrest/pkg/requestlog"
	"github.com/getmockd/mockrest/pkg/stateful"
)

// MessageRouteNotFound is returned for paths no route matches.
const MessageRouteNotFound = "Not found"

// MessageMethodNotAllowed is returned for unsupported methods on a known route.
const MessageMethodNotAllowed = "Method not allowed"

// Handler routes API requests to the stateful bridge and serves the
// operational endpoints.
type Handler struct {
	store   *stateful.StateStore
	bridge  *stateful.Bridge
	respond httputil.Responder
	metrics *metrics.Metrics
	journal requestlog.Store
	log     *slog.Logger

	prefix      string
	maxBodySize int64
	admin       bool
	version     string
	startTime   time.Time

	openapiDoc []byte
	mux        *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the operational logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithHandlerMetrics serves m at /metrics.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithHandlerJournal serves journal at /__admin/requests.
func WithHandlerJournal(journal requestlog.Store) HandlerOption {
	return func(h *Handler) {
		h.journal = journal
	}
}

// WithVersion sets the version reported by the index and the OpenAPI document.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) {
		h.version = v
	}
}

// NewHandler builds the router for every resource registered in store.
func NewHandler(store *stateful.StateStore, cfg *config.ServerConfiguration, opts ...HandlerOption) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("engine: store must not be nil")
	}
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodySize
	}

	h := &Handler{
		store:       store,
		bridge:      stateful.NewBridge(store),
		respond:     httputil.Responder{Pretty: cfg.PrettyJSON},
		log:         logging.Nop(),
		prefix:      cfg.NormalizedPrefix(),
		maxBodySize: maxBody,
		admin:       cfg.Admin,
		version:     "dev",
		startTime:   time.Now(),
		mux:         http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	doc, err := openapi.Build(h.configs(), openapi.Options{
		Version: h.version,
		Prefix:  h.prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("building openapi document: %w", err)
	}
	if h.openapiDoc, err = openapi.Marshal(doc, cfg.PrettyJSON); err != nil {
		return nil, fmt.Errorf("encoding openapi document: %w", err)
	}

	if err := h.routes(); err != nil {
		return nil, err
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Bridge returns the bridge every resource route goes through.
func (h *Handler) Bridge() *stateful.Bridge {
	return h.bridge
}

func (h *Handler) configs() []*stateful.ResourceConfig {
	names := h.store.List()
	out := make([]*stateful.ResourceConfig, 0, len(names))
	for _, name := range names {
		out = append(out, h.store.Get(name).Config())
	}
	return out
}

// routes registers every pattern on the mux. Resource patterns carry no
// method so the handlers can answer OPTIONS and 405 themselves.
func (h *Handler) routes() error {
	for _, cfg := range h.configs() {
		base := h.prefix + "/" + cfg.Name
		h.mux.Handle(base, h.collectionHandler(cfg))
		h.mux.Handle(base+"/{id}", h.itemHandler(cfg))

		for _, n := range cfg.Nested {
			child := h.store.Get(n.Child)
			if child == nil {
				return fmt.Errorf("engine: %s nests unknown resource %q", cfg.Name, n.Child)
			}
			h.mux.Handle(base+"/{id}/"+n.Child, h.nestedHandler(cfg, child.Config(), n))
		}
	}

	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	if h.prefix != "" {
		h.mux.HandleFunc("GET "+h.prefix+"/{$}", h.handleIndex)
		h.mux.HandleFunc("GET "+h.prefix, h.handleIndex)
	}
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /openapi.json", h.handleOpenAPI)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Registry.Handler())
	}
	if h.admin {
		h.mux.HandleFunc("GET /__admin/state", h.handleState)
		h.mux.HandleFunc("POST /__admin/reset", h.handleReset)
		if h.journal != nil {
			h.mux.HandleFunc("GET /__admin/requests", h.handleListRequests)
			h.mux.HandleFunc("GET /__admin/requests/{id}", h.handleGetRequest)
			h.mux.HandleFunc("DELETE /__admin/requests", h.handleClearRequests)
		}
	}
	h.mux.HandleFunc("/", h.handleNotFound)
	return nil
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		httputil.WriteNoContent(w)
		return
	}
	h.respond.Error(w, http.StatusNotFound, MessageRouteNotFound)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	h.respond.Error(w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
}

// writeResult renders a bridge result: the delete envelope, a page, or a
// single record, or the error body when the operation failed.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, res *stateful.OperationResult) {
	if res.Error != nil {
		h.writeError(w, r, res.Error)
		return
	}
	switch {
	case res.Deleted != nil:
		h.respond.JSON(w, http.StatusOK, res.Deleted)
	case res.Page != nil:
		h.respond.JSON(w, http.StatusOK, res.Page)
	case res.Status == stateful.StatusCreated:
		h.respond.JSON(w, http.StatusCreated, res.Record)
	default:
		h.respond.JSON(w, http.StatusOK, res.Record)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := stateful.ToErrorBody(err)
	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err, "hint", stateful.HintFor(err))
	}
	if body.Errors != nil {
		h.respond.Errors(w, status, body.Errors)
		return
	}
	h.respond.Error(w, status, body.Error)
}
