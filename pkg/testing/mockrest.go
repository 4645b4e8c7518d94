package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/engine"
	"github.com/getmockd/mockrest/pkg/fixtures"
	"github.com/getmockd/mockrest/pkg/logging"
	"github.com/getmockd/mockrest/pkg/resources"
	"github.com/getmockd/mockrest/pkg/stateful"
)

// MockServer is a test helper for running mockrest in tests.
type MockServer struct {
	t          testing.TB
	cfg        *config.ServerConfiguration
	seeds      map[string][]map[string]any
	server     *engine.Server
	store      *stateful.StateStore
	httpSrv    *httptest.Server
	started    bool
	requests   []RequestLog
	requestsMu sync.RWMutex
}

// New creates a new mock server for testing.
// The server is stopped automatically when the test completes.
func New(t testing.TB) *MockServer {
	t.Helper()

	cfg := config.DefaultServerConfiguration()
	cfg.PrettyJSON = false
	cfg.Log.Requests = false

	m := &MockServer{
		t:     t,
		cfg:   cfg,
		seeds: make(map[string][]map[string]any),
	}
	t.Cleanup(m.Stop)
	return m
}

// Configure adjusts the server configuration before Start.
func (m *MockServer) Configure(fn func(*config.ServerConfiguration)) *MockServer {
	m.t.Helper()

	if m.started {
		m.t.Fatalf("mockrest: Configure called after Start")
	}
	fn(m.cfg)
	return m
}

// WithPrefix sets the path prefix of resource routes. The default is "/api".
func (m *MockServer) WithPrefix(prefix string) *MockServer {
	return m.Configure(func(c *config.ServerConfiguration) { c.Prefix = prefix })
}

// Seed replaces the fixtures of resource. Calling Seed with no records
// empties the resource.
func (m *MockServer) Seed(resource string, records ...map[string]any) *MockServer {
	m.t.Helper()

	if m.started {
		m.t.Fatalf("mockrest: Seed called after Start")
	}
	if !slices.Contains(resources.Names(), resource) {
		m.t.Fatalf("mockrest: unknown resource %q", resource)
	}
	if records == nil {
		records = []map[string]any{}
	}
	m.seeds[resource] = records
	return m
}

// Start starts the mock server and returns the base URL.
func (m *MockServer) Start() string {
	m.t.Helper()

	if m.started {
		return m.httpSrv.URL
	}

	dir, err := m.writeSeeds()
	if err != nil {
		m.t.Fatalf("mockrest: writing seeds: %v", err)
	}
	store, _, err := fixtures.Build(dir, logging.Nop())
	if err != nil {
		m.t.Fatalf("mockrest: loading fixtures: %v", err)
	}
	if err := m.cfg.Validate(); err != nil {
		m.t.Fatalf("mockrest: invalid configuration: %v", err)
	}

	m.server, err = engine.NewServer(m.cfg, store, engine.WithLogger(logging.Nop()))
	if err != nil {
		m.t.Fatalf("mockrest: creating server: %v", err)
	}
	m.store = store
	m.httpSrv = httptest.NewServer(m.wrapHandler(m.server.Handler()))
	m.started = true
	return m.httpSrv.URL
}

// writeSeeds writes seeded resources as fixture override files so they go
// through the same validation as files passed with --fixtures-dir.
func (m *MockServer) writeSeeds() (string, error) {
	if len(m.seeds) == 0 {
		return "", nil
	}
	dir := m.t.TempDir()
	for name, records := range m.seeds {
		data, err := json.Marshal(records)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o600); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// wrapHandler records every request before passing it to the server.
func (m *MockServer) wrapHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		m.requestsMu.Lock()
		m.requests = append(m.requests, RequestLog{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    string(body),
			Status:  rec.status,
		})
		m.requestsMu.Unlock()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Stop shuts the server down. It is safe to call more than once.
func (m *MockServer) Stop() {
	if !m.started {
		return
	}
	m.httpSrv.Close()
	_ = m.server.Stop()
	m.started = false
}

// URL returns the base URL of the running server.
func (m *MockServer) URL() string {
	m.t.Helper()

	if m.httpSrv == nil {
		m.t.Fatalf("mockrest: server not started")
	}
	return m.httpSrv.URL
}

// Client returns an HTTP client for the server.
func (m *MockServer) Client() *http.Client {
	if m.httpSrv == nil {
		return http.DefaultClient
	}
	return m.httpSrv.Client()
}

// Server returns the underlying engine server, or nil before Start.
func (m *MockServer) Server() *engine.Server {
	return m.server
}

// Store returns the state store backing the server, or nil before Start.
func (m *MockServer) Store() *stateful.StateStore {
	return m.store
}

// Reset restores every resource to its seed data and clears the request log.
func (m *MockServer) Reset() {
	m.t.Helper()

	if m.store != nil {
		if _, err := m.store.Reset(""); err != nil {
			m.t.Fatalf("mockrest: reset: %v", err)
		}
	}
	m.requestsMu.Lock()
	m.requests = nil
	m.requestsMu.Unlock()
}

// Do sends a request to the server, starting it if needed. A non-nil body
// is sent as-is when it is a string or []byte and JSON encoded otherwise.
func (m *MockServer) Do(method, path string, body any) *Response {
	m.t.Helper()

	base := m.Start()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			m.t.Fatalf("mockrest: encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, base+path, reader)
	if err != nil {
		m.t.Fatalf("mockrest: building request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.Client().Do(req)
	if err != nil {
		m.t.Fatalf("mockrest: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		m.t.Fatalf("mockrest: reading response: %v", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// Get sends a GET request.
func (m *MockServer) Get(path string) *Response {
	m.t.Helper()
	return m.Do(http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func (m *MockServer) Post(path string, body any) *Response {
	m.t.Helper()
	return m.Do(http.MethodPost, path, body)
}

// Requests returns a copy of the recorded requests in arrival order.
func (m *MockServer) Requests() []RequestLog {
	m.requestsMu.RLock()
	defer m.requestsMu.RUnlock()
	return append([]RequestLog(nil), m.requests...)
}

// AssertCalled asserts that at least one request matched method and path.
func (m *MockServer) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if m.countCalls(method, path) == 0 {
		t.Errorf("expected %s %s to be called, but it was not", method, path)
	}
}

// AssertCalledTimes asserts the number of requests matching method and path.
func (m *MockServer) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	if n := m.countCalls(method, path); n != times {
		t.Errorf("expected %s %s to be called %d times, but it was called %d times", method, path, times, n)
	}
}

// AssertNotCalled asserts that no request matched method and path.
func (m *MockServer) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	if n := m.countCalls(method, path); n > 0 {
		t.Errorf("expected %s %s not to be called, but it was called %d times", method, path, n)
	}
}

func (m *MockServer) countCalls(method, path string) int {
	m.requestsMu.RLock()
	defer m.requestsMu.RUnlock()

	n := 0
	for _, r := range m.requests {
		if strings.EqualFold(r.Method, method) && matchesPath(r.Path, path) {
			n++
		}
	}
	return n
}

// matchesPath reports whether actual matches pattern, where a {name}
// segment in pattern matches any single non-empty segment.
func matchesPath(actual, pattern string) bool {
	if actual == pattern {
		return true
	}
	got := strings.Split(strings.Trim(actual, "/"), "/")
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(got) != len(want) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}
