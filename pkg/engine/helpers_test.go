package engine

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/fixtures"
	"github.com/getmockd/mockrest/pkg/resources"
	"github.com/getmockd/mockrest/pkg/stateful"
)

type testServerOptions struct {
	configure func(*config.ServerConfiguration)
	seed      func(fixtures.Set)
	logger    *slog.Logger
}

// newTestServer builds a Server over a fresh store seeded with the embedded
// fixtures. Each call gets its own store.
func newTestServer(t testing.TB, opts testServerOptions) *Server {
	t.Helper()

	cfg := config.DefaultServerConfiguration()
	cfg.PrettyJSON = false
	cfg.Log.Requests = false
	if opts.configure != nil {
		opts.configure(cfg)
	}

	defs := resources.Definitions()
	set, err := fixtures.NewLoader("").Load(defs)
	require.NoError(t, err)
	if opts.seed != nil {
		opts.seed(set)
	}
	store, err := fixtures.NewStore(defs, set)
	require.NoError(t, err)

	var srvOpts []ServerOption
	if opts.logger != nil {
		srvOpts = append(srvOpts, WithLogger(opts.logger))
	}
	srv, err := NewServer(cfg, store, srvOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func do(t testing.TB, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

type pageBody struct {
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Results []stateful.Record `json:"results"`
}

type errorBody struct {
	Error string `json:"error"`
}

type errorsBody struct {
	Errors []string `json:"errors"`
}

func ids(recs []stateful.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}
