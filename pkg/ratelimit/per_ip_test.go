package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPerIPLimiter_Defaults(t *testing.T) {
	t.Parallel()
	limiter := NewPerIPLimiter(PerIPConfig{})
	defer limiter.Stop()

	assert.Equal(t, 200, limiter.Burst())
	assert.Equal(t, DefaultCleanupInterval, limiter.cleanupInterval)
	assert.Equal(t, DefaultEntryTTL, limiter.entryTTL)
}

func TestAllow(t *testing.T) {
	t.Parallel()
	limiter := NewPerIPLimiter(PerIPConfig{Rate: 1, Burst: 3})
	defer limiter.Stop()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	allowed, remaining, reset := limiter.Allow("10.0.0.2")
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, int64(1), reset)

	for range 2 {
		allowed, _, _ = limiter.Allow("10.0.0.2")
		require.True(t, allowed)
	}

	allowed, remaining, retry := limiter.Allow("10.0.0.2")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.GreaterOrEqual(t, retry, int64(1))

	// other clients have their own bucket
	allowed, _, _ = limiter.Allow("10.0.0.3")
	assert.True(t, allowed)

	// tokens refill with time
	fixed = fixed.Add(2 * time.Second)
	allowed, _, _ = limiter.Allow("10.0.0.2")
	assert.True(t, allowed)
}

func TestRemoveStale(t *testing.T) {
	t.Parallel()
	limiter := NewPerIPLimiter(PerIPConfig{EntryTTL: time.Minute})
	defer limiter.Stop()

	limiter.Allow("10.0.0.1")
	require.Equal(t, 1, limiter.Clients())

	limiter.removeStale(time.Now().Add(30 * time.Second))
	assert.Equal(t, 1, limiter.Clients())
	limiter.removeStale(time.Now().Add(2 * time.Minute))
	assert.Zero(t, limiter.Clients())
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		proxies []string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "direct", remote: "1.2.3.4:5000", want: "1.2.3.4"},
		{name: "untrusted forwarded header ignored", remote: "1.2.3.4:5000",
			headers: map[string]string{"X-Forwarded-For": "9.9.9.9"}, want: "1.2.3.4"},
		{name: "trusted proxy cidr", proxies: []string{"10.0.0.0/8"}, remote: "10.1.1.1:80",
			headers: map[string]string{"X-Forwarded-For": "9.9.9.9, 10.1.1.1"}, want: "9.9.9.9"},
		{name: "trusted single ip with real ip", proxies: []string{"10.1.1.1"}, remote: "10.1.1.1:80",
			headers: map[string]string{"X-Real-IP": "8.8.8.8"}, want: "8.8.8.8"},
		{name: "invalid forwarded value", proxies: []string{"10.0.0.0/8"}, remote: "10.1.1.1:80",
			headers: map[string]string{"X-Forwarded-For": "garbage"}, want: "10.1.1.1"},
		{name: "no port", remote: "5.6.7.8", want: "5.6.7.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewPerIPLimiter(PerIPConfig{TrustedProxies: tt.proxies})
			defer limiter.Stop()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, limiter.ClientIP(req))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	limiter := NewPerIPLimiter(PerIPConfig{Rate: 0.001, Burst: 1})
	defer limiter.Stop()

	rejected := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(limiter,
		WithOnReject(func(*http.Request, string) { rejected++ }),
		WithSkip(func(r *http.Request) bool { return r.Method == http.MethodOptions }),
	)(next)

	do := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/users", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := do(http.MethodGet)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := do(http.MethodGet)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, MessageTooManyRequests, body["error"])
	assert.Equal(t, 1, rejected)

	assert.Equal(t, http.StatusOK, do(http.MethodOptions).Code)
}

func TestMiddleware_NilLimiter(t *testing.T) {
	t.Parallel()
	called := false
	h := Middleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
