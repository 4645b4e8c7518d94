package testing

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ohler55/ojg/jp"
)

// RequestLog represents a request that reached the mock server.
type RequestLog struct {
	// Method is the HTTP method (GET, POST, etc.)
	Method string
	// Path is the request URL path
	Path string
	// Query is the parsed query string
	Query url.Values
	// Headers are the request headers
	Headers http.Header
	// Body is the request body content
	Body string
	// Status is the status code the server answered with
	Status int
}

// AssertQueryParam asserts that the request had the specified query parameter.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	if !r.Query.Has(key) {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if actual := r.Query.Get(key); actual != expected {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

// AssertJSONBody asserts that the request body matches the expected JSON.
// The expected value can be a string, []byte, or any value that will be JSON encoded.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()
	assertJSONEqual(t, "request body", []byte(r.Body), expected)
}

// Response is a response returned by MockServer.Do.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into v and fails the test on error.
func (r *Response) Decode(t testing.TB, v any) {
	t.Helper()

	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("response body is not valid JSON: %v\nbody: %s", err, r.Body)
	}
}

// AssertStatus asserts the response status code.
func (r *Response) AssertStatus(t testing.TB, expected int) *Response {
	t.Helper()

	if r.Status != expected {
		t.Errorf("status mismatch\nexpected: %d\nactual: %d\nbody: %s", expected, r.Status, r.Body)
	}
	return r
}

// AssertHeader asserts that the response carries the header with the expected value.
func (r *Response) AssertHeader(t testing.TB, key, expected string) *Response {
	t.Helper()

	if _, ok := r.Header[http.CanonicalHeaderKey(key)]; !ok {
		t.Errorf("response does not have header %q", key)
		return r
	}
	if actual := r.Header.Get(key); actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
	return r
}

// AssertBodyContains asserts that the response body contains the substring.
func (r *Response) AssertBodyContains(t testing.TB, substr string) *Response {
	t.Helper()

	if !strings.Contains(string(r.Body), substr) {
		t.Errorf("response body does not contain %q\nbody: %s", substr, r.Body)
	}
	return r
}

// AssertJSON asserts that the response body matches the expected JSON.
func (r *Response) AssertJSON(t testing.TB, expected any) *Response {
	t.Helper()
	assertJSONEqual(t, "response body", r.Body, expected)
	return r
}

// JSONField extracts a field from the response body.
// Nested fields use dot notation and array elements use their index,
// for example "results.0.title".
// Returns nil if the body is not valid JSON or the field doesn't exist.
func (r *Response) JSONField(field string) any {
	var current any
	if err := json.Unmarshal(r.Body, &current); err != nil {
		return nil
	}

	for _, part := range strings.Split(field, ".") {
		switch v := current.(type) {
		case map[string]any:
			current = v[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			current = v[i]
		default:
			return nil
		}
	}
	return current
}

// AssertJSONField asserts that a field of the response body has the expected
// value. Expected values are compared after a JSON round trip, so 1 matches
// the decoded float64 1.
func (r *Response) AssertJSONField(t testing.TB, field string, expected any) *Response {
	t.Helper()

	actual := r.JSONField(field)
	if actual == nil && expected != nil {
		t.Errorf("JSON field %q not found in response body: %s", field, r.Body)
		return r
	}

	want, err := normalizeJSON(expected)
	if err != nil {
		t.Errorf("failed to marshal expected value: %v", err)
		return r
	}
	if !reflect.DeepEqual(actual, want) {
		t.Errorf("JSON field %q mismatch\nexpected: %v (%T)\nactual: %v (%T)",
			field, want, want, actual, actual)
	}
	return r
}

// JSONPath evaluates a JSONPath expression such as "$.results[*].id"
// against the response body and returns every match.
func (r *Response) JSONPath(t testing.TB, path string) []any {
	t.Helper()

	expr, err := jp.ParseString(path)
	if err != nil {
		t.Fatalf("invalid JSONPath %q: %v", path, err)
	}
	var data any
	if err := json.Unmarshal(r.Body, &data); err != nil {
		t.Fatalf("response body is not valid JSON: %v\nbody: %s", err, r.Body)
	}
	return expr.Get(data)
}

// AssertJSONPath asserts that path selects exactly the expected values, in
// order. A single expected value is compared against a single match.
func (r *Response) AssertJSONPath(t testing.TB, path string, expected ...any) *Response {
	t.Helper()

	got := r.JSONPath(t, path)
	if expected == nil {
		expected = []any{}
	}
	want, err := normalizeJSON(expected)
	if err != nil {
		t.Errorf("failed to marshal expected value: %v", err)
		return r
	}
	if got == nil {
		got = []any{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JSONPath %q mismatch\nexpected: %v\nactual: %v", path, want, got)
	}
	return r
}

func assertJSONEqual(t testing.TB, what string, body []byte, expected any) {
	t.Helper()

	var want any
	switch v := expected.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &want); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	case []byte:
		if err := json.Unmarshal(v, &want); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	default:
		var err error
		if want, err = normalizeJSON(v); err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
	}

	var actual any
	if err := json.Unmarshal(body, &actual); err != nil {
		t.Errorf("%s is not valid JSON: %v\nbody: %s", what, err, body)
		return
	}

	if !reflect.DeepEqual(actual, want) {
		wantBytes, _ := json.MarshalIndent(want, "", "  ")
		actualBytes, _ := json.MarshalIndent(actual, "", "  ")
		t.Errorf("%s does not match expected JSON\nexpected:\n%s\nactual:\n%s", what, wantBytes, actualBytes)
	}
}

func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}
