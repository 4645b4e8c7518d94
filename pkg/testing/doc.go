// Package testing runs a mockrest server inside Go tests.
//
// Each MockServer gets its own store seeded from the embedded fixtures, so
// tests can create, update and delete records without affecting each other.
//
// # Basic Usage
//
//	func TestClient(t *testing.T) {
//	    mock := testing.New(t)
//	    url := mock.Start()
//
//	    resp, err := http.Get(url + "/api/users/1")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer resp.Body.Close()
//
//	    mock.AssertCalled(t, "GET", "/api/users/1")
//	}
//
// # Seeding
//
// Seed replaces the fixtures of a resource before the server starts:
//
//	mock := testing.New(t).
//	    Seed("todos",
//	        map[string]any{"id": 1, "userId": 1, "title": "write tests", "completed": false},
//	    )
//
// Seeded records are validated against the resource schema on Start.
//
// # Requests and Assertions
//
// Do, Get and Post issue requests against the running server and return a
// Response with assertion helpers:
//
//	mock.Post("/api/todos", map[string]any{"userId": 1, "title": "x"}).
//	    AssertStatus(t, http.StatusCreated).
//	    AssertJSONField(t, "completed", false)
//
// Every request that reaches the server is recorded and can be inspected
// with Requests, AssertCalled, AssertCalledTimes and AssertNotCalled. Path
// patterns may use {name} segments, for example "/api/users/{id}".
//
// # Reset
//
// Reset restores every resource to its seed data and clears the request log.
package testing
