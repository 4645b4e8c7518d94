// Package requestlog captures requests made against the mock API so they can
// be inspected through the admin endpoints.
//
// It is distinct from operational logging (which uses log/slog): entries
// keep the request body and response status, not log lines.
//
// # Usage
//
//	journal := requestlog.NewMemoryStore(1000)
//	journal.Log(&requestlog.Entry{
//	    Method:         "POST",
//	    Path:           "/api/todos",
//	    ResponseStatus: 201,
//	})
//
//	recent := journal.List(&requestlog.Filter{Method: "POST", Limit: 10})
//
// The memory store keeps the newest entries up to its capacity and returns
// them newest first.
package requestlog
