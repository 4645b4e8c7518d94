// Package engine serves the mock REST API over HTTP.
//
// # Routes
//
// For every registered resource R, under the configured prefix (default
// /api):
//
//	GET     /R                 list (filters, ?q= search, ?limit= and ?offset=)
//	POST    /R                 create
//	GET     /R/{id}            fetch one record
//	PUT     /R/{id}            shallow merge; PATCH is an alias
//	DELETE  /R/{id}            remove and echo the record
//	GET     /P/{id}/R          nested list scoped to a parent record
//	POST    /P/{id}/R          nested create; the parent key comes from the path
//	OPTIONS (any route)        204, empty body
//
// Operational endpoints are served without the prefix:
//
//	GET  /                     index of resources
//	GET  /health               liveness
//	GET  /openapi.json         generated OpenAPI 3 document
//	GET  /metrics              Prometheus text exposition
//	GET  /__admin/state        per-resource record counts
//	POST /__admin/reset        restore fixtures (?resource= for one)
//
// # Middleware
//
// Server.Handler wraps the router, outermost first, in: request id, access
// log, metrics, panic recovery, CORS, rate limiting. See MiddlewareChain.
//
// # Errors
//
// Not-found and other single-message failures are written as
// {"error": "..."}. Validation failures are written as
// {"errors": ["...", ...]}.
package engine
