// Package openapi generates an OpenAPI 3 description of the mock API from
// the registered resource configurations.
package openapi
