// Package cli implements the mockrest command line.
//
// Commands:
//
//	serve       start the mock API server
//	resources   list the resources, their routes and record counts
//	validate    check fixtures against their schemas and references
//	openapi     print the generated OpenAPI document
//	version     print build information
//
// Settings resolve in the order defaults, config file, MOCKREST_*
// environment variables, flags; later sources win.
package cli
