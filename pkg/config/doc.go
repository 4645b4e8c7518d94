// Package config defines the server configuration and loads it from
// defaults, an optional YAML or JSON file and MOCKREST_* environment
// variables, in that order of precedence (lowest first). Command-line flags
// are applied on top by the cli package.
//
// A configuration file looks like:
//
//	port: 3000
//	prefix: /api
//	prettyJSON: true
//	fixturesDir: ./fixtures
//	log:
//	  level: debug
//	  format: json
//	rateLimit:
//	  enabled: true
//	  requestsPerSecond: 50
//
// ${VAR} and ${VAR:-default} references in the file are expanded before
// parsing.
package config
