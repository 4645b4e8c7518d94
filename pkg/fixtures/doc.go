// Package fixtures loads seed data for every resource.
//
// The embedded set compiled into the binary is always loaded first. An
// optional override directory is searched recursively for <resource>.json
// files; each one found replaces the embedded array for that resource.
// Every record is checked against the resource's JSON Schema before the
// store is built, and CheckIntegrity reports foreign keys that point at
// records missing from the seed.
package fixtures
