// Package id provides identifier helpers shared across the codebase.
//
// Records use positive integer identifiers allocated as one past the
// largest identifier ever seen in a collection:
//
//   - Next: computes max+1 over a set of existing ids (1 when empty)
//   - Parse: converts a path segment into a record id
//
// Requests are tagged with random identifiers:
//
//   - RequestID: UUID v4 string via github.com/google/uuid
//   - Short: 16-character hex ids for log correlation
package id
