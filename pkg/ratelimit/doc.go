// Package ratelimit throttles API clients by IP address using
// golang.org/x/time/rate token buckets.
package ratelimit
