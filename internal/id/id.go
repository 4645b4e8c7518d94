package id

import (
	"strconv"

	"github.com/google/uuid"
)

// Next returns the id that follows the largest of ids, or 1 when ids is empty.
// Non-positive values are ignored.
func Next(ids ...int64) int64 {
	var maxID int64
	for _, v := range ids {
		if v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

// Parse converts a path segment into a record id.
// Only base-10 positive integers are accepted.
func Parse(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Format renders a record id the way it appears in paths and messages.
func Format(n int64) string {
	return strconv.FormatInt(n, 10)
}

// RequestID generates a UUID v4 used to correlate a request across log lines.
func RequestID() string {
	return uuid.NewString()
}
