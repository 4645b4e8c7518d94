package resources

import (
	"strings"
	"time"

	"github.com/getmockd/mockrest/pkg/stateful"
)

// DefaultPostCategory is assigned to posts created without a category.
const DefaultPostCategory = "General"

// DefaultOrderStatus is assigned to orders created without a status.
const DefaultOrderStatus = "Processing"

// Slug lowercases title, collapses every run of characters outside [a-z0-9]
// into a single "-" and trims leading and trailing dashes.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

func setDefault(rec stateful.Record, key string, value any) {
	if _, ok := rec[key]; !ok {
		rec[key] = value
	}
}

func createPost(rec stateful.Record, now time.Time) {
	title, _ := rec["title"].(string)
	rec["slug"] = Slug(title)
	setDefault(rec, "tags", []any{})
	setDefault(rec, "category", DefaultPostCategory)
	ts := timestamp(now)
	rec["createdAt"] = ts
	rec["updatedAt"] = ts
}

func normalizePost(rec stateful.Record) {
	if _, ok := rec["slug"]; !ok {
		title, _ := rec["title"].(string)
		rec["slug"] = Slug(title)
	}
	setDefault(rec, "tags", []any{})
	setDefault(rec, "category", DefaultPostCategory)
}

func touchUpdatedAt(rec stateful.Record, now time.Time) {
	rec["updatedAt"] = timestamp(now)
}

func stampCreatedAt(rec stateful.Record, now time.Time) {
	rec["createdAt"] = timestamp(now)
}

func createTodo(rec stateful.Record, _ time.Time) {
	setDefault(rec, "completed", false)
}

func createOrder(rec stateful.Record, now time.Time) {
	setDefault(rec, "status", DefaultOrderStatus)
	stampCreatedAt(rec, now)
}

func normalizeOrder(rec stateful.Record) {
	setDefault(rec, "status", DefaultOrderStatus)
}
