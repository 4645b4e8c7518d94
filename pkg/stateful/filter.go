package stateful

import (
	"strings"

	"golang.org/x/text/cases"
)

// Condition is one list filter bound to the value taken from the query string.
type Condition struct {
	Spec  FilterSpec
	Value string
}

// Query holds the list parameters for one request. Conditions are ANDed.
type Query struct {
	Conditions   []Condition
	Search       string
	SearchFields []string
	Limit        int
	Offset       int
}

// ApplyQuery runs the list pipeline: filters, then search, then the total is
// taken, then the [offset, offset+limit) window is sliced out.
func ApplyQuery(items []Record, q *Query) *Page {
	if q == nil {
		q = &Query{Limit: len(items)}
	}

	filtered := make([]Record, 0, len(items))
	for _, rec := range items {
		if !matchesAll(rec, q.Conditions) {
			continue
		}
		if q.Search != "" && !MatchesSearch(rec, q.Search, q.SearchFields) {
			continue
		}
		filtered = append(filtered, rec)
	}

	page := Paginate(filtered, q.Offset, q.Limit)
	return &Page{
		Total:   len(filtered),
		Limit:   q.Limit,
		Offset:  q.Offset,
		Results: page,
	}
}

func matchesAll(rec Record, conds []Condition) bool {
	for _, c := range conds {
		if !Matches(rec, c) {
			return false
		}
	}
	return true
}

// Matches reports whether rec satisfies a single condition.
func Matches(rec Record, c Condition) bool {
	field := c.Spec.Field
	if field == "" {
		field = c.Spec.Param
	}
	v, ok := rec[field]

	switch c.Spec.Match {
	case MatchBool:
		b, isBool := v.(bool)
		return isBool && b == (c.Value == "true")
	case MatchFold:
		return ok && fold(FieldString(v)) == fold(c.Value)
	case MatchContains:
		arr, isArr := v.([]any)
		if !isArr {
			return false
		}
		for _, e := range arr {
			if FieldString(e) == c.Value {
				return true
			}
		}
		return false
	default:
		return ok && FieldString(v) == c.Value
	}
}

// MatchesSearch reports whether any of fields contains term, ignoring case.
func MatchesSearch(rec Record, term string, fields []string) bool {
	needle := fold(term)
	for _, f := range fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}
		if strings.Contains(fold(FieldString(v)), needle) {
			return true
		}
	}
	return false
}

// fold applies Unicode case folding. A Caser is not safe for concurrent
// use, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Paginate returns the [offset, offset+limit) window of items.
// Out-of-range offsets and a zero limit yield an empty, non-nil slice.
func Paginate(items []Record, offset, limit int) []Record {
	total := len(items)
	start := max(offset, 0)
	if start > total {
		start = total
	}
	end := start + max(limit, 0)
	if end > total || end < start {
		end = total
	}
	out := make([]Record, 0, end-start)
	out = append(out, items[start:end]...)
	return out
}
