package stateful

import (
	"time"

	"github.com/getmockd/mockrest/pkg/validation"
)

// MatchKind selects how a query parameter is compared with a record field.
type MatchKind string

const (
	// MatchExact compares the string form of the field with the parameter.
	MatchExact MatchKind = "exact"
	// MatchFold is MatchExact with Unicode case folding.
	MatchFold MatchKind = "fold"
	// MatchContains matches when an array field holds an element equal to the parameter.
	MatchContains MatchKind = "contains"
	// MatchBool treats the parameter as true only when it is exactly "true".
	MatchBool MatchKind = "bool"
)

// FilterSpec declares a list filter: ?<Param>=value matched against Field.
type FilterSpec struct {
	Param string    `json:"param"`
	Field string    `json:"field"`
	Match MatchKind `json:"match"`
}

// Reference declares a foreign-key field. When Item is set, Field names an
// array of objects and Item is the key inside each element.
type Reference struct {
	Field    string `json:"field"`
	Item     string `json:"item,omitempty"`
	Resource string `json:"resource"`
}

// Key returns the name used in messages: the item key for arrays, else the field.
func (r Reference) Key() string {
	if r.Item != "" {
		return r.Item
	}
	return r.Field
}

// Nested declares a child collection exposed under a parent record, e.g.
// /users/{id}/posts lists posts whose userId equals the path id.
type Nested struct {
	Child        string `json:"child"`
	ParentField  string `json:"parentField"`
	DefaultLimit int    `json:"defaultLimit,omitempty"`
}

// ResourceConfig describes one collection.
type ResourceConfig struct {
	// Name is the collection name and base path segment, e.g. "users".
	Name string
	// Singular is the key used in delete responses, e.g. "user".
	Singular string
	// Label is the capitalized noun used in messages, e.g. "User".
	Label string

	// Schema validates create and update payloads.
	Schema *validation.Schema
	// References lists foreign keys checked on create.
	References []Reference

	Filters      []FilterSpec
	SearchFields []string
	DefaultLimit int

	// Nested lists child collections reachable under this resource.
	Nested []Nested

	// OnCreate fills server-side defaults before a record is stored.
	OnCreate func(rec Record, now time.Time)
	// OnUpdate adjusts a merged record before it is written back.
	OnUpdate func(rec Record, now time.Time)
	// Normalize fills defaults on seed records at load and reset.
	Normalize func(rec Record)

	// SeedData is copied into the collection at registration and on reset.
	SeedData []Record
}

// Page is the list response envelope.
type Page struct {
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	Results []Record `json:"results"`
}

// StateOverview provides information about all registered resources.
type StateOverview struct {
	Resources    int             `json:"resources"`
	TotalItems   int             `json:"totalItems"`
	ResourceList []*ResourceInfo `json:"resourceList"`
}

// ResourceInfo provides details about a specific resource.
type ResourceInfo struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	ItemCount int    `json:"itemCount"`
	SeedCount int    `json:"seedCount"`
	NextID    int64  `json:"nextId"`
}

// ResetResponse is returned after a state reset operation.
type ResetResponse struct {
	Reset     bool     `json:"reset"`
	Resources []string `json:"resources"`
	Message   string   `json:"message"`
}

// DeleteResponse is the body returned after a successful delete.
type DeleteResponse struct {
	Message string
	Key     string
	Record  Record
}

// MarshalJSON renders {"message": ..., "<singular>": record}.
func (d DeleteResponse) MarshalJSON() ([]byte, error) {
	return marshalOrdered([]string{"message", d.Key}, map[string]any{
		"message": d.Message,
		d.Key:     d.Record,
	})
}
