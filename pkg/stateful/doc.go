// Package stateful provides the in-memory resource collections behind the
// mock REST API.
//
// Each Resource is an ordered collection of Records identified by positive
// integer ids. Ids are allocated as one past the highest id the collection
// has ever held, so they are never reused after a delete.
//
// Core Types:
//
//   - StateStore: registry of all resources for one server instance
//   - Resource: one collection plus its ResourceConfig
//   - Record: a single JSON object
//   - Query: filters, free-text search and pagination for list calls
//   - Bridge: the service layer handlers call; it validates payloads, checks
//     references and only then mutates a collection
//
// Thread Safety:
//
// Every Resource owns a sync.RWMutex. Reads run concurrently; creates,
// updates and deletes are serialized per resource, and id allocation happens
// under the same write lock as the append.
//
// Usage:
//
//	store := stateful.NewStateStore()
//	_ = store.Register(&stateful.ResourceConfig{
//	    Name:     "albums",
//	    Singular: "album",
//	    Label:    "Album",
//	})
//	bridge := stateful.NewBridge(store)
//	res := bridge.Execute(ctx, &stateful.OperationRequest{
//	    Resource: "albums",
//	    Action:   stateful.ActionCreate,
//	    Data:     map[string]any{"userId": 1, "title": "x"},
//	})
package stateful
