package stateful

import (
	"maps"
	"sync"
	"time"

	"github.com/getmockd/mockrest/internal/id"
)

// Resource is one ordered collection of records.
type Resource struct {
	mu     sync.RWMutex
	config *ResourceConfig
	items  []Record
	// highest id ever held; the next id is always above it
	highWater int64
	now       func() time.Time
}

// NewResource creates a Resource and loads a defensive copy of its seed data.
func NewResource(config *ResourceConfig) *Resource {
	r := &Resource{config: config, now: time.Now}
	r.loadSeed()
	return r
}

func (r *Resource) loadSeed() {
	r.items = make([]Record, 0, len(r.config.SeedData))
	r.highWater = 0
	for _, seed := range r.config.SeedData {
		rec := seed.Clone()
		if r.config.Normalize != nil {
			r.config.Normalize(rec)
		}
		r.items = append(r.items, rec)
		r.highWater = max(r.highWater, rec.ID())
	}
}

// nextID must be called with the write lock held.
func (r *Resource) nextID() int64 {
	ids := make([]int64, 0, len(r.items)+1)
	ids = append(ids, r.highWater)
	for _, rec := range r.items {
		ids = append(ids, rec.ID())
	}
	return id.Next(ids...)
}

// indexOf must be called with a lock held.
func (r *Resource) indexOf(recordID int64) int {
	for i, rec := range r.items {
		if rec.ID() == recordID {
			return i
		}
	}
	return -1
}

func (r *Resource) notFound(recordID int64) *NotFoundError {
	return &NotFoundError{Resource: r.config.Name, Label: r.config.Label, ID: id.Format(recordID)}
}

// List returns a copy of every record in insertion order.
func (r *Resource) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, len(r.items))
	for i, rec := range r.items {
		out[i] = rec.Clone()
	}
	return out
}

// Query runs the list pipeline under the read lock and returns copies.
func (r *Resource) Query(q *Query) *Page {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page := ApplyQuery(r.items, q)
	for i, rec := range page.Results {
		page.Results[i] = rec.Clone()
	}
	return page
}

// Get returns a copy of the record with the given id, or nil.
func (r *Resource) Get(recordID int64) Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(recordID); i >= 0 {
		return r.items[i].Clone()
	}
	return nil
}

// Exists reports whether a record with the given id is present.
func (r *Resource) Exists(recordID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(recordID) >= 0
}

// Create assigns the next id, appends the record and returns a copy of what
// was stored. Any client-supplied id is overwritten.
func (r *Resource) Create(data Record) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := data.Clone()
	if rec == nil {
		rec = Record{}
	}
	if r.config.OnCreate != nil {
		r.config.OnCreate(rec, r.now())
	}
	newID := r.nextID()
	rec["id"] = newID
	r.highWater = newID
	r.items = append(r.items, rec)
	return rec.Clone()
}

// Update shallow-merges patch over the existing record, forces the id back
// to recordID and writes the result to the same position.
func (r *Resource) Update(recordID int64, patch Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(recordID)
	if i < 0 {
		return nil, r.notFound(recordID)
	}

	merged := r.items[i].Clone()
	maps.Copy(merged, patch.Clone())
	merged["id"] = recordID
	if r.config.OnUpdate != nil {
		r.config.OnUpdate(merged, r.now())
	}
	r.items[i] = merged
	return merged.Clone(), nil
}

// Delete removes the record, keeping the relative order of the rest, and
// returns the removed value.
func (r *Resource) Delete(recordID int64) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(recordID)
	if i < 0 {
		return nil, r.notFound(recordID)
	}

	removed := r.items[i]
	r.items = append(r.items[:i], r.items[i+1:]...)
	return removed, nil
}

// Reset restores the resource to its seed data.
func (r *Resource) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadSeed()
}

// Clear removes every record. The id high-water mark is kept.
func (r *Resource) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.items)
	r.items = make([]Record, 0)
	return count
}

// Count returns the number of records in the resource.
func (r *Resource) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Info returns information about this resource.
func (r *Resource) Info() *ResourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &ResourceInfo{
		Name:      r.config.Name,
		Label:     r.config.Label,
		ItemCount: len(r.items),
		SeedCount: len(r.config.SeedData),
		NextID:    r.nextID(),
	}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return r.config.Name
}

// Config returns the resource configuration.
func (r *Resource) Config() *ResourceConfig {
	return r.config
}
