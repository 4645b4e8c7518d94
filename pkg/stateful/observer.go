package stateful

import (
	"sync/atomic"
	"time"
)

// Observer receives a callback after every Bridge operation. Implementations
// must be safe for concurrent use.
type Observer interface {
	// OnOperation is called after a successful operation. recordID is 0 for
	// list operations; count is the page size for lists and 1 otherwise.
	OnOperation(resource string, action Action, recordID int64, count int, duration time.Duration)

	// OnError is called when an operation fails.
	OnError(resource string, action Action, err error)

	// OnReset is called after a state reset.
	OnReset(resources []string, duration time.Duration)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (NoopObserver) OnOperation(string, Action, int64, int, time.Duration) {}
func (NoopObserver) OnError(string, Action, error)                       {}
func (NoopObserver) OnReset([]string, time.Duration)                     {}

// MultiObserver fans callbacks out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnOperation(resource string, action Action, recordID int64, count int, d time.Duration) {
	for _, o := range m {
		o.OnOperation(resource, action, recordID, count, d)
	}
}

func (m MultiObserver) OnError(resource string, action Action, err error) {
	for _, o := range m {
		o.OnError(resource, action, err)
	}
}

func (m MultiObserver) OnReset(resources []string, d time.Duration) {
	for _, o := range m {
		o.OnReset(resources, d)
	}
}

// CountingObserver keeps process-wide operation counters with atomics.
type CountingObserver struct {
	ops            [actionCount]atomic.Int64
	errorCount     atomic.Int64
	resetCount     atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewCountingObserver creates a new counting observer.
func NewCountingObserver() *CountingObserver {
	return &CountingObserver{}
}

func (c *CountingObserver) OnOperation(_ string, action Action, _ int64, _ int, d time.Duration) {
	if i := action.index(); i >= 0 {
		c.ops[i].Add(1)
	}
	c.totalLatencyNs.Add(int64(d))
}

func (c *CountingObserver) OnError(string, Action, error) {
	c.errorCount.Add(1)
}

func (c *CountingObserver) OnReset(_ []string, d time.Duration) {
	c.resetCount.Add(1)
	c.totalLatencyNs.Add(int64(d))
}

// Snapshot returns a point-in-time copy of the counters.
func (c *CountingObserver) Snapshot() CountSnapshot {
	return CountSnapshot{
		ListCount:    c.ops[ActionList.index()].Load(),
		GetCount:     c.ops[ActionGet.index()].Load(),
		CreateCount:  c.ops[ActionCreate.index()].Load(),
		UpdateCount:  c.ops[ActionUpdate.index()].Load(),
		DeleteCount:  c.ops[ActionDelete.index()].Load(),
		ErrorCount:   c.errorCount.Load(),
		ResetCount:   c.resetCount.Load(),
		TotalLatency: time.Duration(c.totalLatencyNs.Load()),
	}
}

// CountSnapshot is a point-in-time snapshot of CountingObserver.
type CountSnapshot struct {
	ListCount    int64         `json:"listCount"`
	GetCount     int64         `json:"getCount"`
	CreateCount  int64         `json:"createCount"`
	UpdateCount  int64         `json:"updateCount"`
	DeleteCount  int64         `json:"deleteCount"`
	ErrorCount   int64         `json:"errorCount"`
	ResetCount   int64         `json:"resetCount"`
	TotalLatency time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the number of successful operations.
func (s CountSnapshot) TotalOperations() int64 {
	return s.ListCount + s.GetCount + s.CreateCount + s.UpdateCount + s.DeleteCount
}
