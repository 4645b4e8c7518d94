package metrics

import (
	"errors"
	"runtime"
	"time"

	"github.com/getmockd/mockrest/pkg/stateful"
)

// Metrics is the metric set exposed by the server.
type Metrics struct {
	Registry *Registry

	// RequestsTotal labels: method, route, status.
	RequestsTotal *Counter
	// RequestDuration labels: method, route.
	RequestDuration *Histogram

	// OperationsTotal labels: resource, action.
	OperationsTotal *Counter
	// OperationErrors labels: resource, action, kind (not_found, validation,
	// malformed, internal).
	OperationErrors *Counter
	ResetsTotal     *Counter
	// Records labels: resource.
	Records *Gauge

	RateLimited *Counter

	Uptime     *Gauge
	Goroutines *Gauge
	HeapAlloc  *Gauge

	startTime time.Time
}

// New creates a registry with every server metric registered and a
// collector that refreshes the runtime gauges.
func New() *Metrics {
	r := NewRegistry()
	m := &Metrics{
		Registry:        r,
		RequestsTotal:   r.NewCounter("mockrest_http_requests_total", "Total HTTP requests served", "method", "route", "status"),
		RequestDuration: r.NewHistogram("mockrest_http_request_duration_seconds", "HTTP request latency in seconds", DefaultBuckets, "method", "route"),
		OperationsTotal: r.NewCounter("mockrest_store_operations_total", "Successful store operations", "resource", "action"),
		OperationErrors: r.NewCounter("mockrest_store_errors_total", "Failed store operations", "resource", "action", "kind"),
		ResetsTotal:     r.NewCounter("mockrest_store_resets_total", "Fixture resets performed"),
		Records:         r.NewGauge("mockrest_store_records", "Records currently held per resource", "resource"),
		RateLimited:     r.NewCounter("mockrest_ratelimit_rejected_total", "Requests rejected by the rate limiter"),
		Uptime:          r.NewGauge("mockrest_uptime_seconds", "Seconds since the server started"),
		Goroutines:      r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		HeapAlloc:       r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		startTime:       time.Now(),
	}
	r.OnCollect(m.collectRuntime)
	return m
}

func (m *Metrics) collectRuntime() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	_ = m.Uptime.Set(time.Since(m.startTime).Seconds())
	_ = m.Goroutines.Set(float64(runtime.NumGoroutine()))
	_ = m.HeapAlloc.Set(float64(mem.HeapAlloc))
}

// WatchStore refreshes the per-resource record gauge from store on every scrape.
func (m *Metrics) WatchStore(store *stateful.StateStore) {
	m.Registry.OnCollect(func() {
		for _, info := range store.Overview().ResourceList {
			if vec, err := m.Records.WithLabels(info.Name); err == nil {
				vec.Set(float64(info.ItemCount))
			}
		}
	})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if vec, err := m.RequestsTotal.WithLabels(method, route, status); err == nil {
		_ = vec.Inc()
	}
	if vec, err := m.RequestDuration.WithLabels(method, route); err == nil {
		vec.Observe(d.Seconds())
	}
}

// Observer returns a stateful.Observer that feeds the store metrics.
func (m *Metrics) Observer() stateful.Observer {
	return storeObserver{m: m}
}

type storeObserver struct {
	m *Metrics
}

func (o storeObserver) OnOperation(resource string, action stateful.Action, _ int64, _ int, _ time.Duration) {
	if vec, err := o.m.OperationsTotal.WithLabels(resource, string(action)); err == nil {
		_ = vec.Inc()
	}
}

func (o storeObserver) OnError(resource string, action stateful.Action, err error) {
	if vec, lerr := o.m.OperationErrors.WithLabels(resource, string(action), ErrorKind(err)); lerr == nil {
		_ = vec.Inc()
	}
}

func (o storeObserver) OnReset(_ []string, _ time.Duration) {
	_ = o.m.ResetsTotal.Inc()
}

// ErrorKind classifies a store error for the kind label.
func ErrorKind(err error) string {
	var (
		nf *stateful.NotFoundError
		ve *stateful.ValidationError
		mb *stateful.MalformedBodyError
	)
	switch {
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &mb):
		return "malformed"
	default:
		return "internal"
	}
}
