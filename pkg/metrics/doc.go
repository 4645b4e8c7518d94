// Package metrics provides Prometheus-compatible metrics for the mock API.
//
// The package writes the Prometheus text exposition format
// (text/plain; version=0.0.4) itself. Counters, gauges and histograms are
// safe for concurrent use and may carry labels.
//
// New builds the metric set used by the server:
//
//   - mockrest_http_requests_total{method,route,status}
//   - mockrest_http_request_duration_seconds{method,route}
//   - mockrest_store_operations_total{resource,action}
//   - mockrest_store_errors_total{resource,action,kind}
//   - mockrest_store_resets_total
//   - mockrest_store_records{resource}
//   - mockrest_ratelimit_rejected_total
//   - mockrest_uptime_seconds, go_goroutines, go_memstats_heap_alloc_bytes
//
// Gauges that mirror live state are refreshed by collectors registered with
// Registry.OnCollect, which run on every scrape.
//
//	m := metrics.New()
//	m.WatchStore(store)
//	store.SetObserver(m.Observer())
//	mux.Handle("GET /metrics", m.Registry.Handler())
package metrics
