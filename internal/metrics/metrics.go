package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// TravelLookups counts travel lookups by backend and outcome (hit, shared_hit, ok, fallback).
	TravelLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_lookups_total", Help: "Travel time lookups by backend and outcome."},
		[]string{"backend", "outcome"},
	)
	// TravelLatency tracks backend call latency in milliseconds
	TravelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "travel_backend_latency_ms", Help: "Travel backend latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000}},
		[]string{"backend"},
	)
	// TravelCacheEntries is the number of memoized travel estimates
	TravelCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "travel_cache_entries", Help: "Memoized travel estimates held in process."},
	)
	// TravelCacheEvictions counts cache generation rotations that dropped entries
	TravelCacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "travel_cache_evictions_total", Help: "Travel cache generations dropped to admit new keys."},
	)

	// PlanRuns counts planning calls by operation
	PlanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_runs_total", Help: "Planning calls by operation."},
		[]string{"operation"},
	)
	// PlanItems observes how many items each planning call produced
	PlanItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "plan_items", Help: "Items produced per planning call.", Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21}},
		[]string{"operation"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(TravelLookups)
		Registry.MustRegister(TravelLatency)
		Registry.MustRegister(TravelCacheEntries)
		Registry.MustRegister(TravelCacheEvictions)
		Registry.MustRegister(PlanRuns)
		Registry.MustRegister(PlanItems)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
