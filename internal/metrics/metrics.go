// Package metrics holds the Prometheus collectors shared by the cache,
// the vector store and the front ends. Collectors live on a dedicated
// registry that the HTTP service exposes at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheExpired = "expired"
	CacheInvalid = "invalid"
)

// Flush item outcomes.
const (
	FlushIndexed = "indexed"
	FlushDropped = "dropped"
)

var (
	// Registry is the registry every nova collector is registered on.
	Registry = prometheus.NewRegistry()

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_cache_requests_total",
			Help: "Result cache lookups by cache and outcome",
		},
		[]string{"cache", "result"},
	)
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_cache_evictions_total",
			Help: "Entries evicted because the cache was full",
		},
		[]string{"cache"},
	)
	CacheRejects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_cache_rejected_puts_total",
			Help: "Puts skipped because the payload failed validation",
		},
		[]string{"cache"},
	)
	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nova_cache_entries",
			Help: "Live entries per result cache",
		},
		[]string{"cache"},
	)
	FlushItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_flush_items_total",
			Help: "Records processed by flush, by outcome",
		},
		[]string{"outcome"},
	)
	PendingRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nova_pending_records",
			Help: "Records waiting for the next flush",
		},
	)
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_search_requests_total",
			Help: "Search requests by front end",
		},
		[]string{"frontend"},
	)
	EmbeddingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nova_embedding_duration_seconds",
			Help:    "Latency of embedding provider calls",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"call"},
	)
)

func init() {
	Registry.MustRegister(
		CacheRequests, CacheEvictions, CacheRejects, CacheEntries,
		FlushItems, PendingRecords, SearchRequests, EmbeddingDuration,
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
