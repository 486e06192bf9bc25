package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"}, // Labels
	)

	// 2. HTTP Request Duration (Histogram)
	// Measures server response time. Ingestion with a remote embedding
	// provider can take seconds, hence the wide upper buckets.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rosetta_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// 3. Fragment Count (Gauge)
	// Tracks the number of fragments in the loaded terrain.
	TotalFragments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rosetta_fragments_total",
			Help: "Total number of fragments in the terrain graph",
		},
	)

	// 4. Walk Steps (Counter)
	// Counts every navigation step taken, across all runs.
	StepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosetta_walk_steps_total",
			Help: "Total number of navigation steps taken",
		},
	)

	// 5. Snap Events (Counter)
	// Counts detected entropy collapses.
	SnapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosetta_snap_events_total",
			Help: "Total number of snap events detected",
		},
	)
)
