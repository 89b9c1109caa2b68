// Package metrics holds the Prometheus collectors shared across the
// service. Collectors are registered once via promauto at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// NotesPurgedTotal counts notes hard-deleted by the retention sweeper.
	NotesPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notes_purged_total",
			Help: "Total number of soft-deleted notes purged by the retention sweeper",
		},
	)

	// SearchFallbackTotal counts searches that degraded from the full-text
	// index to substring matching.
	SearchFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "note_search_fallback_total",
			Help: "Total number of note searches served by the substring fallback",
		},
	)
)
