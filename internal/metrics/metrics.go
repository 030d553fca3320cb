// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "places_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Geocoding Metrics
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_geocode_requests_total",
			Help: "Total number of geocoding lookups by outcome",
		},
		[]string{"outcome"}, // "ok", "no_results", "error", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "places_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// Place lifecycle Metrics
	PlaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_operations_total",
			Help: "Place lifecycle operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ImageCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "places_image_cleanup_failures_total",
			Help: "Stored images that could not be removed during cleanup",
		},
	)
)
