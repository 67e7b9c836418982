package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================================
// PROMETHEUS METRICS
// ============================================================================

var (
	// requestsTotal counts finished HTTP requests.
	// Labels: method, route (chi pattern, not raw path), status code.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// requestDuration measures end-to-end handler latency. Streaming chat
	// requests span the whole SSE stream, hence the long tail buckets.
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ragcore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds by method and route",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"method", "route"})

	// chatTurns counts completed conversation turns.
	// Labels: mode (json, stream), final answer status.
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Subsystem: "chat",
		Name:      "turns_total",
		Help:      "Completed chat turns by transport mode and final status",
	}, []string{"mode", "status"})
)
