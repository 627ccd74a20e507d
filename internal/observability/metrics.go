package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BridgeCalls tracks bridge method invocations by outcome
	BridgeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_bridge_calls_total",
			Help: "Number of bridge method invocations",
		},
		[]string{"method", "outcome"},
	)

	// CallDuration tracks time from bridge call to terminal response
	CallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "auth_bridge_call_duration_seconds",
			Help: "Duration from bridge call to terminal response in seconds",
		},
		[]string{"method"},
	)

	// EngineResponses tracks responses streamed from the auth engine
	EngineResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_bridge_engine_responses_total",
			Help: "Number of responses received from the auth engine",
		},
		[]string{"method", "status"},
	)

	// SuppressedCallbacks tracks responses dropped after session teardown
	SuppressedCallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_bridge_suppressed_callbacks_total",
			Help: "Number of engine responses dropped after session cleanup",
		},
	)

	// ActiveConnections tracks active bridge connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_bridge_active_connections",
			Help: "Number of active bridge connections",
		},
	)

	// ActiveRequests tracks in-flight HTTP requests on the demo server
	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_bridge_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// RequestDuration tracks HTTP request duration on the demo server
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "auth_bridge_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)
)
