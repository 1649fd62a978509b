// Package metrics holds the Prometheus collectors for AmanWeb.
//
// Collectors register with the default registry at init, so any binary that
// links a pipeline component exposes them through promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ResearchTotal counts research requests by mode, path and outcome.
	ResearchTotal *prometheus.CounterVec

	// ResearchDuration measures end-to-end research latency.
	ResearchDuration *prometheus.HistogramVec

	// ResearchResults observes how many results a request returned.
	ResearchResults *prometheus.HistogramVec

	// EngineAttempts counts SearXNG calls per engine-ladder strategy.
	EngineAttempts *prometheus.CounterVec

	// LLMCallsTotal counts Ollama calls by endpoint and outcome.
	LLMCallsTotal *prometheus.CounterVec

	// LLMDuration measures Ollama call latency.
	LLMDuration *prometheus.HistogramVec

	// FetchTotal counts page fetches by strategy and outcome.
	FetchTotal *prometheus.CounterVec

	// CircuitBreakerState reports breaker state (0=closed, 0.5=half-open, 1=open).
	CircuitBreakerState *prometheus.GaugeVec

	// HTTPRequestsTotal counts HTTP API requests by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec
)

var latencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60}

func init() {
	ResearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amanweb",
			Subsystem: "research",
			Name:      "requests_total",
			Help:      "Total research requests",
		},
		[]string{"mode", "path", "status"},
	)

	ResearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "amanweb",
			Subsystem: "research",
			Name:      "duration_seconds",
			Help:      "Research request duration in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"path"},
	)

	ResearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "amanweb",
			Subsystem: "research",
			Name:      "results",
			Help:      "Number of results returned per research request",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		},
		[]string{"path"},
	)

	EngineAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amanweb",
			Subsystem: "searxng",
			Name:      "attempts_total",
			Help:      "SearXNG calls per engine-ladder strategy",
		},
		[]string{"strategy", "status"},
	)

	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amanweb",
			Subsystem: "ollama",
			Name:      "calls_total",
			Help:      "Ollama API calls",
		},
		[]string{"endpoint", "status"},
	)

	LLMDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "amanweb",
			Subsystem: "ollama",
			Name:      "duration_seconds",
			Help:      "Ollama call duration in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"endpoint"},
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amanweb",
			Subsystem: "fetch",
			Name:      "pages_total",
			Help:      "Page fetches by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "amanweb",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
		},
		[]string{"name"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amanweb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP API requests",
		},
		[]string{"route", "code"},
	)

	prometheus.MustRegister(
		ResearchTotal,
		ResearchDuration,
		ResearchResults,
		EngineAttempts,
		LLMCallsTotal,
		LLMDuration,
		FetchTotal,
		CircuitBreakerState,
		HTTPRequestsTotal,
	)
}

// RecordResearch records a completed research request.
func RecordResearch(mode, path, status string, durationSec float64, results int) {
	ResearchTotal.WithLabelValues(mode, path, status).Inc()
	ResearchDuration.WithLabelValues(path).Observe(durationSec)
	ResearchResults.WithLabelValues(path).Observe(float64(results))
}

// RecordEngineAttempt records one engine-ladder step.
func RecordEngineAttempt(strategy, status string) {
	EngineAttempts.WithLabelValues(strategy, status).Inc()
}

// RecordLLMCall records one Ollama call.
func RecordLLMCall(endpoint, status string, durationSec float64) {
	LLMCallsTotal.WithLabelValues(endpoint, status).Inc()
	LLMDuration.WithLabelValues(endpoint).Observe(durationSec)
}

// RecordFetch records a page fetch outcome.
func RecordFetch(strategy, outcome string) {
	if strategy == "" {
		strategy = "none"
	}
	FetchTotal.WithLabelValues(strategy, outcome).Inc()
}

// SetCircuitBreakerState sets the gauge for a named breaker.
func SetCircuitBreakerState(name, state string) {
	var val float64
	switch state {
	case "closed":
		val = 0.0
	case "half-open":
		val = 0.5
	case "open":
		val = 1.0
	}
	CircuitBreakerState.WithLabelValues(name).Set(val)
}

// RecordHTTPRequest records an HTTP API request.
func RecordHTTPRequest(route, code string) {
	HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}
