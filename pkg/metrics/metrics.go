package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	// BackendCommands counts command requests by node and outcome
	// (ok, degraded, unavailable).
	BackendCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "optimusddc",
			Name:      "backend_commands_total",
			Help:      "Backend command requests by outcome.",
		},
		[]string{"node", "outcome"},
	)

	BackendCommandDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "optimusddc",
			Name:      "backend_command_duration_seconds",
			Help:      "Backend command round-trip duration.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PayloadUnwraps counts how many string-unwrap passes responses needed.
	PayloadUnwraps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "optimusddc",
			Name:      "payload_unwraps_total",
			Help:      "String-wrapped JSON unwrap passes performed.",
		},
	)

	MalformedPayloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "optimusddc",
			Name:      "malformed_payloads_total",
			Help:      "Backend replies dropped as unparseable.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "optimusddc",
			Name:      "http_requests_total",
			Help:      "HTTP requests served by method and status.",
		},
		[]string{"method", "status"},
	)

	IndexerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "optimusddc",
			Name:      "indexer_runs_total",
			Help:      "Background indexer runs by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		BackendCommands,
		BackendCommandDuration,
		PayloadUnwraps,
		MalformedPayloads,
		HTTPRequests,
		IndexerRuns,
	)
}

// Handler serves the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
