package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	gatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitgap",
		Name:      "gateway_requests_total",
		Help:      "Remote API requests by route and outcome kind.",
	}, []string{"method", "route", "kind"})

	gatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitgap",
		Name:      "gateway_request_duration_ms",
		Help:      "Remote API request duration in milliseconds.",
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2000, 5000, 10000},
	}, []string{"method", "route"})

	signalLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitgap",
		Name:      "signal_lookups_total",
		Help:      "Latest-signal lookups by outcome (hit, absent, failed).",
	}, []string{"outcome"})

	analysisPairings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitgap",
		Name:      "analysis_pairings_total",
		Help:      "Analysis-session creation attempts by outcome.",
	}, []string{"outcome"})

	sessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitgap",
		Name:      "session_transitions_total",
		Help:      "Session state transitions by target state.",
	}, []string{"to"})
)

func init() {
	registry.MustRegister(gatewayRequests, gatewayDuration, signalLookups, analysisPairings, sessionTransitions)
}

// Registry exposes the process registry for tests and exporters.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveRequest records one gateway round trip.
func ObserveRequest(method, route, kind string, d time.Duration) {
	if kind == "" {
		kind = "ok"
	}
	gatewayRequests.WithLabelValues(method, route, kind).Inc()
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	gatewayDuration.WithLabelValues(method, route).Observe(ms)
}

// IncSignalLookup counts one fan-out lookup.
func IncSignalLookup(outcome string) {
	signalLookups.WithLabelValues(outcome).Inc()
}

// IncAnalysisPairing counts one analysis-session creation attempt.
func IncAnalysisPairing(outcome string) {
	analysisPairings.WithLabelValues(outcome).Inc()
}

// IncSessionTransition counts a state change of the session manager.
func IncSessionTransition(to string) {
	sessionTransitions.WithLabelValues(to).Inc()
}

// WriteTextfile dumps the registry in Prometheus text format, for node_exporter's
// textfile collector. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, registry)
}
