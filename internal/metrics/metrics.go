package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheEvents counts cache activity per store. event: hit|miss|set|del|evict|clear.
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "destinations", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels/evictions."},
		[]string{"cache", "event"},
	)
	// EstimationFallbacks counts flight estimates that fell back to the name heuristic.
	EstimationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "destinations", Name: "flight_estimation_fallbacks_total", Help: "Flight estimates computed without coordinates."},
	)
	// DatasetFailures counts queries answered empty because reference data was unavailable.
	DatasetFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "destinations", Name: "dataset_unavailable_total", Help: "Queries degraded by missing reference data."},
	)
	// ExternalLookups counts outbound lookups. outcome: ok|error.
	ExternalLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "destinations", Name: "external_lookups_total", Help: "Outbound lookups by service and outcome."},
		[]string{"service", "outcome"},
	)
)

// NewRegistry returns a registry with all collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(CacheEvents, EstimationFallbacks, DatasetFailures, ExternalLookups)
	return reg
}

// Handler exposes reg in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveExternal(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalLookups.WithLabelValues(service, outcome).Inc()
}
