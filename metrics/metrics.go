// Package metrics exports the Prometheus metrics of the API.
//
// HTTP traffic:
//   - http_request_total: counter with method, path and status labels
//   - http_request_duration_seconds: histogram with method and path labels
//   - http_request_in_flight: gauge of concurrent requests
//   - rate_limiter_buckets_total: gauge of tracked client buckets
//
// Domain:
//   - disease_predictions_total: counter with an outcome label (matched, unknown)
//   - molecule_parse_failures_total: counter with an operation label
//   - catalog_reloads_total: counter with a result label (success, failure)
//
// All metrics are registered with the default registry on package init.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of rate limiter buckets (clients seen recently)",
		},
	)

	DiseasePredictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disease_predictions_total",
			Help: "Disease predictions by outcome",
		},
		[]string{"outcome"},
	)

	MoleculeParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molecule_parse_failures_total",
			Help: "SMILES strings rejected by the toolkit, by operation",
		},
		[]string{"operation"},
	)

	CatalogReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"},
	)
)

// Outcome and result label values.
const (
	OutcomeMatched = "matched"
	OutcomeUnknown = "unknown"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

func init() {
	prometheus.MustRegister(
		HTTPRequestTotals,
		HTTPRequestDuration,
		HTTPRequestInFlight,
		RateLimiterBucketsTotal,
		DiseasePredictions,
		MoleculeParseFailures,
		CatalogReloads,
	)
}

// ObservePrediction counts one disease prediction.
func ObservePrediction(matched bool) {
	if matched {
		DiseasePredictions.WithLabelValues(OutcomeMatched).Inc()
		return
	}
	DiseasePredictions.WithLabelValues(OutcomeUnknown).Inc()
}

// ObserveParseFailure counts a SMILES rejected during operation.
func ObserveParseFailure(operation string) {
	MoleculeParseFailures.WithLabelValues(operation).Inc()
}

// ObserveReload counts one catalog reload attempt.
func ObserveReload(err error) {
	if err != nil {
		CatalogReloads.WithLabelValues(ResultFailure).Inc()
		return
	}
	CatalogReloads.WithLabelValues(ResultSuccess).Inc()
}
