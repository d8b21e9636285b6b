// Package metrics provides Prometheus metrics for the disease predictor.
// It defines the prediction, failure and artifact-loading series exposed on
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor.
type Metrics struct {
	// Prediction metrics
	PredictionsTotal   *prometheus.CounterVec   // Successful predictions by domain and predicted class
	PredictionFailures *prometheus.CounterVec   // Failed predictions by domain and error kind
	PredictionLatency  *prometheus.HistogramVec // End-to-end prediction latency by domain
	PositiveScores     *prometheus.HistogramVec // Distribution of positive-class probabilities

	// Artifact metrics
	ArtifactLoads        *prometheus.CounterVec // Domain artifact loads by outcome
	ArtifactLoadDuration prometheus.Histogram   // Time spent loading a domain's artifacts
	LoadedDomains        prometheus.Gauge       // Domains currently held in the registry cache

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec // API requests by route and status code
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions",
		}, []string{"domain", "class"}),
		PredictionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions",
		}, []string{"domain", "kind"}),
		PredictionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds (end-to-end)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"domain"}),
		PositiveScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prediction_positive_probability",
			Help:    "Distribution of positive-class probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"domain"}),
		ArtifactLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artifact_loads_total",
			Help: "Total number of domain artifact loads",
		}, []string{"domain", "status"}),
		ArtifactLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "artifact_load_duration_seconds",
			Help:    "Duration of domain artifact loads in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		LoadedDomains: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loaded_domains",
			Help: "Number of domains held in the registry cache",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests",
		}, []string{"route", "code"}),
	}
}
