package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for projector
type Metrics struct {
	// Admission metrics
	AdmissionPasses   *prometheus.CounterVec
	FeaturesAdmitted  *prometheus.CounterVec
	AdmissionFailures *prometheus.CounterVec
	ActiveFeatures    *prometheus.GaugeVec

	// Completion metrics
	FeaturesCompleted *prometheus.CounterVec
	FeatureDuration   *prometheus.HistogramVec
	StepsCompleted    *prometheus.CounterVec

	// Gateway operation metrics
	GatewayCalls   *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		AdmissionPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_admission_passes_total",
				Help: "Total number of admission passes",
			},
			[]string{"trigger"},
		),
		FeaturesAdmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_features_admitted_total",
				Help: "Total number of features admitted to active work",
			},
			[]string{"plan_id"},
		),
		AdmissionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_admission_failures_total",
				Help: "Total number of failed admission attempts",
			},
			[]string{"plan_id", "error_code"},
		),
		ActiveFeatures: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "projector_active_features",
				Help: "Number of features currently in progress",
			},
			[]string{"plan_id"},
		),

		FeaturesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_features_completed_total",
				Help: "Total number of completed features",
			},
			[]string{"plan_id"},
		),
		FeatureDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projector_feature_duration_seconds",
				Help:    "Time from feature admission to completion in seconds",
				Buckets: prometheus.ExponentialBuckets(60, 4, 8),
			},
			[]string{"plan_id"},
		),
		StepsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_steps_completed_total",
				Help: "Total number of completed feature steps",
			},
			[]string{"plan_id"},
		),

		GatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_gateway_calls_total",
				Help: "Total number of gateway calls",
			},
			[]string{"gateway", "operation", "success"},
		),
		GatewayLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projector_gateway_latency_seconds",
				Help:    "Gateway call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"gateway", "operation"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projector_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// RecordError increments the error counter for a structured error code
func (m *Metrics) RecordError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}
