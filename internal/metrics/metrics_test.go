package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AdmissionPasses.WithLabelValues("start").Inc()
	m.FeaturesAdmitted.WithLabelValues("plan-1").Add(2)
	m.ActiveFeatures.WithLabelValues("plan-1").Set(2)
	m.GatewayCalls.WithLabelValues("slack", "create_thread", "true").Inc()

	if got := testutil.ToFloat64(m.FeaturesAdmitted.WithLabelValues("plan-1")); got != 2 {
		t.Errorf("FeaturesAdmitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ActiveFeatures.WithLabelValues("plan-1")); got != 2 {
		t.Errorf("ActiveFeatures = %v, want 2", got)
	}
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	// Separate registries must not collide.
	_ = NewMetrics(prometheus.NewRegistry())
	_ = NewMetrics(prometheus.NewRegistry())
}

func TestRecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordError("ADMIT-001")
	m.RecordError("")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("ADMIT-001")); got != 1 {
		t.Errorf("Errors = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordError("ADMIT-001")
}
