package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCheckoutMetrics(t *testing.T) {
	m := newCheckoutMetricsWithRegisterer(prometheus.NewRegistry())

	if m == nil {
		t.Fatal("newCheckoutMetricsWithRegisterer should not return nil")
	}
	if m.checkoutStarted == nil {
		t.Error("checkoutStarted counter should not be nil")
	}
	if m.checkoutCommitted == nil {
		t.Error("checkoutCommitted counter should not be nil")
	}
	if m.checkoutFailed == nil {
		t.Error("checkoutFailed counter vec should not be nil")
	}
	if m.compensations == nil {
		t.Error("compensations counter should not be nil")
	}
	if m.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}
	if m.stepDuration == nil {
		t.Error("stepDuration histogram vec should not be nil")
	}
}

func TestCheckoutMetricsRegisterTwice_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newCheckoutMetricsWithRegisterer(reg)
	second := newCheckoutMetricsWithRegisterer(reg)

	first.RecordStarted()
	second.RecordStarted()

	value := counterValue(t, first.checkoutStarted)
	if value != 2 {
		t.Fatalf("checkout_started_total = %v, want 2 (collectors must be shared)", value)
	}
}

func TestRecordFailed_ByCategory(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newCheckoutMetricsWithRegisterer(reg)

	m.RecordFailed("stock")
	m.RecordFailed("stock")
	m.RecordFailed("persistence")

	if got := counterValue(t, m.checkoutFailed.WithLabelValues("stock")); got != 2 {
		t.Fatalf("stock failures = %v, want 2", got)
	}
	if got := counterValue(t, m.checkoutFailed.WithLabelValues("persistence")); got != 1 {
		t.Fatalf("persistence failures = %v, want 1", got)
	}
}

func TestRecordDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newCheckoutMetricsWithRegisterer(reg)

	m.RecordDuration(150 * time.Millisecond)
	m.RecordStepDuration("reserve_stock", 5*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var sawDuration, sawStep bool
	for _, fam := range families {
		switch fam.GetName() {
		case "checkout_duration_seconds":
			sawDuration = true
		case "checkout_step_duration_seconds":
			sawStep = true
		}
	}
	if !sawDuration || !sawStep {
		t.Fatalf("expected duration histograms in registry, duration=%v step=%v", sawDuration, sawStep)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
