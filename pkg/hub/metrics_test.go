package hub

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func TestMetrics_PublishAndSubscribe(t *testing.T) {
	EnableMetrics(prometheus.NewRegistry())
	t.Cleanup(func() { EnableMetrics(nil) })

	h := newTestHub(t)
	h.Subscribe("T", "", func(any, Info) {}, WithNamespace("a"))
	h.Subscribe("T", "L", func(any, Info) { panic("boom") }, WithNamespace("b"))

	m := currentMetrics()
	if got := gaugeValue(t, m.subscriptions.WithLabelValues(h.Name())); got != 2 {
		t.Fatalf("subscriptions=%v, want 2", got)
	}

	h.Publish("T", "L", nil)

	if got := counterValue(t, m.publishes.WithLabelValues(h.Name())); got != 1 {
		t.Fatalf("publishes_total=%v, want 1", got)
	}
	if got := counterValue(t, m.deliveries.WithLabelValues(h.Name(), "T")); got != 2 {
		t.Fatalf("deliveries_total=%v, want 2", got)
	}
	if got := counterValue(t, m.panics.WithLabelValues(h.Name())); got != 1 {
		t.Fatalf("handler_panics_total=%v, want 1", got)
	}

	h.Unsubscribe("b")
	if got := gaugeValue(t, m.subscriptions.WithLabelValues(h.Name())); got != 1 {
		t.Fatalf("subscriptions after unsubscribe=%v, want 1", got)
	}
}

func TestMetrics_Disabled(t *testing.T) {
	EnableMetrics(nil)
	h := newTestHub(t)
	h.Subscribe("T", "", func(any, Info) {})
	h.Publish("T", nil)
	if currentMetrics() != nil {
		t.Fatal("expected metrics to be disabled")
	}
}
