package hub

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	publishes     *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	panics        *prometheus.CounterVec
	subscriptions *prometheus.GaugeVec
}

var (
	hubMetrics   *metrics
	hubMetricsMu sync.RWMutex
)

// EnableMetrics registers the hub collectors with reg. Later calls replace
// the active collectors, which lets tests use a fresh registry each time.
// A nil reg disables collection.
func EnableMetrics(reg prometheus.Registerer) {
	hubMetricsMu.Lock()
	defer hubMetricsMu.Unlock()

	if reg == nil {
		hubMetrics = nil
		return
	}
	factory := promauto.With(reg)
	hubMetrics = &metrics{
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domkit",
			Subsystem: "hub",
			Name:      "publishes_total",
			Help:      "Total number of publish calls per hub.",
		}, []string{"hub"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domkit",
			Subsystem: "hub",
			Name:      "deliveries_total",
			Help:      "Total number of handler invocations per hub and topic.",
		}, []string{"hub", "topic"}),
		panics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domkit",
			Subsystem: "hub",
			Name:      "handler_panics_total",
			Help:      "Total number of recovered subscriber panics per hub.",
		}, []string{"hub"}),
		subscriptions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "domkit",
			Subsystem: "hub",
			Name:      "subscriptions",
			Help:      "Current number of subscription refs per hub.",
		}, []string{"hub"}),
	}
}

func currentMetrics() *metrics {
	hubMetricsMu.RLock()
	defer hubMetricsMu.RUnlock()
	return hubMetrics
}
