package events

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nativeListeners   prometheus.Gauge
	nativeListenersMu sync.RWMutex
)

// EnableMetrics registers the domkit_events_native_listeners gauge with reg.
// A nil reg disables it.
func EnableMetrics(reg prometheus.Registerer) {
	nativeListenersMu.Lock()
	defer nativeListenersMu.Unlock()

	if reg == nil {
		nativeListeners = nil
		return
	}
	nativeListeners = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Namespace: "domkit",
		Subsystem: "events",
		Name:      "native_listeners",
		Help:      "Current number of native listeners registered by binders.",
	})
}

func gaugeAdd(delta float64) {
	nativeListenersMu.RLock()
	g := nativeListeners
	nativeListenersMu.RUnlock()
	if g != nil {
		g.Add(delta)
	}
}
