package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "domkit").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "domkit",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// Metrics holds the HTTP and websocket bridge collectors of one registry.
// A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	wsConnections   prometheus.Gauge
	wsFrames        *prometheus.CounterVec
	wsErrors        *prometheus.CounterVec
}

// Collectors register once per registerer. The namespace of the first call
// for a registerer is kept for later calls with the same registerer.
var (
	registered   = make(map[prometheus.Registerer]*Metrics)
	registeredMu sync.Mutex
)

// NewMetrics returns the collectors of the configured registry, registering
// them on first use.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	registeredMu.Lock()
	defer registeredMu.Unlock()
	if m, ok := registered[config.Registry]; ok {
		return m
	}
	m := initMetrics(config)
	registered[config.Registry] = m
	return m
}

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_request_errors_total",
			Help:      "Total number of failed HTTP requests by kind",
		}, []string{"route", "kind"}),

		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "ws_connections",
			Help:      "Number of open websocket bridge connections",
		}),

		wsFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "ws_frames_total",
			Help:      "Total websocket bridge frames by direction",
		}, []string{"direction"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "ws_errors_total",
			Help:      "Total websocket bridge errors by type",
		}, []string{"type"}),
	}
}

// Prometheus returns middleware that records request metrics on the
// registry selected by opts. The route label is the chi route pattern, or
// "unmatched" when no route matched.
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	return NewMetrics(opts...).Middleware
}

// Middleware records request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routeLabel(r)
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		if status >= 400 {
			m.requestErrors.WithLabelValues(route, categorizeStatus(status)).Inc()
		}
	})
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// categorizeStatus maps a failed status to a low cardinality kind.
func categorizeStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return "timeout"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "validation"
	case status < 500:
		return "client"
	default:
		return "internal"
	}
}

// RecordWSConnect records a bridge connection opening.
func (m *Metrics) RecordWSConnect() {
	if m != nil {
		m.wsConnections.Inc()
	}
}

// RecordWSDisconnect records a bridge connection closing.
func (m *Metrics) RecordWSDisconnect() {
	if m != nil {
		m.wsConnections.Dec()
	}
}

// RecordWSFrame records one bridge frame; direction is "in" or "out".
func (m *Metrics) RecordWSFrame(direction string) {
	if m != nil {
		m.wsFrames.WithLabelValues(direction).Inc()
	}
}

// RecordWebSocketError records a bridge error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}
