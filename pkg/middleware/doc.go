// Package middleware provides HTTP middleware for domkit servers.
//
// # Prometheus Metrics
//
// Prometheus records request counts, durations and error categories per
// route pattern, plus websocket bridge gauges and counters:
//   - domkit_http_requests_total: requests by route, method and status
//   - domkit_http_request_duration_seconds: request duration histogram
//   - domkit_http_request_errors_total: failed requests by route and kind
//   - domkit_ws_connections: open websocket bridge connections
//   - domkit_ws_frames_total: bridge frames by direction
//   - domkit_ws_errors_total: bridge errors by type
//
// Requests no route matched share the route label "unmatched". Collectors
// are created once per registerer; NewMetrics returns the same *Metrics for
// the same registerer, and the websocket recorders hang off it.
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request using the global tracer
// provider and stores it in the request context:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("quotes"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/metrics"
//	    }),
//	))
//
// Handlers read it back with SpanFromContext(r.Context()) and pass
// r.Context() on to hub publishes so their spans join the request trace.
package middleware
