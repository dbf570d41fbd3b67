package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestOpenTelemetry_StoresSpan(t *testing.T) {
	var sawSpan bool
	h := OpenTelemetry(
		WithTracerName("test"),
		WithIncludeUserID(true),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = SpanFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", nil)
	req.Header.Set("X-Auth-Token", "123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !sawSpan {
		t.Fatal("expected SpanFromContext to return a span during the request")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d, want 201", rec.Code)
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	nextCalled := false
	h := OpenTelemetry(
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if SpanFromContext(r.Context()) != nil {
			t.Fatal("expected no span when filter skips tracing")
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !nextCalled {
		t.Fatal("expected next to be called")
	}
}

func TestSpanFromContext_NoSpan(t *testing.T) {
	if SpanFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()) != nil {
		t.Fatal("expected nil span when the request was not traced")
	}
}
