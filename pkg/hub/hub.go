package hub

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-go/domkit/pkg/hub"

var tracing atomic.Bool

// EnableTracing turns publish spans on or off for every hub. Spans go to
// the global OpenTelemetry tracer provider.
func EnableTracing(on bool) { tracing.Store(on) }

// Handler receives the data of a publish and the addressing of the
// subscription it matched.
type Handler func(data any, info Info)

// Info describes a single delivery.
type Info struct {
	Topic     string
	Label     string // empty when neither the subscription nor the publish had one
	Namespace string
	Context   any // value given with WithContext
}

// Hub is a named publish/subscribe channel.
type Hub struct {
	name   string
	mu     sync.Mutex
	ix     *index
	logger *slog.Logger
}

// registry maps hub names to hubs. Entries are created on first lookup.
var registry = struct {
	mu   sync.Mutex
	hubs map[string]*Hub
}{hubs: make(map[string]*Hub)}

// Get returns the hub registered under name, creating it on first use.
func Get(name string) (*Hub, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	h, ok := registry.hubs[name]
	if !ok {
		h = &Hub{
			name:   name,
			ix:     newIndex(),
			logger: slog.Default().With("component", "hub", "hub", name),
		}
		registry.hubs[name] = h
		if m := currentMetrics(); m != nil {
			m.subscriptions.WithLabelValues(name).Set(0)
		}
	}
	return h, nil
}

// Must is like Get but panics on an empty name.
func Must(name string) *Hub {
	h, err := Get(name)
	if err != nil {
		panic(err)
	}
	return h
}

// Delete removes the hub registered under name together with all of its
// subscriptions. A later Get creates a fresh hub.
func Delete(name string) {
	registry.mu.Lock()
	h, ok := registry.hubs[name]
	delete(registry.hubs, name)
	registry.mu.Unlock()

	if !ok {
		return
	}
	h.mu.Lock()
	h.ix = newIndex()
	h.mu.Unlock()
	if m := currentMetrics(); m != nil {
		m.subscriptions.DeleteLabelValues(name)
	}
}

// Names returns the names of the registered hubs in sorted order.
func Names() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	names := make([]string, 0, len(registry.hubs))
	for name := range registry.hubs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the hub name.
func (h *Hub) Name() string {
	return h.name
}

// SetLogger replaces the hub logger.
func (h *Hub) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	h.mu.Lock()
	h.logger = logger.With("hub", h.name)
	h.mu.Unlock()
}

// Subscribe binds handler to every topic of the comma separated topics, or
// to every topic × label pair when labels is not empty.
func (h *Hub) Subscribe(topics, labels string, handler Handler, opts ...Option) {
	if handler == nil {
		return
	}
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	topicList := splitAndTrim(topics)
	labelList := splitAndTrim(labels)

	h.mu.Lock()
	for _, topic := range topicList {
		if len(labelList) == 0 {
			h.ix.add(&subscriptionRef{
				topic:     topic,
				handler:   handler,
				namespace: cfg.namespace,
				context:   cfg.context,
			})
			continue
		}
		for _, label := range labelList {
			h.ix.add(&subscriptionRef{
				topic:     topic,
				label:     label,
				hasLabel:  true,
				handler:   handler,
				namespace: cfg.namespace,
				context:   cfg.context,
			})
		}
	}
	count := h.ix.count
	h.mu.Unlock()

	if m := currentMetrics(); m != nil {
		m.subscriptions.WithLabelValues(h.name).Set(float64(count))
	}
}

// Unsubscribe removes every subscription tagged with ns.
func (h *Hub) Unsubscribe(ns string) {
	h.mu.Lock()
	removed := h.ix.removeNamespace(ns)
	count := h.ix.count
	logger := h.logger
	h.mu.Unlock()

	if removed == 0 {
		logger.Warn("unsubscribe: no subscriptions for namespace", "namespace", ns)
		return
	}
	if m := currentMetrics(); m != nil {
		m.subscriptions.WithLabelValues(h.name).Set(float64(count))
	}
}

// Publish delivers data to the subscribers of topics.
//
// The trailing arguments follow the original calling convention: with one
// argument it is the data and the publish carries no labels; with two, the
// first is the comma separated labels and the second is the data.
//
//	h.Publish("Quote", quote)           // topic only
//	h.Publish("Quote", "update", quote) // topic and label
func (h *Hub) Publish(topics string, args ...any) {
	h.PublishContext(context.Background(), topics, args...)
}

// PublishLabels delivers data to topics narrowed by labels without any
// argument shifting.
func (h *Hub) PublishLabels(topics, labels string, data any) {
	h.publish(context.Background(), topics, labels, data)
}

// PublishContext is Publish with a parent context for tracing.
func (h *Hub) PublishContext(ctx context.Context, topics string, args ...any) {
	labels, data := h.shiftArgs(args)
	h.publish(ctx, topics, labels, data)
}

func (h *Hub) shiftArgs(args []any) (string, any) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return "", args[0]
	}
	if len(args) > 2 {
		h.logger.Warn("publish: extra arguments ignored", "count", len(args)-2)
	}
	switch l := args[0].(type) {
	case nil:
		return "", args[1]
	case string:
		return l, args[1]
	case []string:
		return strings.Join(l, ","), args[1]
	default:
		return fmt.Sprint(l), args[1]
	}
}

func (h *Hub) publish(ctx context.Context, topics, labels string, data any) {
	topicList := splitAndTrim(topics)
	labelList := splitAndTrim(labels)
	hasLabels := len(labelList) > 0

	var span trace.Span
	if tracing.Load() {
		_, span = otel.Tracer(tracerName).Start(ctx, "hub.publish",
			trace.WithAttributes(
				attribute.String("hub.name", h.name),
				attribute.StringSlice("hub.topics", topicList),
				attribute.StringSlice("hub.labels", labelList),
			))
		defer span.End()
	}

	// Both phases are captured before any handler runs.
	h.mu.Lock()
	var labelled []*subscriptionRef
	if hasLabels {
		labelled = h.ix.labelRefs(topicList, labelList)
	}
	topicOnly := h.ix.topicRefs(topicList)
	h.mu.Unlock()

	m := currentMetrics()
	if m != nil {
		m.publishes.WithLabelValues(h.name).Inc()
	}

	delivered := 0
	for _, ref := range labelled {
		h.invoke(m, ref, data, ref.label)
		delivered++
	}
	for _, ref := range topicOnly {
		if !hasLabels {
			h.invoke(m, ref, data, "")
			delivered++
			continue
		}
		for _, label := range labelList {
			h.invoke(m, ref, data, label)
			delivered++
		}
	}
	if span != nil {
		span.SetAttributes(attribute.Int("hub.deliveries", delivered))
	}
}

func (h *Hub) invoke(m *metrics, ref *subscriptionRef, data any, label string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("subscriber panic",
				"topic", ref.topic,
				"label", label,
				"namespace", ref.namespace,
				"panic", r,
				"stack", string(debug.Stack()))
			if m != nil {
				m.panics.WithLabelValues(h.name).Inc()
			}
		}
	}()

	if m != nil {
		m.deliveries.WithLabelValues(h.name, ref.topic).Inc()
	}
	ref.handler(data, Info{
		Topic:     ref.topic,
		Label:     label,
		Namespace: ref.namespace,
		Context:   ref.context,
	})
}

// Len returns the number of live subscription refs.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ix.count
}

// Count returns the number of refs tagged with ns.
func (h *Hub) Count(ns string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ix.byNamespace[ns])
}

// splitAndTrim splits a comma separated list and trims each element. An
// empty string yields no elements; a string without a comma is returned as
// its single trimmed element.
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	if !strings.Contains(s, ",") {
		return []string{strings.TrimSpace(s)}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
