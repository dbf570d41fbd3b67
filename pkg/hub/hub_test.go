package hub

import (
	"errors"
	"testing"
)

type call struct {
	data any
	info Info
}

func recorder(calls *[]call) Handler {
	return func(data any, info Info) {
		*calls = append(*calls, call{data: data, info: info})
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	name := "test-" + t.Name()
	t.Cleanup(func() { Delete(name) })
	return Must(name)
}

func TestGet_EmptyName(t *testing.T) {
	if _, err := Get(""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Get(\"\") error = %v, want ErrInvalidName", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Must(\"\") did not panic")
		}
	}()
	Must("")
}

func TestGet_ReturnsSameHub(t *testing.T) {
	a := newTestHub(t)
	b := Must(a.Name())
	if a != b {
		t.Fatal("Get returned a different hub for the same name")
	}
}

func TestDelete_ForgetsSubscriptions(t *testing.T) {
	name := "test-" + t.Name()
	var calls []call
	Must(name).Subscribe("T", "", recorder(&calls))
	Delete(name)
	defer Delete(name)

	Must(name).Publish("T", 1)
	if len(calls) != 0 {
		t.Fatalf("got %d calls after Delete, want 0", len(calls))
	}
}

func TestPublish_TopicAndLabel(t *testing.T) {
	h := newTestHub(t)
	var calls []call
	h.Subscribe("T", "L", recorder(&calls), WithNamespace("ns"))

	h.Publish("T", "L", "data")

	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	want := Info{Topic: "T", Label: "L", Namespace: "ns"}
	if calls[0].data != "data" || calls[0].info != want {
		t.Errorf("call = %+v, want data=data info=%+v", calls[0], want)
	}
}

func TestPublish_TopicOnlySubscriberRepeatsPerLabel(t *testing.T) {
	h := newTestHub(t)
	var calls []call
	h.Subscribe("T", "", recorder(&calls))

	h.Publish("T", "L1, L2", 42)

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	for i, label := range []string{"L1", "L2"} {
		if calls[i].info.Label != label {
			t.Errorf("call %d label = %q, want %q", i, calls[i].info.Label, label)
		}
		if calls[i].data != 42 {
			t.Errorf("call %d data = %v, want 42", i, calls[i].data)
		}
	}
}

func TestPublish_LabelledBeforeTopicOnly(t *testing.T) {
	h := newTestHub(t)
	var order []string
	h.Subscribe("T", "", func(any, Info) { order = append(order, "topic") })
	h.Subscribe("T", "L", func(any, Info) { order = append(order, "label") })

	h.Publish("T", "L", nil)

	if len(order) != 2 || order[0] != "label" || order[1] != "topic" {
		t.Fatalf("order = %v, want [label topic]", order)
	}
}

func TestPublish_NoLabelsSkipsLabelledSubscribers(t *testing.T) {
	h := newTestHub(t)
	var labelled, topicOnly []call
	h.Subscribe("T", "L", recorder(&labelled))
	h.Subscribe("T", "", recorder(&topicOnly))

	h.Publish("T", "payload")

	if len(labelled) != 0 {
		t.Errorf("labelled subscriber called %d times, want 0", len(labelled))
	}
	if len(topicOnly) != 1 {
		t.Fatalf("topic-only subscriber called %d times, want 1", len(topicOnly))
	}
	if topicOnly[0].data != "payload" || topicOnly[0].info.Label != "" {
		t.Errorf("call = %+v, want data=payload and no label", topicOnly[0])
	}
}

func TestPublish_ArgumentShift(t *testing.T) {
	tests := []struct {
		name      string
		args      []any
		wantData  any
		wantCalls int
		wantLabel string
	}{
		{"data only", []any{"update"}, "update", 1, ""},
		{"labels and data", []any{"update", 7}, 7, 1, "update"},
		{"nil labels", []any{nil, 7}, 7, 1, ""},
		{"label slice", []any{[]string{"a", "b"}, 7}, 7, 2, "a"},
		{"no args", nil, nil, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHub(t)
			var calls []call
			h.Subscribe("T", "", recorder(&calls))

			h.Publish("T", tt.args...)

			if len(calls) != tt.wantCalls {
				t.Fatalf("got %d calls, want %d", len(calls), tt.wantCalls)
			}
			if calls[0].data != tt.wantData {
				t.Errorf("data = %v, want %v", calls[0].data, tt.wantData)
			}
			if calls[0].info.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", calls[0].info.Label, tt.wantLabel)
			}
		})
	}
}

func TestSubscribe_TopicLabelCrossProduct(t *testing.T) {
	h := newTestHub(t)
	var calls []call
	h.Subscribe("A, B", "x,y", recorder(&calls), WithNamespace("ns"))

	if got := h.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	if got := h.Count("ns"); got != 4 {
		t.Fatalf("Count(ns) = %d, want 4", got)
	}

	h.Publish("B", "y", nil)
	if len(calls) != 1 || calls[0].info.Topic != "B" || calls[0].info.Label != "y" {
		t.Fatalf("calls = %+v, want one call for B/y", calls)
	}
}

func TestSubscribe_WithContext(t *testing.T) {
	h := newTestHub(t)
	owner := &struct{ name string }{"owner"}
	var got any
	h.Subscribe("T", "", func(_ any, info Info) { got = info.Context }, WithContext(owner))

	h.Publish("T", nil)
	if got != owner {
		t.Fatalf("Info.Context = %v, want owner", got)
	}
}

func TestUnsubscribe_RemovesOnlyNamespace(t *testing.T) {
	h := newTestHub(t)
	var ns1, ns2, none []call
	h.Subscribe("T", "L", recorder(&ns1), WithNamespace("ns1"))
	h.Subscribe("T", "", recorder(&ns1), WithNamespace("ns1"))
	h.Subscribe("T", "L", recorder(&ns2), WithNamespace("ns2"))
	h.Subscribe("T", "", recorder(&none))

	h.Unsubscribe("ns1")
	h.Publish("T", "L", nil)

	if len(ns1) != 0 {
		t.Errorf("ns1 called %d times after unsubscribe", len(ns1))
	}
	if len(ns2) != 1 {
		t.Errorf("ns2 called %d times, want 1", len(ns2))
	}
	if len(none) != 1 {
		t.Errorf("un-namespaced called %d times, want 1", len(none))
	}
	if h.Count("ns1") != 0 {
		t.Errorf("Count(ns1) = %d, want 0", h.Count("ns1"))
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestUnsubscribe_UnknownNamespaceIsNoop(t *testing.T) {
	h := newTestHub(t)
	h.Subscribe("T", "", func(any, Info) {})
	h.Unsubscribe("missing")
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
}

func TestPublish_ReentrantUnsubscribeKeepsSnapshot(t *testing.T) {
	h := newTestHub(t)
	var order []string
	h.Subscribe("T", "", func(any, Info) {
		order = append(order, "first")
		h.Unsubscribe("second")
	}, WithNamespace("first"))
	h.Subscribe("T", "", func(any, Info) { order = append(order, "second") }, WithNamespace("second"))
	h.Subscribe("T", "", func(any, Info) { order = append(order, "third") })

	h.Publish("T", nil)
	if want := []string{"first", "second", "third"}; !equal(order, want) {
		t.Fatalf("first publish order = %v, want %v", order, want)
	}

	order = nil
	h.Publish("T", nil)
	if want := []string{"first", "third"}; !equal(order, want) {
		t.Fatalf("second publish order = %v, want %v", order, want)
	}
}

func TestPublish_ReentrantSubscribeNotInvokedInSamePass(t *testing.T) {
	h := newTestHub(t)
	added := 0
	h.Subscribe("T", "L", func(any, Info) {
		h.Subscribe("T", "", func(any, Info) { added++ })
		h.Subscribe("T", "L", func(any, Info) { added++ })
	}, WithNamespace("adder"))

	h.Publish("T", "L", nil)
	if added != 0 {
		t.Fatalf("subscribers added during publish ran %d times, want 0", added)
	}

	h.Unsubscribe("adder")
	h.Publish("T", "L", nil)
	if added != 2 {
		t.Fatalf("added subscribers ran %d times on next publish, want 2", added)
	}
}

func TestPublish_ReentrantPublish(t *testing.T) {
	h := newTestHub(t)
	var got []string
	h.Subscribe("outer", "", func(any, Info) {
		got = append(got, "outer")
		h.Publish("inner", nil)
	})
	h.Subscribe("inner", "", func(any, Info) { got = append(got, "inner") })

	h.Publish("outer", nil)
	if want := []string{"outer", "inner"}; !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPublish_PanicDoesNotStopDelivery(t *testing.T) {
	h := newTestHub(t)
	reached := false
	h.Subscribe("T", "", func(any, Info) { panic("boom") })
	h.Subscribe("T", "", func(any, Info) { reached = true })

	h.Publish("T", nil)
	if !reached {
		t.Fatal("subscriber after a panicking one was not invoked")
	}
}

func TestDataHubQuoteScenario(t *testing.T) {
	const name = "dataHub"
	t.Cleanup(func() { Delete(name) })

	var calls []call
	Must(name).Subscribe("Quote", "update", recorder(&calls), WithNamespace("c1"))

	quote := map[string]int{"id": 7}
	Must(name).Publish("Quote", "update", quote)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if got := calls[0].data.(map[string]int)["id"]; got != 7 {
		t.Fatalf("data id = %d, want 7", got)
	}

	Must(name).Unsubscribe("c1")
	Must(name).Publish("Quote", "update", quote)
	if len(calls) != 1 {
		t.Fatalf("got %d calls after unsubscribe, want 1", len(calls))
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" a ", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := splitAndTrim(tt.in); !equal(got, tt.want) {
			t.Errorf("splitAndTrim(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	h := newTestHub(t)
	found := false
	for _, name := range Names() {
		if name == h.Name() {
			found = true
		}
	}
	if !found {
		t.Fatalf("Names() does not contain %q", h.Name())
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
