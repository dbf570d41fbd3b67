package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-go/domkit/pkg/hub"
)

type event struct {
	label string
	q     Quote
}

func newTestController(t *testing.T, opts ...ControllerOption) (*Controller, *[]event) {
	t.Helper()
	name := "test-" + t.Name()
	t.Cleanup(func() { hub.Delete(name) })

	var got []event
	hub.Must(name).Subscribe(Topic, "", func(data any, info hub.Info) {
		got = append(got, event{info.Label, data.(Quote)})
	})

	opts = append([]ControllerOption{WithHub(name)}, opts...)
	return NewController(Local(NewMemoryStore(SeedQuotes()...), 123), opts...), &got
}

func TestController_PublishesChanges(t *testing.T) {
	c, got := newTestController(t)
	ctx := context.Background()

	q, err := c.Create(ctx, Patch{Quote: String("hello"), Author: String("me")})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if q.CID != 123 {
		t.Fatalf("Create() cid = %d, want 123", q.CID)
	}
	if _, err := c.Update(ctx, q.ID, Patch{Quote: String("hello again")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if _, err := c.Delete(ctx, q.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	want := []string{LabelCreate, LabelUpdate, LabelDelete}
	if len(*got) != len(want) {
		t.Fatalf("events = %+v, want %v", *got, want)
	}
	for i, ev := range *got {
		if ev.label != want[i] || ev.q.ID != q.ID {
			t.Errorf("event %d = %+v, want %s for %d", i, ev, want[i], q.ID)
		}
	}
	if (*got)[1].q.Quote != "hello again" || (*got)[2].q.Quote != "hello again" {
		t.Fatalf("events = %+v, want the updated quote", *got)
	}
}

func TestController_EmptyQuote(t *testing.T) {
	c, got := newTestController(t)
	for _, p := range []Patch{{}, {Quote: String("  ")}} {
		if _, err := c.Create(context.Background(), p); !errors.Is(err, ErrEmptyQuote) {
			t.Fatalf("Create(%+v) error = %v, want ErrEmptyQuote", p, err)
		}
	}
	if len(*got) != 0 {
		t.Fatal("a rejected create should not publish")
	}
}

func TestController_FailureDoesNotPublish(t *testing.T) {
	c, got := newTestController(t)
	if _, err := c.Update(context.Background(), 9, Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
	if _, err := c.Delete(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if len(*got) != 0 {
		t.Fatalf("events = %+v, want none", *got)
	}
}

func TestController_Dispatch(t *testing.T) {
	var queued []func()
	c, got := newTestController(t, WithDispatch(func(fn func()) { queued = append(queued, fn) }))

	if _, err := c.Create(context.Background(), Patch{Quote: String("later")}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(*got) != 0 || len(queued) != 1 {
		t.Fatal("publish should wait for the dispatcher")
	}
	queued[0]()
	if len(*got) != 1 || (*got)[0].label != LabelCreate {
		t.Fatalf("events = %+v", *got)
	}
}

func TestController_DefaultHub(t *testing.T) {
	c := NewController(Local(NewMemoryStore(), 1), WithHub(""))
	if c.Hub() != DefaultHub {
		t.Fatalf("Hub() = %q, want %q", c.Hub(), DefaultHub)
	}
	quotes, err := c.List(context.Background())
	if err != nil || len(quotes) != 0 {
		t.Fatalf("List() = %v, %v", quotes, err)
	}
}
