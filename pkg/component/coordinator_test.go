package component

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/events"
	"github.com/vango-go/domkit/pkg/hub"
	"github.com/vango-go/domkit/pkg/loop"
)

type widget struct {
	Base
	log []string
}

func (w *widget) Methods() Methods {
	return Methods{
		"onClick": w.onClick,
		"onKey":   w.onKey,
		"onQuote": w.onQuote,
	}
}

func (w *widget) Init()                  { w.log = append(w.log, "init") }
func (w *widget) PreDisplay(first bool)  { w.log = append(w.log, "pre:"+flag(first)) }
func (w *widget) PostDisplay(first bool) { w.log = append(w.log, "post:"+flag(first)) }

func (w *widget) onClick(ev *dom.Event) {
	if ev.Context != Component(w) {
		w.log = append(w.log, "click:wrong-context")
		return
	}
	w.log = append(w.log, "click:"+ev.SelectTarget.Tag())
}

func (w *widget) onKey(ev *dom.Event) { w.log = append(w.log, "key:"+ev.Key) }

func (w *widget) onQuote(data any, info hub.Info) {
	w.log = append(w.log, "hub:"+info.Label+":"+data.(string))
}

func flag(b bool) string {
	if b {
		return "first"
	}
	return "again"
}

type fixture struct {
	doc   *dom.Document
	loop  *loop.Loop
	coord *Coordinator
	hub   *hub.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := "test-" + t.Name()
	t.Cleanup(func() { hub.Delete(name) })

	f := &fixture{
		doc:  dom.NewDocument(),
		loop: loop.New(),
		hub:  hub.Must(name),
	}
	f.coord = NewCoordinator(f.loop, events.NewBinder())

	typ := Define("c-widget", nil,
		OnEvent("onClick", "click", "button"),
		OnDocEvent("onKey", "keydown", ""),
		OnHub("onQuote", name, "Quote", "update"),
	)
	if err := f.coord.Register(f.doc, "c-widget", typ, func() Component { return &widget{} }); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return f
}

func (f *fixture) mount(t *testing.T) (*dom.Element, *widget) {
	t.Helper()
	frag, err := f.doc.HTML(`<c-widget><button>go</button></c-widget>`)
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	el := frag.Children()[0]
	if err := f.doc.Body().AppendChild(el); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	w, ok := As[*widget](el)
	if !ok {
		t.Fatal("element is not hosted by a widget")
	}
	return el, w
}

func (f *fixture) click(t *testing.T, el *dom.Element) {
	t.Helper()
	btn, err := el.QuerySelector("button")
	if err != nil || btn == nil {
		t.Fatalf("button not found: %v", err)
	}
	btn.DispatchEvent(dom.NewEvent("click"))
}

func count(log []string, entry string) int {
	n := 0
	for _, s := range log {
		if s == entry {
			n++
		}
	}
	return n
}

func TestCoordinator_AttachBindsEverything(t *testing.T) {
	f := newFixture(t)
	el, w := f.mount(t)

	if !w.Initialized() {
		t.Fatal("Init should run on first attach")
	}
	if got := w.Bindings(); !got.Element || !got.Parent || !got.Hub {
		t.Fatalf("Bindings() = %+v, want all bound", got)
	}
	if !strings.HasPrefix(w.Namespace(), "c_uid_") {
		t.Fatalf("Namespace() = %q", w.Namespace())
	}

	f.click(t, el)
	f.doc.DispatchEvent(dom.NewKeyEvent("keydown", "Enter"))
	f.hub.Publish("Quote", "update", "q1")
	f.hub.Publish("Quote", "create", "q2")

	want := []string{"init", "click:button", "key:Enter", "hub:update:q1"}
	if strings.Join(w.log, ",") != strings.Join(want, ",") {
		t.Fatalf("log = %v, want %v", w.log, want)
	}
}

func TestCoordinator_DisplayFrames(t *testing.T) {
	f := newFixture(t)
	_, w := f.mount(t)

	if count(w.log, "pre:first") != 0 {
		t.Fatal("PreDisplay should wait for a frame")
	}
	f.loop.Tick()
	if count(w.log, "pre:first") != 1 || count(w.log, "post:first") != 0 {
		t.Fatalf("after one frame log = %v", w.log)
	}
	f.loop.Tick()
	if count(w.log, "post:first") != 1 {
		t.Fatalf("after two frames log = %v", w.log)
	}
}

func TestCoordinator_DetachUnbindsAfterFrame(t *testing.T) {
	f := newFixture(t)
	el, w := f.mount(t)
	f.loop.Tick()
	f.loop.Tick()
	w.log = nil

	el.Remove()

	if f.hub.Count(w.Namespace()) != 0 {
		t.Fatal("hub subscriptions should be removed on detach")
	}
	f.hub.Publish("Quote", "update", "late")

	// The document binding stays until the next frame but is silenced.
	if f.doc.ListenerCount("keydown") != 1 {
		t.Fatalf("keydown listeners = %d, want 1 before the frame", f.doc.ListenerCount("keydown"))
	}
	f.doc.DispatchEvent(dom.NewKeyEvent("keydown", "a"))

	f.loop.Tick()
	if f.doc.ListenerCount("keydown") != 0 {
		t.Fatal("document binding should be removed one frame after detach")
	}
	if got := w.Bindings(); !got.Element || got.Parent || got.Hub {
		t.Fatalf("Bindings() = %+v, want only the element binding", got)
	}

	// Element bindings survive while detached.
	f.click(t, el)
	if strings.Join(w.log, ",") != "click:button" {
		t.Fatalf("log = %v, want only the click", w.log)
	}
}

func TestCoordinator_ReparentKeepsParentBindings(t *testing.T) {
	f := newFixture(t)
	el, w := f.mount(t)

	other := f.doc.CreateElement("section")
	if err := f.doc.Body().AppendChild(other); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	if err := other.AppendChild(el); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	f.loop.Tick()
	f.loop.Tick()

	if f.doc.ListenerCount("keydown") != 1 {
		t.Fatalf("keydown listeners = %d, want 1", f.doc.ListenerCount("keydown"))
	}
	if f.hub.Count(w.Namespace()) != 1 {
		t.Fatalf("hub refs = %d, want 1", f.hub.Count(w.Namespace()))
	}
	if count(w.log, "init") != 1 {
		t.Fatalf("Init ran %d times, want 1", count(w.log, "init"))
	}
	if count(w.log, "pre:first") != 1 || count(w.log, "post:first") != 1 {
		t.Fatalf("log = %v, want the first display pass once", w.log)
	}

	f.doc.DispatchEvent(dom.NewKeyEvent("keydown", "x"))
	f.hub.Publish("Quote", "update", "q")
	if count(w.log, "key:x") != 1 || count(w.log, "hub:update:q") != 1 {
		t.Fatalf("log = %v", w.log)
	}
}

func TestCoordinator_ReattachRebinds(t *testing.T) {
	f := newFixture(t)
	el, w := f.mount(t)

	el.Remove()
	f.loop.Tick()
	if err := f.doc.Body().AppendChild(el); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}

	if got := w.Bindings(); !got.Parent || !got.Hub {
		t.Fatalf("Bindings() = %+v, want rebound", got)
	}
	if f.coord.Binder().Stats().NativeListeners != 2 {
		t.Fatalf("native listeners = %d, want 2", f.coord.Binder().Stats().NativeListeners)
	}
	if count(w.log, "init") != 1 {
		t.Fatal("Init should not run again")
	}

	f.loop.Tick()
	if count(w.log, "pre:first") != 2 || count(w.log, "pre:again") != 0 {
		t.Fatalf("log = %v", w.log)
	}
}

func TestCoordinator_Dispose(t *testing.T) {
	f := newFixture(t)
	el, w := f.mount(t)

	var order []string
	w.OnCleanup(func() { order = append(order, "a") })
	w.OnCleanup(func() { order = append(order, "b") })

	f.coord.Dispose(w)

	if got := w.Bindings(); got.Element || got.Parent || got.Hub {
		t.Fatalf("Bindings() = %+v, want none", got)
	}
	if f.coord.Binder().Stats().NativeListeners != 0 {
		t.Fatal("dispose should remove every native listener")
	}
	if !w.Disposed() {
		t.Fatal("Disposed() = false after Dispose")
	}
	if strings.Join(order, ",") != "b,a" {
		t.Fatalf("cleanup order = %v, want [b a]", order)
	}
	if err := f.coord.Attach(w); err == nil {
		t.Fatal("Attach after Dispose should fail")
	}

	w.log = nil
	f.click(t, el)
	if len(w.log) != 0 {
		t.Fatalf("log = %v, want nothing after dispose", w.log)
	}
}

func TestCoordinator_AttachBeforeAdopt(t *testing.T) {
	c := NewCoordinator(loop.New(), nil)
	if c.Binder() != events.Default {
		t.Fatal("nil binder should fall back to events.Default")
	}
	if err := c.Attach(&widget{}); err != errNotAdopted {
		t.Fatalf("Attach() error = %v, want errNotAdopted", err)
	}
	c.Detach(&widget{})
	c.Dispose(&widget{})
}

type partial struct{ Base }

func TestCoordinator_MissingMethodWarns(t *testing.T) {
	var buf bytes.Buffer
	doc := dom.NewDocument()
	c := NewCoordinator(loop.New(), events.NewBinder())
	c.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	typ := Define("c-partial", nil, OnEvent("onClick", "click", ""))
	if err := c.Register(doc, "c-partial", typ, func() Component { return &partial{} }); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := doc.Body().AppendChild(doc.CreateElement("c-partial")); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}

	if !strings.Contains(buf.String(), "method=onClick") {
		t.Fatalf("log output = %q, want a missing method warning", buf.String())
	}
	if c.Binder().Stats().NativeListeners != 0 {
		t.Fatal("a missing method should not be bound")
	}
}

func TestCoordinator_ResolveErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	doc := dom.NewDocument()
	c := NewCoordinator(loop.New(), events.NewBinder())
	c.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	typ := Define("c-broken", nil,
		OnEvent("a", "click", ""),
		OnEvent("a", "keyup", ""),
	)
	if err := c.Register(doc, "c-broken", typ, func() Component { return &partial{} }); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	el := doc.CreateElement("c-broken")
	if err := doc.Body().AppendChild(el); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	if !strings.Contains(buf.String(), "attach failed") {
		t.Fatalf("log output = %q, want attach failure", buf.String())
	}
	if Of(el).ComponentBase().Initialized() {
		t.Fatal("a type that fails to resolve should not initialize")
	}
}

func TestOf(t *testing.T) {
	doc := dom.NewDocument()
	if Of(nil) != nil || Of(doc.CreateElement("div")) != nil {
		t.Fatal("Of should return nil for plain elements")
	}
	if _, ok := As[*widget](doc.CreateElement("div")); ok {
		t.Fatal("As should fail for plain elements")
	}
}
