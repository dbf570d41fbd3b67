package dom

import (
	"errors"
	"strings"
	"testing"
)

func mount(t *testing.T, d *Document, markup string) *Element {
	t.Helper()
	frag, err := d.HTML(markup)
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	root := frag.Children()[0]
	if err := d.Body().Append(frag); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	return root
}

func TestNewDocument(t *testing.T) {
	d := NewDocument()
	if d.Body() == nil {
		t.Fatal("expected a body element")
	}
	if got := d.DocumentElement().Tag(); got != "html" {
		t.Fatalf("DocumentElement().Tag() = %q, want html", got)
	}
	if !d.Body().IsConnected() {
		t.Fatal("body should be connected")
	}
	if d.Window().OwnerDocument() != d {
		t.Fatal("window should belong to its document")
	}
}

func TestHTML_Fragment(t *testing.T) {
	d := NewDocument()
	frag, err := d.HTML(`
		<div class="box"></div>
		<h1>quotes</h1>
		<quote-list></quote-list>
	`)
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	if got := frag.ChildElementCount(); got != 3 {
		t.Fatalf("ChildElementCount() = %d, want 3", got)
	}

	if err := d.Body().Append(frag); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if got := frag.ChildElementCount(); got != 0 {
		t.Fatalf("fragment should be empty after append, has %d", got)
	}
	if got := d.Body().ChildElementCount(); got != 3 {
		t.Fatalf("body has %d children, want 3", got)
	}
	if el := d.First("quote-list"); el == nil || !el.IsConnected() {
		t.Fatal("quote-list should be connected")
	}
}

func TestHTML_Empty(t *testing.T) {
	d := NewDocument()
	frag, err := d.HTML("   ")
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	if frag.ChildElementCount() != 0 {
		t.Fatal("expected an empty fragment")
	}
}

func TestElement_Tree(t *testing.T) {
	d := NewDocument()
	outer := mount(t, d, `<div id="outer"><p id="middle"><span id="inner">hi</span></p></div>`)

	inner := d.First("#inner")
	if inner == nil {
		t.Fatal("inner not found")
	}
	if got := inner.Parent().ID(); got != "middle" {
		t.Fatalf("inner parent = %q, want middle", got)
	}
	if got := inner.TextContent(); got != "hi" {
		t.Fatalf("TextContent() = %q, want hi", got)
	}
	if got := outer.OuterHTML(); got != `<div id="outer"><p id="middle"><span id="inner">hi</span></p></div>` {
		t.Fatalf("OuterHTML() = %q", got)
	}

	closest, err := inner.Closest("div")
	if err != nil || closest != outer {
		t.Fatalf("Closest(div) = %v, %v; want outer", closest, err)
	}
	if ok, _ := inner.Matches("span#inner"); !ok {
		t.Fatal("inner should match span#inner")
	}

	if err := inner.Append(outer); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("Append(ancestor) error = %v, want ErrHierarchy", err)
	}
	if !outer.IsConnected() {
		t.Fatal("failed insertion must not detach the node")
	}

	outer.Remove()
	if inner.IsConnected() {
		t.Fatal("inner should be disconnected after removing outer")
	}
	if inner.Parent().ID() != "middle" {
		t.Fatal("removal must keep the subtree intact")
	}
}

func TestElement_ChildNodesIsLive(t *testing.T) {
	d := NewDocument()
	list := d.Body().ChildNodes()
	if list.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", list.Len())
	}
	d.Body().AppendChild(d.CreateElement("div"))
	if list.Len() != 1 {
		t.Fatalf("Len() = %d after append, want 1", list.Len())
	}
	if list.Item(0).Tag() != "div" || list.Item(5) != nil {
		t.Fatal("unexpected Item results")
	}
}

func TestElement_SetInnerHTMLAndText(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	if err := el.SetInnerHTML(`<b>one</b><i>two</i>`); err != nil {
		t.Fatalf("SetInnerHTML() error: %v", err)
	}
	if got := el.InnerHTML(); got != "<b>one</b><i>two</i>" {
		t.Fatalf("InnerHTML() = %q", got)
	}
	el.SetTextContent("a < b")
	if got := el.InnerHTML(); got != "a &lt; b" {
		t.Fatalf("InnerHTML() after SetTextContent = %q", got)
	}
	if got := el.ChildElementCount(); got != 0 {
		t.Fatalf("ChildElementCount() = %d, want 0", got)
	}
}

func TestClassList(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("quote-item")
	cl := el.ClassList()
	cl.Add("Quote-7", "Open", "Quote-7")
	if got := el.GetAttribute("class"); got != "Quote-7 Open" {
		t.Fatalf("class = %q", got)
	}
	cl.Remove("Quote-7")
	if cl.Contains("Quote-7") || !cl.Contains("Open") {
		t.Fatalf("class after remove = %q", el.GetAttribute("class"))
	}
	if !cl.Toggle("x") || cl.Toggle("x") {
		t.Fatal("Toggle returned unexpected state")
	}
	if ok, _ := el.Matches(".Open"); !ok {
		t.Fatal("element should match .Open")
	}
}

func TestValue(t *testing.T) {
	d := NewDocument()
	frag := d.MustHTML(`<input type="text" value="init">`)
	in := frag.Children()[0]
	if in.Value() != "init" {
		t.Fatalf("Value() = %q, want init", in.Value())
	}
	in.SetValue("")
	if in.Value() != "" || in.GetAttribute("value") != "init" {
		t.Fatal("SetValue should not touch the attribute")
	}
}

func TestQuerySelector_Invalid(t *testing.T) {
	d := NewDocument()
	if _, err := d.QuerySelector("div[["); !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("error = %v, want ErrInvalidSelector", err)
	}
	if d.First("div[[") != nil {
		t.Fatal("First with an invalid selector should return nil")
	}
}

func TestQuerySelectorAll(t *testing.T) {
	d := NewDocument()
	root := mount(t, d, `<ul><li class="a"></li><li></li><li class="a"></li></ul>`)
	list, err := root.QuerySelectorAll("li.a")
	if err != nil {
		t.Fatalf("QuerySelectorAll() error: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}
	if self, _ := root.QuerySelectorAll("ul"); self.Len() != 0 {
		t.Fatal("QuerySelectorAll must not include the element itself")
	}
}

func TestGetChildren(t *testing.T) {
	d := NewDocument()
	frag := d.MustHTML(`
		<div class="box"></div>
		<h1>quotes</h1>
		<quote-input></quote-input>
		<quote-list></quote-list>
	`)
	got, err := GetChildren(frag, "quote-input", "quote-list")
	if err != nil {
		t.Fatalf("GetChildren() error: %v", err)
	}
	if got[0].Tag() != "quote-input" || got[1].Tag() != "quote-list" {
		t.Fatalf("GetChildren() = %v", got)
	}

	div, err := GetChild(frag, "DIV")
	if err != nil || div.Tag() != "div" {
		t.Fatalf("GetChild(DIV) = %v, %v", div, err)
	}

	if _, err := GetChildren(frag, "quote-list", "quote-input"); !errors.Is(err, ErrMissingChildren) {
		t.Fatalf("out of order GetChildren error = %v, want ErrMissingChildren", err)
	}
	if _, err := GetChildren(frag, "a", "b", "c", "d", "e"); !errors.Is(err, ErrMissingChildren) {
		t.Fatalf("too many names error = %v, want ErrMissingChildren", err)
	}
}

func TestDispatch_PhasesAndOrder(t *testing.T) {
	d := NewDocument()
	mount(t, d, `<div id="outer"><span id="inner"></span></div>`)
	outer := d.First("#outer")
	inner := d.First("#inner")

	var got []string
	record := func(name string) *Listener {
		return NewListener(func(e *Event) { got = append(got, name) })
	}
	d.Window().AddEventListener("click", record("window-capture"), ListenerOptions{Capture: true})
	d.Window().AddEventListener("click", record("window"))
	d.AddEventListener("click", record("document"))
	outer.AddEventListener("click", record("outer-capture"), ListenerOptions{Capture: true})
	outer.AddEventListener("click", record("outer"))
	inner.AddEventListener("click", record("inner"))

	ev := NewEvent("click")
	inner.DispatchEvent(ev)

	want := "window-capture,outer-capture,inner,outer,document,window"
	if strings.Join(got, ",") != want {
		t.Fatalf("order = %s, want %s", strings.Join(got, ","), want)
	}
	if ev.Target != Target(inner) {
		t.Fatal("Target should be inner")
	}
	if ev.CurrentTarget != nil {
		t.Fatal("CurrentTarget should be cleared after dispatch")
	}
}

func TestDispatch_DetachedStopsAtTop(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	child := d.CreateElement("span")
	el.AppendChild(child)

	reached := 0
	d.AddEventListener("click", NewListener(func(*Event) { reached++ }))
	el.AddEventListener("click", NewListener(func(*Event) { reached++ }))

	child.DispatchEvent(NewEvent("click"))
	if reached != 1 {
		t.Fatalf("reached = %d, want 1 (detached trees do not reach the document)", reached)
	}
}

func TestDispatch_StopPropagation(t *testing.T) {
	d := NewDocument()
	outer := mount(t, d, `<div><span></span></div>`)
	inner := outer.FirstElementChild()

	var got []string
	inner.AddEventListener("click", NewListener(func(e *Event) {
		got = append(got, "first")
		e.StopImmediatePropagation()
	}))
	inner.AddEventListener("click", NewListener(func(*Event) { got = append(got, "second") }))
	outer.AddEventListener("click", NewListener(func(*Event) { got = append(got, "outer") }))

	inner.DispatchEvent(NewEvent("click"))
	if strings.Join(got, ",") != "first" {
		t.Fatalf("got %v, want [first]", got)
	}
}

func TestListeners_DuplicateAndRemove(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	calls := 0
	l := NewListener(func(*Event) { calls++ })

	el.AddEventListener("click", l)
	el.AddEventListener("click", l)
	el.AddEventListener("click", l, ListenerOptions{Capture: true})
	if got := el.ListenerCount("click"); got != 2 {
		t.Fatalf("ListenerCount() = %d, want 2", got)
	}

	el.RemoveEventListener("click", l, ListenerOptions{Capture: true})
	el.DispatchEvent(NewEvent("click"))
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	el.RemoveEventListener("click", l)
	if got := el.ListenerCount("click"); got != 0 {
		t.Fatalf("ListenerCount() = %d, want 0", got)
	}
}

func TestListeners_RemovedDuringDispatchIsSkipped(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	var second *Listener
	secondCalls, addedCalls := 0, 0
	added := NewListener(func(*Event) { addedCalls++ })
	first := NewListener(func(*Event) {
		el.RemoveEventListener("click", second)
		el.AddEventListener("click", added)
	})
	second = NewListener(func(*Event) { secondCalls++ })
	el.AddEventListener("click", first)
	el.AddEventListener("click", second)

	el.DispatchEvent(NewEvent("click"))
	if secondCalls != 0 {
		t.Fatal("a listener removed during dispatch must not run")
	}
	if addedCalls != 0 {
		t.Fatal("a listener added during dispatch must wait for the next event")
	}
}

func TestListeners_OncePassiveAndPanic(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	onceCalls := 0
	el.AddEventListener("x", NewListener(func(*Event) { onceCalls++ }), ListenerOptions{Once: true})
	el.AddEventListener("x", NewListener(func(e *Event) { e.PreventDefault() }), ListenerOptions{Passive: true})
	el.AddEventListener("x", NewListener(func(*Event) { panic("boom") }))
	reached := false
	el.AddEventListener("x", NewListener(func(*Event) { reached = true }))

	if ok := el.DispatchEvent(NewEvent("x")); !ok {
		t.Fatal("PreventDefault in a passive listener must be ignored")
	}
	el.DispatchEvent(NewEvent("x"))
	if onceCalls != 1 {
		t.Fatalf("once listener ran %d times, want 1", onceCalls)
	}
	if !reached {
		t.Fatal("a panicking listener must not stop the dispatch")
	}
}

type recordingCustom struct {
	el  *Element
	log *[]string
}

func (r *recordingCustom) ConnectedCallback() {
	*r.log = append(*r.log, "connect:"+r.el.GetAttribute("id"))
}

func (r *recordingCustom) DisconnectedCallback() {
	*r.log = append(*r.log, "disconnect:"+r.el.GetAttribute("id"))
}

func TestDefine_Callbacks(t *testing.T) {
	d := NewDocument()
	var log []string
	if err := d.Define("x-rec", func(el *Element) CustomElement {
		return &recordingCustom{el: el, log: &log}
	}); err != nil {
		t.Fatalf("Define() error: %v", err)
	}
	if err := d.Define("X-REC", nil); !errors.Is(err, ErrAlreadyDefined) {
		t.Fatalf("second Define error = %v, want ErrAlreadyDefined", err)
	}

	frag := d.MustHTML(`<x-rec id="a"><x-rec id="b"></x-rec></x-rec><x-rec id="c"></x-rec>`)
	for _, el := range frag.Children() {
		if el.Custom() == nil {
			t.Fatal("defined elements should be constructed at creation")
		}
	}
	if len(log) != 0 {
		t.Fatalf("no callbacks expected before connection, got %v", log)
	}

	d.Body().Append(frag)
	if got := strings.Join(log, ","); got != "connect:a,connect:b,connect:c" {
		t.Fatalf("connect order = %s", got)
	}

	log = nil
	a := d.First("#a")
	other := mount(t, d, `<section></section>`)
	other.AppendChild(a)
	if got := strings.Join(log, ","); got != "disconnect:a,disconnect:b,connect:a,connect:b" {
		t.Fatalf("reparent callbacks = %s", got)
	}

	log = nil
	other.Remove()
	if got := strings.Join(log, ","); got != "disconnect:a,disconnect:b" {
		t.Fatalf("remove callbacks = %s", got)
	}
}

func TestDefine_UpgradesExistingElements(t *testing.T) {
	d := NewDocument()
	mount(t, d, `<x-late id="late"></x-late>`)
	var log []string
	d.Define("x-late", func(el *Element) CustomElement {
		return &recordingCustom{el: el, log: &log}
	})
	if got := strings.Join(log, ","); got != "connect:late" {
		t.Fatalf("callbacks = %s, want connect:late", got)
	}
	if !d.Defined("x-late") {
		t.Fatal("Defined(x-late) = false")
	}
}

func TestCreateElement_ConstructsCustom(t *testing.T) {
	d := NewDocument()
	var log []string
	d.Define("x-new", func(el *Element) CustomElement {
		return &recordingCustom{el: el, log: &log}
	})
	el := d.CreateElement("x-new")
	if el.Custom() == nil {
		t.Fatal("CreateElement should construct a defined element")
	}
	d.Body().AppendChild(el)
	if len(log) != 1 {
		t.Fatalf("callbacks = %v, want one connect", log)
	}
}

func TestCompileSelector_Cache(t *testing.T) {
	a, err := CompileSelector("li.a, li.b")
	if err != nil {
		t.Fatalf("CompileSelector() error: %v", err)
	}
	b := MustCompileSelector("li.a, li.b")
	if a != b {
		t.Fatal("expected the cached selector")
	}
	if a.String() != "li.a, li.b" {
		t.Fatalf("String() = %q", a.String())
	}
	if a.Match(nil) {
		t.Fatal("nil element must not match")
	}
}

func TestReplaceChildren_StopsTrackingRemovedElements(t *testing.T) {
	d := NewDocument()
	ul := mount(t, d, `<ul></ul>`)

	for i := 0; i < 1000; i++ {
		frag := d.CreateDocumentFragment()
		for j := 0; j < 10; j++ {
			if err := frag.Append(d.CreateElement("li")); err != nil {
				t.Fatalf("Append() error: %v", err)
			}
		}
		if err := ul.ReplaceChildren(frag); err != nil {
			t.Fatalf("ReplaceChildren() error: %v", err)
		}
	}

	if got := ul.ChildElementCount(); got != 10 {
		t.Fatalf("ChildElementCount() = %d, want 10", got)
	}
	// html, head, body, ul and the live items.
	if got := len(d.elements); got > 14 {
		t.Fatalf("tracked elements = %d, want at most 14", got)
	}
}

func TestRemove_KeepsIdentityAndState(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("p")
	if err := d.Body().AppendChild(p); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	p.Remove()
	if _, ok := d.elements[p.node]; ok {
		t.Fatal("a removed plain element should not stay tracked")
	}
	if err := d.Body().AppendChild(p); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	if d.First("p") != p {
		t.Fatal("an appended element should keep its identity")
	}

	btn := mount(t, d, `<button></button>`)
	btn.AddEventListener("click", NewListener(func(*Event) {}))
	btn.Remove()
	if _, ok := d.elements[btn.node]; !ok {
		t.Fatal("an element with listeners should stay tracked")
	}
}

func TestRelease(t *testing.T) {
	d := NewDocument()
	var log []string
	d.Define("x-rel", func(el *Element) CustomElement {
		return &recordingCustom{el: el, log: &log}
	})
	el := mount(t, d, `<x-rel id="r"><span></span></x-rel>`)

	d.Release(el)
	if _, ok := d.elements[el.node]; !ok {
		t.Fatal("Release should ignore a connected element")
	}

	el.Remove()
	if _, ok := d.elements[el.node]; !ok {
		t.Fatal("a removed custom element stays tracked until Release")
	}
	d.Release(el)
	if _, ok := d.elements[el.node]; ok {
		t.Fatal("Release should stop tracking the element")
	}
	for n := range d.elements {
		if n.Data == "span" {
			t.Fatal("Release should stop tracking descendants")
		}
	}
}
