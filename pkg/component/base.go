package component

import (
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/hub"
)

// Methods maps declared method names to their implementations. Event
// methods are func(*dom.Event); hub methods are hub.Handler,
// func(any, hub.Info) or func(any).
type Methods map[string]any

// Component is implemented by every component, normally by embedding Base
// and overriding Methods.
type Component interface {
	ComponentBase() *Base
	Methods() Methods
}

// Initializer is implemented by components with one-time setup. Init runs
// on the first attach, after element bindings are in place.
type Initializer interface {
	Init()
}

// PreDisplayer is implemented by components that want a callback on the
// frame after each attach.
type PreDisplayer interface {
	PreDisplay(first bool)
}

// PostDisplayer is implemented by components that want a callback two
// frames after each attach.
type PostDisplayer interface {
	PostDisplay(first bool)
}

// Base holds the per-instance state the Coordinator needs. It is embedded by
// value in component structs.
type Base struct {
	typ *Type
	el  *dom.Element
	ns  string

	initialized bool
	rootBound   bool
	parentBound bool
	hubBound    bool
	disposed    bool

	preDisplayAttached  bool
	postDisplayAttached bool

	methods   Methods
	listeners map[string]*dom.Listener
	handlers  map[string]hub.Handler
	cleanups  []func()
}

// ComponentBase returns b.
func (b *Base) ComponentBase() *Base { return b }

// Methods returns no methods. Components with declarations override it.
func (b *Base) Methods() Methods { return nil }

// Type returns the component type.
func (b *Base) Type() *Type { return b.typ }

// Element returns the host element.
func (b *Base) Element() *dom.Element { return b.el }

// Document returns the document of the host element.
func (b *Base) Document() *dom.Document {
	if b.el == nil {
		return nil
	}
	return b.el.OwnerDocument()
}

// Namespace returns the id that tags every binding of the instance.
func (b *Base) Namespace() string { return b.ns }

// Initialized reports whether Init has run.
func (b *Base) Initialized() bool { return b.initialized }

// Disposed reports whether the component was disposed.
func (b *Base) Disposed() bool { return b.disposed }

// IsConnected reports whether the host element is in the document.
func (b *Base) IsConnected() bool { return b.el != nil && b.el.IsConnected() }

// OnCleanup registers fn to run when the component is disposed. Cleanups
// run in reverse order of registration.
func (b *Base) OnCleanup(fn func()) {
	if fn != nil {
		b.cleanups = append(b.cleanups, fn)
	}
}

// BindingState reports which binding categories are live.
type BindingState struct {
	Element bool
	Parent  bool
	Hub     bool
}

// Bindings returns the current binding state.
func (b *Base) Bindings() BindingState {
	return BindingState{Element: b.rootBound, Parent: b.parentBound, Hub: b.hubBound}
}

// listener returns the stable dom listener of an event method.
func (b *Base) listener(c Component, method string) (*dom.Listener, bool) {
	if l, ok := b.listeners[method]; ok {
		return l, true
	}
	fn, ok := b.methodTable(c)[method].(func(*dom.Event))
	if !ok {
		return nil, false
	}
	if b.listeners == nil {
		b.listeners = make(map[string]*dom.Listener)
	}
	l := dom.NewListener(fn)
	b.listeners[method] = l
	return l, true
}

// handler returns the hub handler of a hub method.
func (b *Base) handler(c Component, method string) (hub.Handler, bool) {
	if h, ok := b.handlers[method]; ok {
		return h, true
	}
	var h hub.Handler
	switch fn := b.methodTable(c)[method].(type) {
	case hub.Handler:
		h = fn
	case func(any, hub.Info):
		h = fn
	case func(any):
		h = func(data any, _ hub.Info) { fn(data) }
	default:
		return nil, false
	}
	if b.handlers == nil {
		b.handlers = make(map[string]hub.Handler)
	}
	b.handlers[method] = h
	return h, true
}

func (b *Base) methodTable(c Component) Methods {
	if b.methods == nil {
		b.methods = c.Methods()
		if b.methods == nil {
			b.methods = Methods{}
		}
	}
	return b.methods
}
