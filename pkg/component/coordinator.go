package component

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/events"
	"github.com/vango-go/domkit/pkg/hub"
)

var errNotAdopted = errors.New("component: attach before adopt")

// Scheduler defers callbacks to the next frame. *loop.Loop implements it.
type Scheduler interface {
	RequestFrame(fn func())
}

// Coordinator binds and unbinds the declared subscriptions of components as
// they attach to and detach from the document.
//
// Element bindings are made once, on the first attach, and live as long as
// the component. Document and window bindings are made on attach and removed
// one frame after a detach, unless the component was attached again in the
// meantime. Hub subscriptions are made on every attach and removed on every
// detach.
type Coordinator struct {
	scheduler Scheduler
	binder    *events.Binder
	logger    *slog.Logger
}

// NewCoordinator returns a coordinator using s for deferred work and b for
// dom bindings. A nil b uses events.Default.
func NewCoordinator(s Scheduler, b *events.Binder) *Coordinator {
	if b == nil {
		b = events.Default
	}
	return &Coordinator{
		scheduler: s,
		binder:    b,
		logger:    slog.Default().With("component", "coordinator"),
	}
}

// SetLogger replaces the coordinator logger.
func (c *Coordinator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Binder returns the binder used for dom bindings.
func (c *Coordinator) Binder() *events.Binder { return c.binder }

// Adopt prepares comp as an instance of typ hosted by el and assigns its
// namespace. Register calls it for each constructed element.
func (c *Coordinator) Adopt(comp Component, typ *Type, el *dom.Element) {
	b := comp.ComponentBase()
	b.typ = typ
	b.el = el
	if b.ns == "" {
		b.ns = nextNamespace()
	}
}

// Attach materializes the bindings of comp. It is idempotent except for
// display callbacks, which are scheduled on every call.
func (c *Coordinator) Attach(comp Component) error {
	b := comp.ComponentBase()
	if b.typ == nil || b.el == nil {
		return errNotAdopted
	}
	if b.disposed {
		return fmt.Errorf("component: attach after dispose (%s)", b.ns)
	}
	computed, err := Resolve(b.typ)
	if err != nil {
		c.logger.Error("resolve failed", "type", b.typ.name, "error", err)
		return err
	}

	base := events.Options{Namespace: b.ns, Context: comp}

	if computed.HasParentEvents() && !b.parentBound {
		parentOpts := base
		parentOpts.SilenceDisconnectedContext = true
		doc := b.Document()
		c.bindEvents(comp, doc, computed.Document, parentOpts)
		c.bindEvents(comp, doc.Window(), computed.Window, parentOpts)
		b.parentBound = true
	}

	if !b.hubBound {
		for _, d := range computed.Hubs {
			h, ok := b.handler(comp, d.Method)
			if !ok {
				c.missing(b, d.Method, "hub")
				continue
			}
			hub.Must(d.Hub).Subscribe(d.Topics, d.Labels, h,
				hub.WithNamespace(b.ns),
				hub.WithContext(comp))
		}
		b.hubBound = true
	}

	if !b.initialized {
		c.bindEvents(comp, b.el, computed.Element, base)
		b.rootBound = true
		if in, ok := comp.(Initializer); ok {
			in.Init()
		}
		b.initialized = true
	}

	c.scheduleDisplay(comp)
	return nil
}

// Detach removes hub subscriptions now and schedules removal of document and
// window bindings for the next frame. Element bindings are kept.
func (c *Coordinator) Detach(comp Component) {
	b := comp.ComponentBase()
	if b.typ == nil {
		return
	}
	computed, err := Resolve(b.typ)
	if err != nil {
		return
	}

	if computed.HasParentEvents() {
		c.scheduler.RequestFrame(func() {
			if b.IsConnected() || !b.parentBound {
				return
			}
			c.unbindParent(b, computed)
		})
	}

	if len(computed.Hubs) > 0 && b.hubBound {
		for _, name := range computed.HubNames() {
			hub.Must(name).Unsubscribe(b.ns)
		}
		b.hubBound = false
	}
}

// Dispose removes every binding of comp and runs its cleanups. A detached
// host element is released from its document. A disposed component cannot
// be attached again.
func (c *Coordinator) Dispose(comp Component) {
	b := comp.ComponentBase()
	if b.disposed || b.typ == nil {
		return
	}
	computed, err := Resolve(b.typ)
	if err == nil {
		if b.parentBound {
			c.unbindParent(b, computed)
		}
		if b.hubBound {
			for _, name := range computed.HubNames() {
				hub.Must(name).Unsubscribe(b.ns)
			}
			b.hubBound = false
		}
		if b.rootBound && len(computed.Element) > 0 {
			c.binder.OffNamespace(b.el, b.ns)
		}
		b.rootBound = false
	}

	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
	b.cleanups = nil
	b.disposed = true

	if doc := b.Document(); doc != nil && !b.IsConnected() {
		doc.Release(b.el)
	}
}

func (c *Coordinator) unbindParent(b *Base, computed *Computed) {
	doc := b.Document()
	if len(computed.Document) > 0 {
		c.binder.OffNamespace(doc, b.ns)
	}
	if len(computed.Window) > 0 {
		c.binder.OffNamespace(doc.Window(), b.ns)
	}
	b.parentBound = false
}

func (c *Coordinator) bindEvents(comp Component, target dom.Target, decls []EventDecl, base events.Options) {
	b := comp.ComponentBase()
	for _, d := range decls {
		l, ok := b.listener(comp, d.Method)
		if !ok {
			c.missing(b, d.Method, d.Scope.String())
			continue
		}
		opts := mergeOptions(base, d.Options)
		if err := c.binder.On(target, d.Types, d.Selector, l, &opts); err != nil {
			c.logger.Error("bind failed",
				"type", b.typ.name,
				"method", d.Method,
				"error", err)
		}
	}
}

func (c *Coordinator) missing(b *Base, method, scope string) {
	c.logger.Warn(ErrMissingMethod.Error(),
		"type", b.typ.name,
		"method", method,
		"scope", scope,
		"namespace", b.ns)
}

func (c *Coordinator) scheduleDisplay(comp Component) {
	b := comp.ComponentBase()
	if p, ok := comp.(PreDisplayer); ok {
		first := !b.preDisplayAttached
		b.preDisplayAttached = true
		c.scheduler.RequestFrame(func() {
			p.PreDisplay(first)
			b.preDisplayAttached = false
		})
	}
	if p, ok := comp.(PostDisplayer); ok {
		first := !b.postDisplayAttached
		b.postDisplayAttached = true
		c.scheduler.RequestFrame(func() {
			c.scheduler.RequestFrame(func() {
				p.PostDisplay(first)
				b.postDisplayAttached = false
			})
		})
	}
}

// mergeOptions applies the declaration overrides to the instance options.
func mergeOptions(base events.Options, override *events.Options) events.Options {
	if override == nil {
		return base
	}
	out := base
	if override.Namespace != "" {
		out.Namespace = override.Namespace
	}
	if override.Context != nil {
		out.Context = override.Context
	}
	out.SilenceDisconnectedContext = base.SilenceDisconnectedContext || override.SilenceDisconnectedContext
	out.Capture = override.Capture
	out.Passive = override.Passive
	return out
}
