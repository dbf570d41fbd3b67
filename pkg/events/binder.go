package events

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vango-go/domkit/pkg/dom"
)

// Options configure a binding.
type Options struct {
	// Namespace tags the registration for OffNamespace.
	Namespace string

	// Context is stored in Event.Context before the listener runs.
	Context any

	// SilenceDisconnectedContext drops events while Context reports itself
	// as disconnected. Context must implement IsConnected() bool.
	SilenceDisconnectedContext bool

	Capture bool
	Passive bool
}

type connectable interface {
	IsConnected() bool
}

type typeSelectorKey struct {
	typ      string
	selector string
}

func (k typeSelectorKey) String() string {
	if k.selector == "" {
		return k.typ
	}
	return k.typ + "--" + k.selector
}

// listenerRef is one live registration. dispatcher is what the target
// actually holds; it is the listener itself when no wrapping is needed.
type listenerRef struct {
	key        typeSelectorKey
	listener   *dom.Listener
	dispatcher *dom.Listener
	namespace  string
	capture    bool
}

type registry struct {
	byTypeSelector map[typeSelectorKey]map[*dom.Listener]*listenerRef
	byNamespace    map[string]map[*listenerRef]struct{}
}

func newRegistry() *registry {
	return &registry{
		byTypeSelector: make(map[typeSelectorKey]map[*dom.Listener]*listenerRef),
		byNamespace:    make(map[string]map[*listenerRef]struct{}),
	}
}

func (r *registry) empty() bool {
	return len(r.byTypeSelector) == 0 && len(r.byNamespace) == 0
}

// Binder owns the registries of the targets it binds.
type Binder struct {
	mu         sync.Mutex
	registries map[dom.Target]*registry
	native     int
	logger     *slog.Logger
}

// NewBinder returns an empty binder.
func NewBinder() *Binder {
	return &Binder{registries: make(map[dom.Target]*registry)}
}

// log returns the binder logger, falling back to the current default.
func (b *Binder) log() *slog.Logger {
	if b.logger == nil {
		return slog.Default().With("component", "events")
	}
	return b.logger
}

// SetLogger replaces the binder logger.
func (b *Binder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.mu.Lock()
		b.logger = logger
		b.mu.Unlock()
	}
}

// Stats describe the live registrations of a binder.
type Stats struct {
	Targets         int
	NativeListeners int
}

// Stats returns the current registration counts.
func (b *Binder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Targets: len(b.registries), NativeListeners: b.native}
}

// On binds l to every comma separated type of types on each target. With a
// selector, l only runs for events whose origin or an ancestor below the
// target matches it.
//
// targets may be a dom.Target, []dom.Target, []*dom.Element, *dom.NodeList
// or nil. Binding the same listener again for a (target, type, selector)
// replaces the earlier registration.
func (b *Binder) On(targets any, types, selector string, l *dom.Listener, opts *Options) error {
	if l == nil {
		return ErrNilListener
	}
	list, err := asTargets(targets)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}

	var sel *dom.Selector
	if selector != "" {
		sel, err = dom.CompileSelector(selector)
		if err != nil {
			return err
		}
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	native := dom.ListenerOptions{Capture: o.Capture, Passive: o.Passive}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, typ := range splitAndTrim(types) {
		key := typeSelectorKey{typ: typ, selector: selector}
		for _, target := range list {
			reg := b.registries[target]
			if reg == nil {
				reg = newRegistry()
				b.registries[target] = reg
			}
			if old := reg.byTypeSelector[key][l]; old != nil {
				b.removeRef(target, reg, old)
			}

			ref := &listenerRef{
				key:        key,
				listener:   l,
				dispatcher: newDispatcher(l, sel, o),
				namespace:  o.Namespace,
				capture:    o.Capture,
			}
			byListener := reg.byTypeSelector[key]
			if byListener == nil {
				byListener = make(map[*dom.Listener]*listenerRef)
				reg.byTypeSelector[key] = byListener
			}
			byListener[l] = ref
			if ref.namespace != "" {
				set := reg.byNamespace[ref.namespace]
				if set == nil {
					set = make(map[*listenerRef]struct{})
					reg.byNamespace[ref.namespace] = set
				}
				set[ref] = struct{}{}
			}

			target.AddEventListener(typ, ref.dispatcher, native)
			b.native++
			gaugeAdd(1)
		}
	}
	return nil
}

// Off removes registrations of types and selector from each target: only
// the one of l, or all of them when l is nil. Removing something that was
// never bound logs a warning.
func (b *Binder) Off(targets any, types, selector string, l *dom.Listener) {
	list, err := asTargets(targets)
	if err != nil {
		b.log().Warn("off: ignoring targets", "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, typ := range splitAndTrim(types) {
		key := typeSelectorKey{typ: typ, selector: selector}
		for _, target := range list {
			reg := b.registries[target]
			var byListener map[*dom.Listener]*listenerRef
			if reg != nil {
				byListener = reg.byTypeSelector[key]
			}
			if len(byListener) == 0 {
				b.log().Warn("off: type/selector was not bound with on", "key", key.String())
				continue
			}

			if l == nil {
				for _, ref := range byListener {
					b.removeRef(target, reg, ref)
				}
			} else if ref := byListener[l]; ref != nil {
				b.removeRef(target, reg, ref)
			} else {
				b.log().Warn("off: listener was not bound for type/selector", "key", key.String())
				continue
			}
			if reg.empty() {
				delete(b.registries, target)
			}
		}
	}
}

// OffNamespace removes every registration tagged ns from each target.
func (b *Binder) OffNamespace(targets any, ns string) {
	list, err := asTargets(targets)
	if err != nil {
		b.log().Warn("off: ignoring targets", "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, target := range list {
		reg := b.registries[target]
		var set map[*listenerRef]struct{}
		if reg != nil {
			set = reg.byNamespace[ns]
		}
		if len(set) == 0 {
			b.log().Warn("off: no listeners for namespace", "namespace", ns)
			continue
		}
		for ref := range set {
			b.removeRef(target, reg, ref)
		}
		delete(reg.byNamespace, ns)
		if reg.empty() {
			delete(b.registries, target)
		}
	}
}

// BindMap binds each entry of bindings to target. Keys are an event type
// optionally followed by a selector, as in "click" or "click; button.add".
// Entries are bound in key order.
func (b *Binder) BindMap(target dom.Target, bindings map[string]*dom.Listener, opts *Options) error {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		typ, selector := parseBindingKey(k)
		if err := b.On(target, typ, selector, bindings[k], opts); err != nil {
			return fmt.Errorf("bind %q: %w", k, err)
		}
	}
	return nil
}

// removeRef unregisters ref from target and from every index of reg. The
// caller holds b.mu.
func (b *Binder) removeRef(target dom.Target, reg *registry, ref *listenerRef) {
	target.RemoveEventListener(ref.key.typ, ref.dispatcher, dom.ListenerOptions{Capture: ref.capture})
	b.native--
	gaugeAdd(-1)

	if byListener := reg.byTypeSelector[ref.key]; byListener[ref.listener] == ref {
		delete(byListener, ref.listener)
		if len(byListener) == 0 {
			delete(reg.byTypeSelector, ref.key)
		}
	}
	if ref.namespace != "" {
		if set := reg.byNamespace[ref.namespace]; set != nil {
			delete(set, ref)
			if len(set) == 0 {
				delete(reg.byNamespace, ref.namespace)
			}
		}
	}
}

// newDispatcher returns the native listener for a registration.
func newDispatcher(l *dom.Listener, sel *dom.Selector, o Options) *dom.Listener {
	if sel == nil && o.Context == nil {
		return l
	}

	var silence connectable
	if o.SilenceDisconnectedContext {
		silence, _ = o.Context.(connectable)
	}

	call := func(ev *dom.Event, matched *dom.Element) {
		prevCtx, prevSel := ev.Context, ev.SelectTarget
		ev.Context = o.Context
		if matched != nil {
			ev.SelectTarget = matched
		}
		defer func() { ev.Context, ev.SelectTarget = prevCtx, prevSel }()
		l.Handle(ev)
	}

	return dom.NewListener(func(ev *dom.Event) {
		if silence != nil && !silence.IsConnected() {
			return
		}
		if sel == nil {
			call(ev, nil)
			return
		}

		origin, ok := ev.Target.(*dom.Element)
		if !ok {
			return
		}
		if sel.Match(origin) {
			call(ev, origin)
			return
		}
		for el := origin.Parent(); el != nil; el = el.Parent() {
			if dom.Target(el) == ev.CurrentTarget {
				return
			}
			if sel.Match(el) {
				call(ev, el)
				return
			}
		}
	})
}

func parseBindingKey(k string) (typ, selector string) {
	typ, selector, _ = strings.Cut(strings.TrimSpace(k), ";")
	return strings.TrimSpace(typ), strings.TrimSpace(selector)
}

func asTargets(targets any) ([]dom.Target, error) {
	switch t := targets.(type) {
	case nil:
		return nil, nil
	case *dom.Element:
		if t == nil {
			return nil, nil
		}
		return []dom.Target{t}, nil
	case *dom.NodeList:
		els := t.Slice()
		out := make([]dom.Target, len(els))
		for i, el := range els {
			out[i] = el
		}
		return out, nil
	case []*dom.Element:
		out := make([]dom.Target, 0, len(t))
		for _, el := range t {
			if el != nil {
				out = append(out, el)
			}
		}
		return out, nil
	case []dom.Target:
		out := make([]dom.Target, 0, len(t))
		for _, el := range t {
			if el != nil {
				out = append(out, el)
			}
		}
		return out, nil
	case dom.Target:
		return []dom.Target{t}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, targets)
	}
}

// splitAndTrim splits a comma separated list and trims each element.
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
