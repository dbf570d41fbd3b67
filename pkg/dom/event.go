package dom

// EventPhase is the phase of an event dispatch.
type EventPhase int

const (
	PhaseNone EventPhase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// Event is a native event travelling through the tree.
type Event struct {
	Type    string
	Bubbles bool

	// Target is where the event was dispatched. CurrentTarget is the target
	// whose listeners are running.
	Target        Target
	CurrentTarget Target
	Phase         EventPhase

	// SelectTarget is the element matched by a delegated binding.
	SelectTarget *Element

	// Context is the value bound with a listener registration, set by the
	// dispatcher before each delegated call.
	Context any

	Key    string // keyboard events
	Detail any

	stopped          bool
	stoppedImmediate bool
	defaultPrevented bool
	inPassive        bool
}

// NewEvent returns a bubbling event of type typ.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true}
}

// NewKeyEvent returns a bubbling keyboard event.
func NewKeyEvent(typ, key string) *Event {
	return &Event{Type: typ, Bubbles: true, Key: key}
}

// StopPropagation prevents the event from reaching further targets.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation also skips the remaining listeners of the
// current target.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedImmediate = true
}

// PreventDefault marks the event as canceled. It has no effect inside a
// passive listener.
func (e *Event) PreventDefault() {
	if !e.inPassive {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener is a native event listener. Listeners are compared by pointer, so
// the same *Listener must be passed to add and remove.
type Listener struct {
	fn func(*Event)
}

// NewListener wraps fn.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// Handle invokes the listener function.
func (l *Listener) Handle(e *Event) {
	if l != nil && l.fn != nil {
		l.fn(e)
	}
}

// ListenerOptions mirror the options of addEventListener.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

// Target is anything that can receive native events: elements, the document
// and the window.
type Target interface {
	AddEventListener(typ string, l *Listener, opts ...ListenerOptions)
	RemoveEventListener(typ string, l *Listener, opts ...ListenerOptions)
	ListenerCount(typ string) int
	DispatchEvent(e *Event) bool
	OwnerDocument() *Document
}

type listenerEntry struct {
	listener *Listener
	opts     ListenerOptions
	removed  bool
}

// listenerSet stores the listeners of one target. Type slices are replaced,
// never mutated, so a dispatch can iterate a snapshot.
type listenerSet struct {
	byType map[string][]*listenerEntry
}

func (s *listenerSet) AddEventListener(typ string, l *Listener, opts ...ListenerOptions) {
	if l == nil {
		return
	}
	var o ListenerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if s.byType == nil {
		s.byType = make(map[string][]*listenerEntry)
	}
	for _, e := range s.byType[typ] {
		if e.listener == l && e.opts.Capture == o.Capture {
			return
		}
	}
	cur := s.byType[typ]
	next := make([]*listenerEntry, len(cur), len(cur)+1)
	copy(next, cur)
	s.byType[typ] = append(next, &listenerEntry{listener: l, opts: o})
}

func (s *listenerSet) RemoveEventListener(typ string, l *Listener, opts ...ListenerOptions) {
	capture := len(opts) > 0 && opts[0].Capture
	cur := s.byType[typ]
	for i, e := range cur {
		if e.listener != l || e.opts.Capture != capture {
			continue
		}
		e.removed = true
		next := make([]*listenerEntry, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		if len(next) == 0 {
			delete(s.byType, typ)
		} else {
			s.byType[typ] = next
		}
		return
	}
}

// ListenerCount returns the number of native listeners for typ.
func (s *listenerSet) ListenerCount(typ string) int {
	return len(s.byType[typ])
}

func (s *listenerSet) snapshot(typ string) []*listenerEntry {
	return s.byType[typ]
}

var (
	_ Target = (*Element)(nil)
	_ Target = (*Document)(nil)
	_ Target = (*Window)(nil)
)
