package dom

import (
	"runtime/debug"

	"golang.org/x/net/html"
)

// dispatch runs e through the capture, target and bubble phases of the path
// from the window down to target. It returns false when a listener called
// PreventDefault.
func (d *Document) dispatch(target Target, e *Event) bool {
	e.Target = target
	e.stopped = false
	e.stoppedImmediate = false

	path := d.eventPath(target)

	e.Phase = PhaseCapturing
	for i := len(path) - 1; i > 0 && !e.stopped; i-- {
		d.invokeListeners(path[i], e, true)
	}

	if !e.stopped {
		e.Phase = PhaseAtTarget
		d.invokeListeners(path[0], e, false)
	}

	if e.Bubbles {
		e.Phase = PhaseBubbling
		for i := 1; i < len(path) && !e.stopped; i++ {
			d.invokeListeners(path[i], e, false)
		}
	}

	e.Phase = PhaseNone
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

// eventPath returns target followed by its ancestors. Elements in the
// document end with the document and the window.
func (d *Document) eventPath(target Target) []Target {
	switch t := target.(type) {
	case *Element:
		path := []Target{t}
		for n := t.node.Parent; n != nil; n = n.Parent {
			switch {
			case n.Type == html.ElementNode:
				path = append(path, d.wrap(n))
			case n == d.root:
				path = append(path, d, d.window)
			}
		}
		return path
	case *Document:
		return []Target{t, t.window}
	default:
		return []Target{target}
	}
}

// invokeListeners runs the listeners of t for e. At the target every
// listener runs; otherwise only those registered for the phase.
func (d *Document) invokeListeners(t Target, e *Event, capture bool) {
	var set *listenerSet
	switch v := t.(type) {
	case *Element:
		set = &v.listenerSet
	case *Document:
		set = &v.listenerSet
	case *Window:
		set = &v.listenerSet
	default:
		return
	}

	e.CurrentTarget = t
	for _, entry := range set.snapshot(e.Type) {
		if entry.removed {
			continue
		}
		if e.Phase != PhaseAtTarget && entry.opts.Capture != capture {
			continue
		}
		if entry.opts.Once {
			set.RemoveEventListener(e.Type, entry.listener, entry.opts)
		}
		d.invokeListener(entry, e)
		if e.stoppedImmediate {
			return
		}
	}
}

func (d *Document) invokeListener(entry *listenerEntry, e *Event) {
	e.inPassive = entry.opts.Passive
	defer func() {
		e.inPassive = false
		if r := recover(); r != nil {
			d.logger.Error("event listener panic",
				"type", e.Type,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	entry.listener.Handle(e)
}
