package component

import (
	"github.com/vango-go/domkit/pkg/dom"
)

// host adapts a component to the dom custom element callbacks.
type host struct {
	coord *Coordinator
	comp  Component
}

func (h *host) ConnectedCallback() {
	if err := h.coord.Attach(h.comp); err != nil {
		h.coord.logger.Error("attach failed", "namespace", h.comp.ComponentBase().ns, "error", err)
	}
}

func (h *host) DisconnectedCallback() {
	h.coord.Detach(h.comp)
}

// Register defines tag on doc so each element of that tag is hosted by a
// component built with factory. The component attaches whenever its element
// enters the document and detaches whenever it leaves.
func (c *Coordinator) Register(doc *dom.Document, tag string, typ *Type, factory func() Component) error {
	return doc.Define(tag, func(el *dom.Element) dom.CustomElement {
		comp := factory()
		c.Adopt(comp, typ, el)
		return &host{coord: c, comp: comp}
	})
}

// Of returns the component hosting el, or nil.
func Of(el *dom.Element) Component {
	if el == nil {
		return nil
	}
	if h, ok := el.Custom().(*host); ok {
		return h.comp
	}
	return nil
}

// As returns the component hosting el as a T.
func As[T Component](el *dom.Element) (T, bool) {
	comp, ok := Of(el).(T)
	return comp, ok
}
