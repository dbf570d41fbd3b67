package component

import "github.com/vango-go/domkit/pkg/events"

// Scope selects the target an event declaration is bound to.
type Scope int

const (
	// ScopeElement binds on the component's own element.
	ScopeElement Scope = iota
	// ScopeDocument binds on the owning document.
	ScopeDocument
	// ScopeWindow binds on the document's window.
	ScopeWindow
)

func (s Scope) String() string {
	switch s {
	case ScopeElement:
		return "element"
	case ScopeDocument:
		return "document"
	case ScopeWindow:
		return "window"
	default:
		return "unknown"
	}
}

// Decl is a declared subscription of a component type.
type Decl interface {
	method() string
}

// EventDecl binds the named method to dom events.
type EventDecl struct {
	Method   string
	Types    string // comma separated
	Selector string
	Scope    Scope
	Options  *events.Options
}

func (d EventDecl) method() string { return d.Method }

// With returns a copy of d carrying binding option overrides.
func (d EventDecl) With(opts events.Options) EventDecl {
	d.Options = &opts
	return d
}

// HubDecl binds the named method to a hub topic and optional labels.
type HubDecl struct {
	Method string
	Hub    string
	Topics string
	Labels string
}

func (d HubDecl) method() string { return d.Method }

// OnEvent declares method as a listener on the component element, delegated
// to selector when it is not empty.
func OnEvent(method, types, selector string) EventDecl {
	return EventDecl{Method: method, Types: types, Selector: selector, Scope: ScopeElement}
}

// OnDocEvent declares method as a listener on the document.
func OnDocEvent(method, types, selector string) EventDecl {
	return EventDecl{Method: method, Types: types, Selector: selector, Scope: ScopeDocument}
}

// OnWinEvent declares method as a listener on the window.
func OnWinEvent(method, types, selector string) EventDecl {
	return EventDecl{Method: method, Types: types, Selector: selector, Scope: ScopeWindow}
}

// OnHub declares method as a subscriber of hubName.
func OnHub(method, hubName, topics, labels string) HubDecl {
	return HubDecl{Method: method, Hub: hubName, Topics: topics, Labels: labels}
}
