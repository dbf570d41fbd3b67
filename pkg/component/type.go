package component

import (
	"fmt"
	"sync"

	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/hub"
)

// Type is a component type: its own declarations plus a parent type whose
// declarations it inherits.
type Type struct {
	name   string
	parent *Type
	events []EventDecl
	hubs   []HubDecl

	// chain lists t and its ancestors, most derived first.
	chain []*Type

	once     sync.Once
	computed *Computed
	err      error
}

// Define returns a new type named name extending parent, which may be nil.
// Declarations are kept in the order given.
func Define(name string, parent *Type, decls ...Decl) *Type {
	t := &Type{name: name, parent: parent}
	for _, d := range decls {
		switch d := d.(type) {
		case EventDecl:
			t.events = append(t.events, d)
		case HubDecl:
			t.hubs = append(t.hubs, d)
		}
	}
	t.chain = []*Type{t}
	if parent != nil {
		t.chain = append(t.chain, parent.chain...)
	}
	return t
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Parent returns the parent type, or nil.
func (t *Type) Parent() *Type { return t.parent }

// Computed is the resolved subscription set of a type.
type Computed struct {
	Element  []EventDecl
	Document []EventDecl
	Window   []EventDecl
	Hubs     []HubDecl
}

// HasParentEvents reports whether any declaration binds on the document or
// the window.
func (c *Computed) HasParentEvents() bool {
	return len(c.Document) > 0 || len(c.Window) > 0
}

// HubNames returns the distinct hub names in declaration order.
func (c *Computed) HubNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, d := range c.Hubs {
		if !seen[d.Hub] {
			seen[d.Hub] = true
			names = append(names, d.Hub)
		}
	}
	return names
}

// Resolve returns the subscriptions of t and its ancestors. A method
// declared by a more derived type hides any declaration of the same method
// in its ancestors; event and hub declarations hide independently. The
// result, or the error, is computed once per type.
func Resolve(t *Type) (*Computed, error) {
	t.once.Do(func() {
		t.computed, t.err = resolve(t)
	})
	return t.computed, t.err
}

func resolve(t *Type) (*Computed, error) {
	c := &Computed{}

	claimedEvents := make(map[string]bool)
	claimedHubs := make(map[string]bool)

	for _, level := range t.chain {
		levelEvents := make(map[Scope]map[string]bool)
		levelClaimed := make(map[string]bool)
		for _, d := range level.events {
			if err := validateEvent(level, d); err != nil {
				return nil, err
			}
			if levelEvents[d.Scope] == nil {
				levelEvents[d.Scope] = make(map[string]bool)
			}
			if levelEvents[d.Scope][d.Method] {
				return nil, fmt.Errorf("%w: %s.%s (%s)", ErrDuplicateMethod, level.name, d.Method, d.Scope)
			}
			levelEvents[d.Scope][d.Method] = true

			if claimedEvents[d.Method] {
				continue
			}
			switch d.Scope {
			case ScopeDocument:
				c.Document = append(c.Document, d)
			case ScopeWindow:
				c.Window = append(c.Window, d)
			default:
				c.Element = append(c.Element, d)
			}
			levelClaimed[d.Method] = true
		}
		for m := range levelClaimed {
			claimedEvents[m] = true
		}

		levelHubs := make(map[string]bool)
		for _, d := range level.hubs {
			if err := validateHub(level, d); err != nil {
				return nil, err
			}
			if levelHubs[d.Method] {
				return nil, fmt.Errorf("%w: %s.%s (hub)", ErrDuplicateMethod, level.name, d.Method)
			}
			levelHubs[d.Method] = true
			if claimedHubs[d.Method] {
				continue
			}
			c.Hubs = append(c.Hubs, d)
		}
		for m := range levelHubs {
			claimedHubs[m] = true
		}
	}
	return c, nil
}

func validateEvent(level *Type, d EventDecl) error {
	if d.Method == "" || d.Types == "" {
		return fmt.Errorf("%w: %s event declaration %+v", ErrInvalidDecl, level.name, d)
	}
	if d.Selector != "" {
		if _, err := dom.CompileSelector(d.Selector); err != nil {
			return fmt.Errorf("%s.%s: %w", level.name, d.Method, err)
		}
	}
	return nil
}

func validateHub(level *Type, d HubDecl) error {
	if d.Hub == "" {
		return fmt.Errorf("%s.%s: %w", level.name, d.Method, hub.ErrInvalidName)
	}
	if d.Method == "" || d.Topics == "" {
		return fmt.Errorf("%w: %s hub declaration %+v", ErrInvalidDecl, level.name, d)
	}
	return nil
}
