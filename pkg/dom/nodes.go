package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Fragment is a detached list of nodes. Appending a fragment moves its
// contents and leaves it empty.
type Fragment struct {
	doc       *Document
	container *html.Node
}

// Children returns the top level elements of the fragment.
func (f *Fragment) Children() []*Element {
	return f.doc.elementChildren(f.container)
}

// ChildElementCount returns the number of top level elements.
func (f *Fragment) ChildElementCount() int {
	return len(f.Children())
}

// Append moves nodes to the end of the fragment.
func (f *Fragment) Append(nodes ...Node) error {
	return f.doc.insert(f.container, nodes)
}

// QuerySelector returns the first element of the fragment matching sel.
func (f *Fragment) QuerySelector(sel string) (*Element, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	if n := s.first(f.container); n != nil {
		return f.doc.wrap(n), nil
	}
	return nil, nil
}

func (f *Fragment) htmlNodes() []*html.Node {
	var out []*html.Node
	for c := f.container.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// NodeList is an ordered list of elements. A list returned by ChildNodes is
// live; lists from QuerySelectorAll are static.
type NodeList struct {
	live  *Element
	items []*Element
}

// NewNodeList returns a static list of els.
func NewNodeList(els ...*Element) *NodeList {
	return &NodeList{items: els}
}

// Len returns the number of elements.
func (l *NodeList) Len() int {
	return len(l.Slice())
}

// Item returns the element at i, or nil when out of range.
func (l *NodeList) Item(i int) *Element {
	items := l.Slice()
	if i < 0 || i >= len(items) {
		return nil
	}
	return items[i]
}

// Slice returns the current elements as a new slice.
func (l *NodeList) Slice() []*Element {
	if l == nil {
		return nil
	}
	if l.live != nil {
		return l.live.Children()
	}
	out := make([]*Element, len(l.items))
	copy(out, l.items)
	return out
}

// ClassList edits the class attribute of an element.
type ClassList struct {
	el *Element
}

func (c *ClassList) tokens() []string {
	return strings.Fields(c.el.GetAttribute("class"))
}

func (c *ClassList) set(tokens []string) {
	c.el.SetAttribute("class", strings.Join(tokens, " "))
}

// Contains reports whether name is present.
func (c *ClassList) Contains(name string) bool {
	for _, t := range c.tokens() {
		if t == name {
			return true
		}
	}
	return false
}

// Add adds each name that is not present. Empty names are ignored.
func (c *ClassList) Add(names ...string) {
	tokens := c.tokens()
	for _, name := range names {
		if name == "" || containsToken(tokens, name) {
			continue
		}
		tokens = append(tokens, name)
	}
	c.set(tokens)
}

// Remove removes each name.
func (c *ClassList) Remove(names ...string) {
	tokens := c.tokens()
	out := tokens[:0]
	for _, t := range tokens {
		if !containsToken(names, t) {
			out = append(out, t)
		}
	}
	c.set(out)
}

// Toggle removes name when present and adds it otherwise. It reports whether
// name is present afterwards.
func (c *ClassList) Toggle(name string) bool {
	if c.Contains(name) {
		c.Remove(name)
		return false
	}
	c.Add(name)
	return true
}

// Values returns the class tokens.
func (c *ClassList) Values() []string {
	return c.tokens()
}

func containsToken(tokens []string, name string) bool {
	for _, t := range tokens {
		if t == name {
			return true
		}
	}
	return false
}

// Parent is implemented by elements and fragments.
type Parent interface {
	Children() []*Element
}

// GetChild returns the first child of parent with the given tag.
func GetChild(parent Parent, tag string) (*Element, error) {
	children, err := GetChildren(parent, tag)
	if err != nil {
		return nil, err
	}
	return children[0], nil
}

// GetChildren returns, for each tag in order, the next child of parent with
// that tag. Children that do not match the next wanted tag are skipped.
func GetChildren(parent Parent, tags ...string) ([]*Element, error) {
	children := parent.Children()
	if len(children) < len(tags) {
		return nil, fmt.Errorf("%w: %d children for %d names", ErrMissingChildren, len(children), len(tags))
	}
	out := make([]*Element, 0, len(tags))
	for _, child := range children {
		if len(out) == len(tags) {
			break
		}
		if child.Tag() == strings.ToLower(tags[len(out)]) {
			out = append(out, child)
		}
	}
	if len(out) < len(tags) {
		return nil, fmt.Errorf("%w: found %d of %v", ErrMissingChildren, len(out), tags)
	}
	return out, nil
}
