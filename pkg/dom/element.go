package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Node is anything that can be inserted under an element or fragment.
type Node interface {
	// htmlNodes returns the nodes moved by an insertion.
	htmlNodes() []*html.Node
}

// Element is an element node of a Document.
type Element struct {
	listenerSet

	doc    *Document
	node   *html.Node
	custom CustomElement
	value  *string
}

// OwnerDocument returns the document that created e.
func (e *Element) OwnerDocument() *Document { return e.doc }

// Tag returns the lower case tag name.
func (e *Element) Tag() string { return e.node.Data }

// Custom returns the custom behavior of e, or nil for a plain element.
func (e *Element) Custom() CustomElement { return e.custom }

// IsConnected reports whether e is in its document's tree.
func (e *Element) IsConnected() bool { return e.doc.connected(e.node) }

// DispatchEvent dispatches ev with e as target.
func (e *Element) DispatchEvent(ev *Event) bool { return e.doc.dispatch(e, ev) }

// Parent returns the parent element, or nil at the top of a tree or
// fragment.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Children returns the element children of e.
func (e *Element) Children() []*Element {
	return e.doc.elementChildren(e.node)
}

// ChildNodes returns a live list of the element children of e.
func (e *Element) ChildNodes() *NodeList {
	return &NodeList{live: e}
}

// FirstElementChild returns the first element child, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// ChildElementCount returns the number of element children.
func (e *Element) ChildElementCount() int {
	count := 0
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) error {
	return e.Append(child)
}

// Append moves the given elements and fragment contents to the end of e's
// children. Custom elements entering the document receive their connected
// callback in tree order.
func (e *Element) Append(nodes ...Node) error {
	return e.doc.insert(e.node, nodes)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	e.doc.detach(e.node)
	e.doc.prune(e.node)
}

// RemoveChild detaches child from e.
func (e *Element) RemoveChild(child *Element) error {
	if child.node.Parent != e.node {
		return ErrNotChild
	}
	e.doc.detach(child.node)
	e.doc.prune(child.node)
	return nil
}

// ReplaceChildren removes every child of e and appends nodes.
func (e *Element) ReplaceChildren(nodes ...Node) error {
	e.doc.clear(e.node)
	return e.Append(nodes...)
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// SetInnerHTML replaces the children of e with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	e.doc.clear(e.node)
	if markup == "" {
		return nil
	}
	nodes, err := parseFragment(markup, e.node)
	if err != nil {
		return err
	}
	frag := e.doc.CreateDocumentFragment()
	for _, n := range nodes {
		frag.container.AppendChild(n)
	}
	e.doc.wrapTree(frag.container)
	return e.Append(frag)
}

// OuterHTML renders e and its subtree.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}

// TextContent returns the concatenated text of e's subtree.
func (e *Element) TextContent() string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// SetTextContent replaces the children of e with a single text node.
func (e *Element) SetTextContent(text string) {
	e.doc.clear(e.node)
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttribute returns the named attribute, or "" when absent.
func (e *Element) GetAttribute(name string) string {
	v, _ := e.Attr(name)
	return v
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttribute sets the named attribute.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute removes the named attribute.
func (e *Element) RemoveAttribute(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.GetAttribute("id") }

// ClassList returns the class token list of e.
func (e *Element) ClassList() *ClassList { return &ClassList{el: e} }

// Value returns the current value of a form control: the value set with
// SetValue, or the value attribute.
func (e *Element) Value() string {
	if e.value != nil {
		return *e.value
	}
	return e.GetAttribute("value")
}

// SetValue sets the current value without touching the attribute.
func (e *Element) SetValue(v string) {
	e.value = &v
}

// Matches reports whether e matches sel.
func (e *Element) Matches(sel string) (bool, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return false, err
	}
	return s.Match(e), nil
}

// Closest returns the nearest inclusive ancestor matching sel.
func (e *Element) Closest(sel string) (*Element, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	for el := e; el != nil; el = el.Parent() {
		if s.Match(el) {
			return el, nil
		}
	}
	return nil, nil
}

// QuerySelector returns the first descendant matching sel.
func (e *Element) QuerySelector(sel string) (*Element, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	if n := s.first(e.node); n != nil {
		return e.doc.wrap(n), nil
	}
	return nil, nil
}

// QuerySelectorAll returns every descendant matching sel.
func (e *Element) QuerySelectorAll(sel string) (*NodeList, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	return e.doc.staticList(s.all(e.node)), nil
}

// String returns a short description such as <quote-item class="Quote-7">.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(e.node.Data)
	for _, a := range e.node.Attr {
		fmt.Fprintf(&sb, " %s=%q", a.Key, a.Val)
	}
	sb.WriteString(">")
	return sb.String()
}

func (e *Element) htmlNodes() []*html.Node {
	return []*html.Node{e.node}
}

func (d *Document) elementChildren(n *html.Node) []*Element {
	var out []*Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, d.wrap(c))
		}
	}
	return out
}

// insert appends nodes under parent and runs connected callbacks when
// parent is in the document.
func (d *Document) insert(parent *html.Node, nodes []Node) error {
	var moved []*html.Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, hn := range n.htmlNodes() {
			if isInclusiveAncestor(hn, parent) {
				return ErrHierarchy
			}
			moved = append(moved, hn)
		}
	}
	for _, n := range nodes {
		if el, ok := n.(*Element); ok && el.doc == d {
			d.elements[el.node] = el
		}
	}
	for _, hn := range moved {
		d.detach(hn)
		parent.AppendChild(hn)
	}
	if !d.connected(parent) {
		return nil
	}
	var entering []*Element
	for _, hn := range moved {
		entering = append(entering, d.elementsInOrder(hn)...)
	}
	for _, el := range entering {
		if el.custom != nil && el.IsConnected() {
			el.custom.ConnectedCallback()
		}
	}
	return nil
}

// detach removes n from its parent and runs disconnected callbacks when n
// was in the document.
func (d *Document) detach(n *html.Node) {
	if n.Parent == nil {
		return
	}
	wasConnected := d.connected(n)
	n.Parent.RemoveChild(n)
	if !wasConnected {
		return
	}
	for _, el := range d.elementsInOrder(n) {
		if el.custom != nil && !el.IsConnected() {
			el.custom.DisconnectedCallback()
		}
	}
}

// clear removes every child of n.
func (d *Document) clear(n *html.Node) {
	for n.FirstChild != nil {
		c := n.FirstChild
		d.detach(c)
		d.prune(c)
	}
}

// prune stops tracking the stateless elements of a removed subtree. Elements
// with custom behavior, listeners or a value stay tracked until Release.
func (d *Document) prune(n *html.Node) {
	if n.Parent != nil {
		return
	}
	d.untrack(n, false)
}

func (d *Document) untrack(n *html.Node, all bool) {
	if n.Type == html.ElementNode {
		if el, ok := d.elements[n]; ok && (all || !el.stateful()) {
			delete(d.elements, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.untrack(c, all)
	}
}

func (e *Element) stateful() bool {
	return e.custom != nil || e.value != nil || len(e.byType) > 0
}

func isInclusiveAncestor(a, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == a {
			return true
		}
	}
	return false
}
