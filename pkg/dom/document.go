package dom

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CustomElement is the behavior attached to an element whose tag was
// registered with Define.
type CustomElement interface {
	ConnectedCallback()
	DisconnectedCallback()
}

// Constructor builds the custom behavior of el. It runs once per element,
// when the element is created or when its tag is defined later.
type Constructor func(el *Element) CustomElement

// Document is the root of a node tree and the first singleton target.
type Document struct {
	listenerSet

	root     *html.Node
	window   *Window
	elements map[*html.Node]*Element
	defined  map[string]Constructor
	logger   *slog.Logger
}

// Window is the second singleton target. Events dispatched on connected
// nodes bubble to it after the document.
type Window struct {
	listenerSet
	doc *Document
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument() *Document {
	root, err := html.Parse(strings.NewReader("<html><head></head><body></body></html>"))
	if err != nil {
		// The input is constant.
		panic(fmt.Sprintf("dom: parse skeleton: %v", err))
	}
	d := &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
		defined:  make(map[string]Constructor),
		logger:   slog.Default().With("component", "dom"),
	}
	d.window = &Window{doc: d}
	return d
}

// SetLogger replaces the logger used for recovered listener panics.
func (d *Document) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Window returns the document's window.
func (d *Document) Window() *Window { return d.window }

// OwnerDocument returns d.
func (d *Document) OwnerDocument() *Document { return d }

// IsConnected is always true for a document.
func (d *Document) IsConnected() bool { return true }

// DocumentElement returns the html element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the body element.
func (d *Document) Body() *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for _, c := range root.Children() {
		if c.Tag() == "body" {
			return c
		}
	}
	return nil
}

// CreateElement returns a new detached element. A defined custom element is
// constructed immediately.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n)
}

// CreateDocumentFragment returns an empty fragment.
func (d *Document) CreateDocumentFragment() *Fragment {
	return &Fragment{doc: d, container: &html.Node{Type: html.DocumentNode}}
}

// HTML parses markup into a new fragment. Leading and trailing space is
// trimmed; empty markup yields an empty fragment.
func (d *Document) HTML(markup string) (*Fragment, error) {
	frag := d.CreateDocumentFragment()
	markup = strings.TrimSpace(markup)
	if markup == "" {
		return frag, nil
	}
	nodes, err := parseFragment(markup, bodyContext)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		frag.container.AppendChild(n)
	}
	d.wrapTree(frag.container)
	return frag, nil
}

// MustHTML is like HTML but panics on a parse error.
func (d *Document) MustHTML(markup string) *Fragment {
	frag, err := d.HTML(markup)
	if err != nil {
		panic(err)
	}
	return frag
}

// QuerySelector returns the first element of the document matching sel.
func (d *Document) QuerySelector(sel string) (*Element, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	if n := s.first(d.root); n != nil {
		return d.wrap(n), nil
	}
	return nil, nil
}

// QuerySelectorAll returns every element of the document matching sel.
func (d *Document) QuerySelectorAll(sel string) (*NodeList, error) {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	return d.staticList(s.all(d.root)), nil
}

// First returns the first element matching sel, or nil when nothing matches
// or the selector is invalid.
func (d *Document) First(sel string) *Element {
	el, err := d.QuerySelector(sel)
	if err != nil {
		d.logger.Warn("first: invalid selector", "selector", sel, "error", err)
		return nil
	}
	return el
}

// Define registers ctor for tag. Elements of that tag already in the tree
// are constructed, and connected ones receive their connected callback.
func (d *Document) Define(tag string, ctor Constructor) error {
	tag = strings.ToLower(tag)
	if _, ok := d.defined[tag]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, tag)
	}
	d.defined[tag] = ctor

	var pending []*Element
	for n, el := range d.elements {
		if n.Data == tag && el.custom == nil {
			pending = append(pending, el)
		}
	}
	for _, el := range pending {
		el.custom = ctor(el)
	}
	for _, el := range d.elementsInOrder(d.root) {
		if el.Tag() == tag && el.custom != nil && el.IsConnected() {
			el.custom.ConnectedCallback()
		}
	}
	return nil
}

// Release stops tracking every element of el's detached subtree, custom
// elements included. Element values held by callers stay usable; a released
// element appended again is tracked again, its descendants as new elements.
// Release does nothing while el is in a tree.
func (d *Document) Release(el *Element) {
	if el == nil || el.doc != d || el.node.Parent != nil {
		return
	}
	d.untrack(el.node, true)
}

// Defined reports whether tag has a constructor.
func (d *Document) Defined(tag string) bool {
	_, ok := d.defined[strings.ToLower(tag)]
	return ok
}

// DispatchEvent dispatches e with the document as target.
func (d *Document) DispatchEvent(e *Event) bool { return d.dispatch(d, e) }

// OwnerDocument returns the window's document.
func (w *Window) OwnerDocument() *Document { return w.doc }

// Document returns the window's document.
func (w *Window) Document() *Document { return w.doc }

// DispatchEvent dispatches e with the window as target.
func (w *Window) DispatchEvent(e *Event) bool { return w.doc.dispatch(w, e) }

// wrap returns the element of n, creating and constructing it on first use.
func (d *Document) wrap(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	if ctor, ok := d.defined[n.Data]; ok {
		el.custom = ctor(el)
	}
	return el
}

// wrapTree wraps every element below root in tree order.
func (d *Document) wrapTree(root *html.Node) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			d.wrap(c)
			d.wrapTree(c)
		}
	}
}

// elementsInOrder returns the elements of root's subtree, root included when
// it is an element, in tree order.
func (d *Document) elementsInOrder(root *html.Node) []*Element {
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, d.wrap(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func (d *Document) staticList(nodes []*html.Node) *NodeList {
	items := make([]*Element, len(nodes))
	for i, n := range nodes {
		items[i] = d.wrap(n)
	}
	return &NodeList{items: items}
}

func (d *Document) connected(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func parseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}
