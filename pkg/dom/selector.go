package dom

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector group.
type Selector struct {
	raw string
	sel cascadia.Selector
}

var selectorCache = struct {
	mu    sync.RWMutex
	byRaw map[string]*Selector
}{byRaw: make(map[string]*Selector)}

// CompileSelector compiles s, reusing an earlier compilation of the same text.
func CompileSelector(s string) (*Selector, error) {
	selectorCache.mu.RLock()
	cached, ok := selectorCache.byRaw[s]
	selectorCache.mu.RUnlock()
	if ok {
		return cached, nil
	}

	compiled, err := cascadia.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, s, err)
	}
	sel := &Selector{raw: s, sel: compiled}

	selectorCache.mu.Lock()
	selectorCache.byRaw[s] = sel
	selectorCache.mu.Unlock()
	return sel, nil
}

// MustCompileSelector is like CompileSelector but panics on error.
func MustCompileSelector(s string) *Selector {
	sel, err := CompileSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the selector text.
func (s *Selector) String() string {
	return s.raw
}

// Match reports whether el matches the selector.
func (s *Selector) Match(el *Element) bool {
	if el == nil {
		return false
	}
	return s.sel.Match(el.node)
}

// first returns the first descendant of root matching s in document order.
// root itself is never returned.
func (s *Selector) first(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if s.sel.Match(c) {
			return c
		}
		if n := s.first(c); n != nil {
			return n
		}
	}
	return nil
}

// all returns every descendant of root matching s in document order.
func (s *Selector) all(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if s.sel.Match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}
