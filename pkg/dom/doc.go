// Package dom provides a headless node tree with native event listeners.
//
// Nodes are stored as golang.org/x/net/html nodes; each element node is
// wrapped by exactly one *Element owned by its Document. Selectors are
// compiled with cascadia and cached.
//
// The tree mirrors the parts of the browser model the event kernel relies on:
//
//   - ancestor traversal and selector matching of a single element
//   - per-target listener lists with capture and bubble phases
//   - two singleton targets, the Document and its Window
//   - custom elements whose connected and disconnected callbacks run when a
//     subtree enters or leaves the document
//
// A Document and everything reachable from it is owned by a single goroutine,
// normally the one running a loop.Loop. None of the types in this package are
// safe for concurrent use.
package dom
