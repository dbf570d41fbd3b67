package dom

import "errors"

var (
	// ErrInvalidSelector is returned when a selector fails to compile.
	ErrInvalidSelector = errors.New("dom: invalid selector")

	// ErrHierarchy is returned when an insertion would make a node its own
	// ancestor.
	ErrHierarchy = errors.New("dom: node cannot be inserted under its own descendant")

	// ErrNotChild is returned by RemoveChild for a node with another parent.
	ErrNotChild = errors.New("dom: node is not a child of this element")

	// ErrAlreadyDefined is returned by Define for a tag that already has a
	// constructor.
	ErrAlreadyDefined = errors.New("dom: custom element already defined")

	// ErrMissingChildren is returned by GetChildren when fewer children match
	// than names were requested.
	ErrMissingChildren = errors.New("dom: node has fewer matching children than requested")
)
