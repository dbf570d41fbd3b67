package component

import "errors"

var (
	// ErrDuplicateMethod is returned by Resolve when one type declares the
	// same method twice for the same kind of target.
	ErrDuplicateMethod = errors.New("component: method declared twice at the same level")

	// ErrMissingMethod is logged when a declared method is absent from a
	// component's method table or has the wrong signature.
	ErrMissingMethod = errors.New("component: declared method not found")

	// ErrInvalidDecl is returned by Resolve for a declaration without a
	// method, event type, hub or topic.
	ErrInvalidDecl = errors.New("component: incomplete declaration")
)
