package events

import "github.com/vango-go/domkit/pkg/dom"

// Default is the binder used by the package level functions.
var Default = NewBinder()

// On binds with the Default binder.
func On(targets any, types, selector string, l *dom.Listener, opts *Options) error {
	return Default.On(targets, types, selector, l, opts)
}

// Off unbinds with the Default binder.
func Off(targets any, types, selector string, l *dom.Listener) {
	Default.Off(targets, types, selector, l)
}

// OffNamespace removes a namespace with the Default binder.
func OffNamespace(targets any, ns string) {
	Default.OffNamespace(targets, ns)
}
