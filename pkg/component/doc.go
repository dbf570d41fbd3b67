// Package component declares component types and coordinates the
// subscriptions of their instances with the document lifecycle.
//
// A Type lists event and hub declarations by method name. Types form an
// inheritance chain; Resolve flattens a chain into one subscription set in
// which a method declared by a derived type hides the ancestors' declarations
// of that method.
//
// A Coordinator binds those subscriptions when an instance's element enters
// the document and unbinds them when it leaves:
//
//	typ := component.Define("quote-item", nil,
//		component.OnEvent("onDelete", "click", "c-ico.del"),
//		component.OnHub("onQuote", "dataHub", "Quote", "update"),
//	)
//	coord := component.NewCoordinator(lp, nil)
//	coord.Register(doc, "quote-item", typ, func() component.Component { return &QuoteItem{} })
package component
