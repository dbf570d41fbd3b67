// Package events binds listeners to dom targets with optional selector
// delegation and namespace scoped teardown.
//
// A delegated binding is registered once on a stable ancestor. When an event
// reaches that ancestor, the origin element is tested against the selector,
// then each of its ancestors up to (but excluding) the bound target; the
// handler runs at most once, with Event.SelectTarget set to the first match.
//
//	events.On(list, "pointerup", "c-check", onCheck, &events.Options{Namespace: ns})
//	...
//	events.OffNamespace(list, ns)
//
// Every registration is recorded per target under its (type, selector) pair
// and handler, and under its namespace when one is given, so Off can remove a
// single handler, every handler of a pair, or everything of a namespace.
package events
