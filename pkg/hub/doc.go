// Package hub provides named publish/subscribe channels addressed by topic
// and label.
//
// Hubs are process-wide singletons looked up by name. A subscription binds a
// handler to one or more topics, optionally narrowed by one or more labels,
// and may carry a namespace used to tear down every subscription of an owner
// in one call.
//
//	h := hub.Must("dataHub")
//	h.Subscribe("Quote", "create, update", onQuote, hub.WithNamespace(ns))
//	h.Publish("Quote", "update", quote)
//	h.Unsubscribe(ns)
//
// # Dispatch Order
//
// Publish first invokes the subscribers of every topic/label pair, then the
// topic-only subscribers. A topic-only subscriber is invoked once per
// published label, receiving that label in its Info, or once without a label
// when the publish carries none.
//
// # Reentrancy
//
// Handlers run synchronously on the publishing goroutine. The entries of a
// publish are captured before the first handler runs, so a handler may
// subscribe, unsubscribe or publish without affecting the in-flight delivery.
package hub
