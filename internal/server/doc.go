// Package server serves the quote REST API and bridges hub traffic to
// websocket clients.
//
// Routes, relative to the configured API base (default /api):
//
//	GET    /quotes        list, newest first
//	GET    /quotes/{id}   one quote
//	POST   /quotes        create from a patch body
//	PATCH  /quotes/{id}   update from a patch body
//	DELETE /quotes/{id}   delete, returning the deleted quote
//
// Every API request carries the caller's numeric user id in X-Auth-Token.
// Successful responses wrap their payload as {"data": ...}; failures are
// {"error": "..."}. Each mutation is published on the data hub under the
// Quote topic with the create, update or delete label.
//
// The websocket endpoint (default /ws) accepts JSON frames:
//
//	{"op":"sub","topic":"Quote","label":"update"}
//	{"op":"unsub"}
//	{"op":"pub","topic":"Chat","label":"room1","data":{...}}
//
// and writes hub deliveries as {"op":"msg","hub","topic","label","data"}.
// Each connection subscribes under its own namespace, removed when the
// connection closes.
package server
