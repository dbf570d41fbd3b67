// Package quote holds the quote model and the pieces that move it around:
// an in-memory Store used by the HTTP server, a REST Client, the Controller
// that publishes model changes on a hub, and an S3 snapshot exporter.
//
// Changes made through a Controller are announced on the "Quote" topic with
// the labels "create", "update" and "delete", carrying the affected Quote.
package quote
