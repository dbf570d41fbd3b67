// Package ui implements the quote screen as custom elements on a headless
// document: quote-mvc lists quotes and follows model changes on the data
// hub, quote-input creates quotes, quote-item renders one quote and c-ico
// renders an icon.
//
// All element work happens on the App's loop. Model calls run in the
// background through loop.Go and hop back to the loop to touch the tree.
package ui
