package quote

import (
	"errors"
	"strings"
)

// Topic is the hub topic quote changes are published on.
const Topic = "Quote"

// Labels of the change published with each Topic message.
const (
	LabelCreate = "create"
	LabelUpdate = "update"
	LabelDelete = "delete"
)

var (
	// ErrNotFound is returned for an unknown quote id.
	ErrNotFound = errors.New("quote: not found")

	// ErrEmptyQuote is returned when creating a quote with a blank text.
	ErrEmptyQuote = errors.New("quote: cannot create quote with empty title")

	// ErrInvalidToken is returned when an auth token is not a user id.
	ErrInvalidToken = errors.New("quote: invalid token")
)

// Quote is a stored quote. CID is the id of the user who created it.
type Quote struct {
	ID     int64  `json:"id"`
	CID    int64  `json:"cid"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Patch carries the fields to set on create or update. Nil fields are left
// unchanged.
type Patch struct {
	Quote  *string `json:"quote,omitempty"`
	Author *string `json:"author,omitempty"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Blank reports whether the patch carries no usable quote text.
func (p Patch) Blank() bool {
	return p.Quote == nil || strings.TrimSpace(*p.Quote) == ""
}

func (p Patch) apply(q *Quote) {
	if p.Quote != nil {
		q.Quote = *p.Quote
	}
	if p.Author != nil {
		q.Author = *p.Author
	}
}
