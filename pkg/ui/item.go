package ui

import (
	"fmt"
	"strings"

	"github.com/vango-go/domkit/pkg/component"
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/quote"
)

// QuoteItem renders one quote. Its classes carry Quote-<id> and the author
// so the list can find it.
type QuoteItem struct {
	component.Base
	app *App

	titleEl *dom.Element
	data    quote.Quote
	hasData bool
}

// Data returns the rendered quote.
func (q *QuoteItem) Data() quote.Quote { return q.data }

// SetData replaces the quote. A connected item re-renders immediately.
func (q *QuoteItem) SetData(d quote.Quote) {
	old, had := q.data, q.hasData
	q.data, q.hasData = d, true
	if q.IsConnected() {
		q.refresh(old, had)
	}
}

func (q *QuoteItem) Init() {
	frag := q.Document().MustHTML(`
		<c-check><c-ico name="ico-done"></c-ico></c-check>
		<div class="title">STATIC TITLE</div>
		<c-ico name="del"></c-ico>
	`)
	title, err := dom.GetChild(frag, "div")
	if err != nil {
		q.app.logger.Error("quote-item init", "error", err)
		return
	}
	q.titleEl = title
	if err := q.Element().Append(frag); err != nil {
		q.app.logger.Error("quote-item init", "error", err)
		return
	}
	q.refresh(quote.Quote{}, false)
}

func (q *QuoteItem) refresh(old quote.Quote, had bool) {
	classes := q.Element().ClassList()
	if had {
		classes.Remove(idClass(old.ID), authorClass(old.Author))
	}
	if !q.hasData || q.titleEl == nil {
		return
	}
	classes.Add(idClass(q.data.ID), authorClass(q.data.Author))
	q.titleEl.SetTextContent(q.data.Quote)
}

func idClass(id int64) string { return fmt.Sprintf("Quote-%d", id) }

// authorClass turns an author into a single class token.
func authorClass(author string) string {
	return strings.Join(strings.Fields(author), "-")
}
