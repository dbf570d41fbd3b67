package ui

import (
	"context"
	"fmt"

	"github.com/vango-go/domkit/pkg/component"
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/quote"
)

// QuoteMvc is the quote screen: a heading, a quote-input and the list of
// quote-items.
type QuoteMvc struct {
	component.Base
	app *App

	inputEl *dom.Element
	listEl  *dom.Element
}

func (m *QuoteMvc) Methods() component.Methods {
	return component.Methods{
		"onCheckQuote":  m.onCheckQuote,
		"onQuoteUpdate": m.onQuoteUpdate,
		"onQuoteCreate": m.onQuoteCreate,
		"onQuoteDelete": m.onQuoteDelete,
	}
}

func (m *QuoteMvc) Init() {
	doc := m.Document()
	frag := doc.MustHTML(`
		<div class="box"></div>
		<h1>quotes</h1>
		<quote-input></quote-input>
		<quote-list></quote-list>
	`)
	els, err := dom.GetChildren(frag, TagQuoteInput, "quote-list")
	if err != nil {
		m.app.logger.Error("quote-mvc init", "error", err)
		return
	}
	m.inputEl, m.listEl = els[0], els[1]

	if err := m.Element().Append(frag); err != nil {
		m.app.logger.Error("quote-mvc init", "error", err)
		return
	}
	m.Refresh()
}

// Input returns the quote-input element.
func (m *QuoteMvc) Input() *dom.Element { return m.inputEl }

// List returns the element holding the quote-items.
func (m *QuoteMvc) List() *dom.Element { return m.listEl }

// Refresh reloads the list from the model.
func (m *QuoteMvc) Refresh() {
	m.app.loop.Go(func() func() {
		quotes, err := m.app.quotes.List(m.app.ctx)
		return func() {
			if err != nil {
				m.app.logger.Warn("list quotes failed", "error", err)
				return
			}
			m.render(quotes)
		}
	})
}

func (m *QuoteMvc) render(quotes []quote.Quote) {
	if m.listEl == nil {
		return
	}
	doc := m.Document()
	frag := doc.CreateDocumentFragment()
	for _, q := range quotes {
		el := doc.CreateElement(TagQuoteItem)
		if item, ok := component.As[*QuoteItem](el); ok {
			item.SetData(q)
		}
		if err := frag.Append(el); err != nil {
			m.app.logger.Error("render quote", "id", q.ID, "error", err)
		}
	}
	old := m.listEl.Children()
	if err := m.listEl.ReplaceChildren(frag); err != nil {
		m.app.logger.Error("render quotes", "error", err)
	}
	for _, el := range old {
		m.app.dispose(el)
	}
}

func (m *QuoteMvc) onCheckQuote(ev *dom.Event) {
	el, _ := ev.SelectTarget.Closest(TagQuoteItem)
	item, ok := component.As[*QuoteItem](el)
	if !ok {
		return
	}
	id := item.Data().ID
	m.app.background("delete quote", func(ctx context.Context) error {
		_, err := m.app.quotes.Delete(ctx, id)
		return err
	})
}

func (m *QuoteMvc) onQuoteUpdate(data any) {
	q, ok := data.(quote.Quote)
	if !ok {
		return
	}
	el := m.Document().First(fmt.Sprintf("%s.Quote-%d", TagQuoteItem, q.ID))
	if item, ok := component.As[*QuoteItem](el); ok {
		item.SetData(q)
	}
}

func (m *QuoteMvc) onQuoteCreate(any) { m.Refresh() }

func (m *QuoteMvc) onQuoteDelete(any) { m.Refresh() }
