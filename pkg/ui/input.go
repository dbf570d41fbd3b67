package ui

import (
	"context"
	"strings"

	"github.com/vango-go/domkit/pkg/component"
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/quote"
)

// QuoteInput holds the quote and author inputs. Enter in either input
// creates a quote.
type QuoteInput struct {
	component.Base
	app *App

	quoteEl  *dom.Element
	authorEl *dom.Element
}

func (i *QuoteInput) Methods() component.Methods {
	return component.Methods{"onInputKeyUp": i.onInputKeyUp}
}

func (i *QuoteInput) Init() {
	frag := i.Document().MustHTML(`
		<input type="text" placeholder="Enter your quote here">
		<input type="text" placeholder="Who said this?">
	`)
	inputs, err := dom.GetChildren(frag, "input", "input")
	if err != nil {
		i.app.logger.Error("quote-input init", "error", err)
		return
	}
	i.quoteEl, i.authorEl = inputs[0], inputs[1]
	if err := i.Element().Append(frag); err != nil {
		i.app.logger.Error("quote-input init", "error", err)
	}
}

func (i *QuoteInput) onInputKeyUp(ev *dom.Event) {
	if ev.Key != "Enter" || i.quoteEl == nil {
		return
	}
	p := quote.Patch{Quote: quote.String(i.quoteEl.Value())}
	if author := strings.TrimSpace(i.authorEl.Value()); author != "" {
		p.Author = quote.String(author)
	}
	i.app.background("create quote", func(ctx context.Context) error {
		_, err := i.app.quotes.Create(ctx, p)
		return err
	})
	// Cleared without waiting for the server.
	i.quoteEl.SetValue("")
	i.authorEl.SetValue("")
}
