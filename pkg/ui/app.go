package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-go/domkit/pkg/component"
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/loop"
	"github.com/vango-go/domkit/pkg/quote"
)

// Tag names of the elements registered by an App.
const (
	TagQuoteMvc   = "quote-mvc"
	TagQuoteInput = "quote-input"
	TagQuoteItem  = "quote-item"
	TagIco        = "c-ico"
)

// App wires the quote components to a document, a loop and a quote API.
type App struct {
	doc    *dom.Document
	loop   *loop.Loop
	coord  *component.Coordinator
	quotes *quote.Controller
	ctx    context.Context
	logger *slog.Logger

	hubName    string
	registered bool
}

// Option configures an App.
type Option func(*App)

// WithHubName sets the hub model changes are published on.
func WithHubName(name string) Option {
	return func(a *App) {
		if name != "" {
			a.hubName = name
		}
	}
}

// WithContext sets the context passed to model calls.
func WithContext(ctx context.Context) Option {
	return func(a *App) { a.ctx = ctx }
}

// WithLogger sets the app logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewApp returns an app rendering into doc. Model changes made through api
// are published on the loop.
func NewApp(doc *dom.Document, lp *loop.Loop, api quote.API, opts ...Option) *App {
	a := &App{
		doc:     doc,
		loop:    lp,
		ctx:     context.Background(),
		hubName: quote.DefaultHub,
		logger:  slog.Default().With("component", "ui"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.coord = component.NewCoordinator(lp, nil)
	a.quotes = quote.NewController(api,
		quote.WithHub(a.hubName),
		quote.WithDispatch(lp.Post))
	return a
}

// Quotes returns the model controller the components use.
func (a *App) Quotes() *quote.Controller { return a.quotes }

// Coordinator returns the coordinator managing the components.
func (a *App) Coordinator() *component.Coordinator { return a.coord }

// Register defines the quote elements on the document. It is called by Mount
// and only registers once.
func (a *App) Register() error {
	if a.registered {
		return nil
	}
	types := newTypes(a.hubName)
	defs := []struct {
		tag     string
		typ     *component.Type
		factory func() component.Component
	}{
		{TagIco, types.ico, func() component.Component { return &Ico{} }},
		{TagQuoteItem, types.item, func() component.Component { return &QuoteItem{app: a} }},
		{TagQuoteInput, types.input, func() component.Component { return &QuoteInput{app: a} }},
		{TagQuoteMvc, types.mvc, func() component.Component { return &QuoteMvc{app: a} }},
	}
	for _, d := range defs {
		if err := a.coord.Register(a.doc, d.tag, d.typ, d.factory); err != nil {
			return fmt.Errorf("ui: register %s: %w", d.tag, err)
		}
	}
	a.registered = true
	return nil
}

// Mount registers the elements and appends a quote-mvc to parent.
func (a *App) Mount(parent *dom.Element) (*QuoteMvc, error) {
	if err := a.Register(); err != nil {
		return nil, err
	}
	el := a.doc.CreateElement(TagQuoteMvc)
	if err := parent.AppendChild(el); err != nil {
		return nil, err
	}
	mvc, ok := component.As[*QuoteMvc](el)
	if !ok {
		return nil, fmt.Errorf("ui: %s is not hosted by a QuoteMvc", TagQuoteMvc)
	}
	return mvc, nil
}

type types struct {
	mvc, input, item, ico *component.Type
}

func newTypes(hubName string) types {
	return types{
		mvc: component.Define(TagQuoteMvc, nil,
			component.OnEvent("onCheckQuote", "pointerup", "c-check"),
			component.OnHub("onQuoteUpdate", hubName, quote.Topic, quote.LabelUpdate),
			component.OnHub("onQuoteCreate", hubName, quote.Topic, quote.LabelCreate),
			component.OnHub("onQuoteDelete", hubName, quote.Topic, quote.LabelDelete),
		),
		input: component.Define(TagQuoteInput, nil,
			component.OnEvent("onInputKeyUp", "keyup", "input"),
		),
		item: component.Define(TagQuoteItem, nil),
		ico:  component.Define(TagIco, nil),
	}
}

// background runs fn off the loop and logs its error back on the loop.
func (a *App) background(op string, fn func(ctx context.Context) error) {
	a.loop.Go(func() func() {
		if err := fn(a.ctx); err != nil {
			return func() { a.logger.Warn(op+" failed", "error", err) }
		}
		return nil
	})
}

// dispose disposes the components of a removed subtree, descendants first,
// and releases it from the document.
func (a *App) dispose(el *dom.Element) {
	if nested, err := el.QuerySelectorAll("*"); err == nil {
		items := nested.Slice()
		for i := len(items) - 1; i >= 0; i-- {
			if comp := component.Of(items[i]); comp != nil {
				a.coord.Dispose(comp)
			}
		}
	}
	if comp := component.Of(el); comp != nil {
		a.coord.Dispose(comp)
	}
	a.doc.Release(el)
}
