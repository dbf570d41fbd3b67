package quote

import (
	"context"
	"log/slog"

	"github.com/vango-go/domkit/pkg/hub"
)

// DefaultHub is the hub quote changes are published on.
const DefaultHub = "dataHub"

// Controller validates quote changes, applies them through an API and
// publishes the result.
type Controller struct {
	api      API
	hubName  string
	dispatch func(func())
	logger   *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithHub publishes on the named hub instead of DefaultHub.
func WithHub(name string) ControllerOption {
	return func(c *Controller) {
		if name != "" {
			c.hubName = name
		}
	}
}

// WithDispatch routes each publish through fn, so subscribers run on the
// goroutine fn delivers to. loop.(*Loop).Post is the usual choice.
func WithDispatch(fn func(func())) ControllerOption {
	return func(c *Controller) { c.dispatch = fn }
}

// NewController returns a controller over api.
func NewController(api API, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:     api,
		hubName: DefaultHub,
		logger:  slog.Default().With("component", "quote-controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hub returns the name of the hub changes are published on.
func (c *Controller) Hub() string { return c.hubName }

func (c *Controller) List(ctx context.Context) ([]Quote, error) {
	return c.api.List(ctx)
}

// Create rejects a blank quote with ErrEmptyQuote before calling the API.
func (c *Controller) Create(ctx context.Context, p Patch) (Quote, error) {
	if p.Blank() {
		return Quote{}, ErrEmptyQuote
	}
	q, err := c.api.Create(ctx, p)
	if err != nil {
		return Quote{}, err
	}
	c.publish(LabelCreate, q)
	return q, nil
}

func (c *Controller) Update(ctx context.Context, id int64, p Patch) (Quote, error) {
	q, err := c.api.Update(ctx, id, p)
	if err != nil {
		return Quote{}, err
	}
	c.publish(LabelUpdate, q)
	return q, nil
}

// Delete publishes the quote as it was before deletion.
func (c *Controller) Delete(ctx context.Context, id int64) (Quote, error) {
	q, err := c.api.Delete(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	c.publish(LabelDelete, q)
	return q, nil
}

func (c *Controller) publish(label string, q Quote) {
	c.logger.Debug("publish", "hub", c.hubName, "label", label, "id", q.ID)
	send := func() { hub.Must(c.hubName).Publish(Topic, label, q) }
	if c.dispatch != nil {
		c.dispatch(send)
		return
	}
	send()
}
