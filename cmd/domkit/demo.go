package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-go/domkit/internal/config"
	"github.com/vango-go/domkit/internal/errors"
	"github.com/vango-go/domkit/pkg/component"
	"github.com/vango-go/domkit/pkg/dom"
	"github.com/vango-go/domkit/pkg/loop"
	"github.com/vango-go/domkit/pkg/ui"
)

const settleTimeout = 10 * time.Second

type demoOptions struct {
	api    string
	token  string
	ws     string
	hub    string
	create string
	author string
	follow time.Duration
	html   bool
}

func demoCmd() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render the quote screen on a headless document",
		Long: `Mount the quote components on an in-memory document backed by a
running API, optionally add a quote through the input, follow live changes
from the hub bridge, and print the rendered list.

Examples:
  domkit demo
  domkit demo --create="Simplicity is prerequisite for reliability" --author="Edsger Dijkstra"
  domkit demo --follow=30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.api, "api", "", "Quote API base URL (default from server config)")
	cmd.Flags().StringVar(&opts.token, "token", "", "X-Auth-Token value (default from server.authToken)")
	cmd.Flags().StringVar(&opts.ws, "ws", "", "Hub bridge URL (default: the API host with server.wsPath)")
	cmd.Flags().StringVar(&opts.create, "create", "", "Type this quote into the input and press Enter")
	cmd.Flags().StringVar(&opts.author, "author", "", "Author typed with --create")
	cmd.Flags().DurationVar(&opts.follow, "follow", 0, "Apply bridge events for this long before printing")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the rendered markup instead of the list")
	return cmd
}

func runDemo(ctx context.Context, out io.Writer, cfg *config.Config, opts demoOptions) error {
	if opts.hub == "" {
		opts.hub = cfg.Hub.DataHub
	}
	if opts.token == "" {
		opts.token = cfg.Server.AuthToken
	}
	if opts.api == "" {
		opts.api = cfg.BaseURL()
	}
	if opts.ws == "" {
		opts.ws = bridgeURL(opts.api, cfg.Server.WSPath)
	}

	api := apiClient(cfg, opts.api, opts.token)
	if _, err := api.List(ctx); err != nil {
		return apiError(err)
	}

	lp := loop.New(
		loop.WithFrameInterval(cfg.FrameInterval()),
		loop.WithQueueSize(cfg.Loop.QueueSize))
	doc := dom.NewDocument()
	app := ui.NewApp(doc, lp, api,
		ui.WithHubName(opts.hub),
		ui.WithContext(ctx))

	mvc, err := app.Mount(doc.Body())
	if err != nil {
		return errors.New("E143").Wrap(err)
	}
	if err := settle(ctx, lp); err != nil {
		return err
	}

	if opts.create != "" {
		if err := typeQuote(mvc, opts.create, opts.author); err != nil {
			return err
		}
		if err := settle(ctx, lp); err != nil {
			return err
		}
	}

	if opts.follow > 0 {
		if err := follow(ctx, out, lp, opts); err != nil {
			return err
		}
	}

	if opts.html {
		fmt.Fprintln(out, mvc.Element().OuterHTML())
		return nil
	}
	printList(out, mvc)
	return nil
}

// typeQuote fills the quote-input and presses Enter, as a user would.
func typeQuote(mvc *ui.QuoteMvc, text, author string) error {
	inputs, err := mvc.Input().QuerySelectorAll("input")
	if err != nil || inputs.Len() < 2 {
		return errors.New("E143").WithDetail("quote-input has no input fields")
	}
	inputs.Item(0).SetValue(text)
	inputs.Item(1).SetValue(author)
	inputs.Item(0).DispatchEvent(dom.NewKeyEvent("keyup", "Enter"))
	return nil
}

// follow runs the loop while bridge events are applied to the local hub.
func follow(ctx context.Context, out io.Writer, lp *loop.Loop, opts demoOptions) error {
	wsURL := opts.ws
	fctx, cancel := context.WithTimeout(ctx, opts.follow)
	defer cancel()

	f, err := dialFollower(fctx, wsURL, opts.token, lp, opts.hub, out)
	if err != nil {
		return errors.New("E060").WithDetail("Cannot reach " + wsURL).Wrap(err)
	}
	err = lp.Run(fctx)
	f.Close()
	if err != nil && !stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return settle(ctx, lp)
}

// bridgeURL turns an API base such as http://host:8080/api and the bridge
// path /ws into ws://host:8080/ws.
func bridgeURL(api, wsPath string) string {
	u := strings.TrimSuffix(api, "/")
	if i := strings.LastIndex(u, "/"); i > strings.Index(u, "://")+2 {
		u = u[:i]
	}
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if wsPath == "" {
		wsPath = config.DefaultWSPath
	}
	return u + wsPath
}

func settle(ctx context.Context, lp *loop.Loop) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := lp.Settle(ctx); err != nil {
		return errors.New("E143").WithDetail("The quote screen did not settle").Wrap(err)
	}
	return nil
}

func printList(out io.Writer, mvc *ui.QuoteMvc) {
	items := mvc.List().Children()
	fmt.Fprintf(out, "quotes (%d)\n", len(items))
	for _, el := range items {
		item, ok := component.As[*ui.QuoteItem](el)
		if !ok {
			continue
		}
		q := item.Data()
		title := ""
		if t, _ := el.QuerySelector(".title"); t != nil {
			title = t.TextContent()
		}
		fmt.Fprintf(out, "  #%-5d %s (%s)\n", q.ID, title, q.Author)
	}
}
