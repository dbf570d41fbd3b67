package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-go/domkit/internal/config"
	"github.com/vango-go/domkit/internal/errors"
	"github.com/vango-go/domkit/internal/server"
	"github.com/vango-go/domkit/pkg/events"
	"github.com/vango-go/domkit/pkg/hub"
	"github.com/vango-go/domkit/pkg/quote"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		host     string
		logLevel string
		tracing  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the quote API and hub bridge",
		Long: `Run the quote REST API, the websocket bridge onto the data hub and
the Prometheus endpoint. The store is in memory and seeded with two quotes.

Examples:
  domkit serve
  domkit serve --port=9000 --log-level=debug
  domkit serve -c domkit.yaml --tracing > spans.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if tracing {
				cfg.Hub.Tracing = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Write OpenTelemetry spans to stdout as JSON")
	return cmd
}

func runServe(ctx context.Context, out io.Writer, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	if cfg.Hub.Tracing {
		shutdown, err := setupTracing(out)
		if err != nil {
			return errors.FromError(err, "E140")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown", "error", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.Hub.Metrics {
		hub.EnableMetrics(reg)
		events.EnableMetrics(reg)
	}

	srv := server.New(serverConfig(cfg, reg), quote.NewMemoryStore(quote.SeedQuotes()...))
	logger.Info("serving quotes",
		"address", cfg.Address(),
		"api", cfg.Server.APIBase,
		"ws", cfg.Server.WSPath,
		"hub", cfg.Hub.DataHub)

	if err := srv.Run(ctx); err != nil {
		return errors.FromError(err, "E140")
	}
	return nil
}

func serverConfig(cfg *config.Config, reg *prometheus.Registry) server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.APIBase = cfg.Server.APIBase
	sc.WSPath = cfg.Server.WSPath
	sc.MetricsPath = cfg.Server.MetricsPath
	sc.HubName = cfg.Hub.DataHub
	sc.BridgeHubs = cfg.Hub.Bridge
	sc.Tracing = cfg.Hub.Tracing
	sc.Registry = reg
	return sc
}
