package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-go/domkit/pkg/middleware"
	"github.com/vango-go/domkit/pkg/quote"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address (default ":8080").
	Address string

	// APIBase prefixes the REST routes (default "/api").
	APIBase string

	// WSPath is the websocket bridge path (default "/ws").
	WSPath string

	// MetricsPath serves Prometheus metrics (default "/metrics"). Empty
	// disables the endpoint.
	MetricsPath string

	// HubName is the hub mutations are published on and the bridge serves
	// by default (default "dataHub").
	HubName string

	// BridgeHubs lists the hubs websocket clients may use besides HubName.
	BridgeHubs []string

	// Tracing enables the OpenTelemetry middleware.
	Tracing bool

	// Registry collects HTTP metrics. Nil uses the Prometheus default
	// registry.
	Registry *prometheus.Registry

	// MetricsNamespace prefixes metric names (default "domkit").
	MetricsNamespace string

	ShutdownTimeout time.Duration
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates websocket origins. Nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		APIBase:         "/api",
		WSPath:          "/ws",
		MetricsPath:     "/metrics",
		HubName:         quote.DefaultHub,
		ShutdownTimeout: 10 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// Server serves the quote API, the hub bridge and metrics.
type Server struct {
	config     Config
	store      quote.Store
	router     chi.Router
	upgrader   websocket.Upgrader
	metrics    *middleware.Metrics
	logger     *slog.Logger
	httpServer *http.Server
}

// New returns a server over store. Zero config fields take their defaults.
func New(config Config, store quote.Store) *Server {
	def := DefaultConfig()
	if config.Address == "" {
		config.Address = def.Address
	}
	if config.APIBase == "" {
		config.APIBase = def.APIBase
	}
	if config.WSPath == "" {
		config.WSPath = def.WSPath
	}
	if config.HubName == "" {
		config.HubName = def.HubName
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = def.ShutdownTimeout
	}

	s := &Server{
		config: config,
		store:  store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default().With("component", "server"),
	}
	s.router = s.routes()
	return s
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Config returns the server configuration.
func (s *Server) Config() Config { return s.config }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if s.config.Registry != nil {
		reg = s.config.Registry
	}
	opts := []middleware.MetricsOption{middleware.WithRegistry(reg)}
	if s.config.MetricsNamespace != "" {
		opts = append(opts, middleware.WithNamespace(s.config.MetricsNamespace))
	}
	s.metrics = middleware.NewMetrics(opts...)
	r.Use(s.metrics.Middleware)
	if s.config.Tracing {
		r.Use(middleware.OpenTelemetry(
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != s.config.MetricsPath
			}),
		))
	}

	if s.config.MetricsPath != "" {
		if s.config.Registry != nil {
			r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
		} else {
			r.Handle(s.config.MetricsPath, promhttp.Handler())
		}
	}

	r.Route(s.config.APIBase, func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/quotes", s.listQuotes)
		r.Post("/quotes", s.createQuote)
		r.Get("/quotes/{id}", s.getQuote)
		r.Patch("/quotes/{id}", s.updateQuote)
		r.Delete("/quotes/{id}", s.deleteQuote)
	})

	r.With(requireAuth).Get(s.config.WSPath, s.serveBridge)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
