// Package server exposes a tracking store over a JSON HTTP API.
//
// Every response uses the same Envelope; errors carry the pkgtrack error
// code. Routes:
//
//	GET    /api/packages                  summaries plus loading/has_errors flags
//	POST   /api/packages                  {"name": "..."} track a package
//	PUT    /api/packages                  {"packages": [...]} replace the tracked list
//	DELETE /api/packages/{name}           stop tracking
//	POST   /api/packages/{name}/refresh   refresh, ?fresh=true bypasses caches
//	DELETE /api/packages/{name}/error     clear the error message
//	GET    /api/chart                     chart rows and release markers
//	GET    /api/query                     shareable packages= query string
//	GET    /healthz
//	GET    /metrics                       when a metrics handler is configured
//
// Scoped names such as @types/node are passed path-escaped (@types%2Fnode).
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pkgtrack/pkg/querysync"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// DefaultAddr is used when Options.Addr is empty.
const DefaultAddr = ":8080"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr string

	// Store is the tracking store served by the API. Required.
	Store *tracker.Store

	// Location holds the shareable query string kept in sync with the
	// store. Nil disables GET /api/query.
	Location querysync.Location

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string

	// SlowRequest marks slower requests at warn level in the access log.
	SlowRequest time.Duration

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Server is a chi router plus an http.Server.
type Server struct {
	addr   string
	mux    *chi.Mux
	srv    *http.Server
	logger *log.Logger
}

// New builds the router and mounts every route.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	h := &handlers{store: opts.Store, location: opts.Location}

	m := chi.NewRouter()
	m.Use(requestID)
	m.Use(accessLog(opts.Logger, opts.SlowRequest))
	m.Use(recoverJSON(opts.Logger))
	m.Use(corsHandler(opts.CORSOrigins))

	m.Get("/healthz", h.health)
	if opts.Metrics != nil {
		m.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	m.Route("/api", func(r chi.Router) {
		r.Get("/packages", h.listPackages)
		r.Post("/packages", h.addPackage)
		r.Put("/packages", h.replacePackages)
		r.Delete("/packages/{name}", h.removePackage)
		r.Post("/packages/{name}/refresh", h.refreshPackage)
		r.Delete("/packages/{name}/error", h.clearError)
		r.Get("/chart", h.chart)
		r.Get("/query", h.query)
	})

	m.NotFound(h.notFound)
	m.MethodNotAllowed(h.methodNotAllowed)

	return &Server{
		addr:   opts.Addr,
		mux:    m,
		logger: opts.Logger,
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address.
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("http listening", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http stopped")
	return nil
}
