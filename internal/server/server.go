// Package server serves traversal and abstraction queries over HTTP.
//
// Routes, all GET and all answering JSON:
//
//	/healthz                        liveness and netlist summary
//	/gates/{id}                     a gate with its connections
//	/gates/{id}/sequential          next sequential gates (?dir=&depth=&forbid=)
//	/gates/{id}/chain               gate chain through the gate (?in=&out=)
//	/path                           shortest path (?from=&to=&dir=)
//	/distance                       abstraction distance (?from=&filter=&dir=)
//
// Gates in query parameters are given by id or by name. The netlist is
// read-only while the server runs, so handlers share one traversal and one
// abstraction without locking.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gatewalk/pkg/abstraction"
	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// Server answers queries against one netlist.
type Server struct {
	nl     *netlist.Netlist
	tr     *traversal.Traversal
	dec    *abstraction.Decorator
	logger *log.Logger
	router chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger logs one debug line per request.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAbstraction enables /distance. The abstraction must cover the served
// netlist.
func WithAbstraction(a *abstraction.Abstraction) Option {
	return func(s *Server) { s.dec = abstraction.NewDecorator(a) }
}

// New returns a server over nl.
func New(nl *netlist.Netlist, opts ...Option) (*Server, error) {
	if nl == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "nil netlist given to server")
	}
	s := &Server{nl: nl}
	for _, opt := range opts {
		opt(s)
	}
	if s.dec != nil && s.dec.Abstraction().Netlist() != nl {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "abstraction belongs to another netlist")
	}
	s.tr = traversal.New(nl, traversal.WithLogger(s.logger))
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/gates/{id}", func(r chi.Router) {
		r.Get("/", s.handleGate)
		r.Get("/sequential", s.handleSequential)
		r.Get("/chain", s.handleChain)
	})
	r.Get("/path", s.handlePath)
	r.Get("/distance", s.handleDistance)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
