// Package server exposes traversal over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build info
//	POST /v1/traverse   traverse the JSON or TOML document in the body
//
// /v1/traverse accepts these query parameters:
//
//	max      stop after this many nodes (default from Config.MaxNodes)
//	exclude  comma-separated type names: string, number, bool, object, array, datetime
//	format   json (default) or dot
//	input    json (default) or toml
//	static, transient  include static or transient fields when "true"
//
// Responses are cached by the hash of the body and the options.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bramp/objectgraph/pkg/cache"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxNodes = 10000
	DefaultMaxBody  = 10 << 20
	DefaultCacheTTL = time.Hour
)

// Config configures a Server.
type Config struct {
	Cache    cache.Cache   // nil disables caching
	CacheTTL time.Duration // entry lifetime
	MaxNodes int           // node limit when the request sets none
	MaxBody  int64         // largest accepted request body in bytes
	Logger   *log.Logger
}

// Server serves the traversal API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server, filling unset Config fields with defaults.
func New(cfg Config) *Server {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultMaxNodes
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/traverse", s.handleTraverse)
	})
	return r
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// giving in-flight requests five seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

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
