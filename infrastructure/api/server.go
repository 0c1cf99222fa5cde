package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server wraps a chi router with the http.Server that listens for it.
type Server struct {
	router  chi.Router
	logger  *slog.Logger
	addr    string
	limits  serverLimits
	httpSrv *http.Server
}

type serverLimits struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultLimits() serverLimits {
	return serverLimits{
		readHeader: 10 * time.Second,
		read:       30 * time.Second,
		write:      90 * time.Second,
		idle:       2 * time.Minute,
	}
}

// ServerOption adjusts a Server.
type ServerOption func(*Server)

// WithReadTimeout sets the maximum time to read a whole request.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.limits.read = d }
}

// WithWriteTimeout sets the maximum time to write a response. It must
// exceed the /api/v1 request timeout or slow computes are cut off twice.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.limits.write = d }
}

// WithIdleTimeout sets how long keep-alive connections stay open.
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.limits.idle = d }
}

// NewServer creates a server for addr. The router carries request IDs,
// real client IPs and panic recovery; per-route timeouts are left to the
// caller because the MCP stream cannot run under chi's Timeout.
func NewServer(addr string, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		addr:   addr,
		limits: defaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.limits.readHeader,
		ReadTimeout:       s.limits.read,
		WriteTimeout:      s.limits.write,
		IdleTimeout:       s.limits.idle,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Router returns the root router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. A clean shutdown
// returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
	err := s.httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires. A server shut down before Start never serves.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpSrv.Shutdown(ctx)
}
