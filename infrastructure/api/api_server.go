package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/helixml/compset"
	apimiddleware "github.com/helixml/compset/infrastructure/api/middleware"
	v1 "github.com/helixml/compset/infrastructure/api/v1"
	mcpinternal "github.com/helixml/compset/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// requestTimeout bounds every /api/v1 request.
const requestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by a compset Client.
type APIServer struct {
	client       *compset.Client
	version      string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given compset Client.
// Mutating endpoints require one of the client's API keys when any are
// configured. Reads, health checks, docs and MCP remain open.
func NewAPIServer(client *compset.Client, version string) *APIServer {
	return &APIServer{
		client:  client,
		version: version,
		logger:  client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(a.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			apimiddleware.APIKeyHeader, apimiddleware.UserIDHeader, apimiddleware.CorrelationIDHeader,
		},
		ExposedHeaders: []string{apimiddleware.CorrelationIDHeader},
		MaxAge:         300,
	}))

	router.Get("/healthz", a.healthz)
	router.Get("/readyz", a.readyz)
	router.Mount("/docs", NewDocsRouter("/docs/openapi.json", a.version).Routes())

	auth := apimiddleware.NewAuthConfigWithKeys(c.APIKeys())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Use(apimiddleware.WriteProtect(auth))

		r.Mount("/queue", v1.NewQueueRouter(c).Routes())
		r.Mount("/jobs", v1.NewJobsRouter(c).Routes())
		r.Mount("/hotels", v1.NewHotelsRouter(c).Routes())

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.Identity(c.EnforceOwnership()))
			r.Mount("/properties/{propertyID}/competitive", v1.NewCompetitiveRouter(c).Routes())
		})
	})

	// MCP streams responses and tracks sessions through headers, which
	// chi's Timeout middleware breaks, so it sits outside /api/v1.
	mcpSrv := mcpinternal.NewServer(c.Index, c.Graph, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

func (a *APIServer) healthz(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *APIServer) readyz(w http.ResponseWriter, r *http.Request) {
	if err := a.client.Ping(r.Context()); err != nil {
		a.logger.Error("readiness check failed", slog.Any("error", err))
		apimiddleware.WriteError(w, r, apimiddleware.NewServerError(http.StatusServiceUnavailable, "database unavailable"), a.logger)
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
