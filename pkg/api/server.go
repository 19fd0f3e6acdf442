package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inventoryhq/catalog/pkg/auth"
	"github.com/inventoryhq/catalog/pkg/httputil"
	"github.com/inventoryhq/catalog/pkg/middleware"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// PublicPaths are the request paths that never require a token
var PublicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
}

// DefaultAccessPolicy returns the route policy: reads are open to any
// authenticated identity, mutations require ADMIN.
func DefaultAccessPolicy() *middleware.AccessPolicy {
	return middleware.NewAccessPolicy().
		Require("POST", "/api/products", auth.RoleAdmin).
		Require("PUT", "/api/products/{id}", auth.RoleAdmin).
		Require("DELETE", "/api/products/{id}", auth.RoleAdmin)
}

// Options collects the server's collaborators. AuthService, Products,
// Authenticator, and Logger are required; the rest degrade gracefully
// when nil or zero.
type Options struct {
	AuthService   *auth.Service
	Products      ProductStore
	Authenticator *middleware.Authenticator
	Policy        *middleware.AccessPolicy
	LoginLimiter  *middleware.LoginRateLimiter
	Metrics       *observability.Metrics
	Logger        *observability.Logger
	MaxBodyBytes  int64
}

// Server is the catalog HTTP API
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *observability.Logger
}

// NewServer creates the API server and wires routes and middleware
func NewServer(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: opts.Logger,
	}

	policy := opts.Policy
	if policy == nil {
		policy = DefaultAccessPolicy()
	}

	// Router-level middleware runs after route matching, so the metrics
	// and policy layers can read the mux path template.
	if opts.Metrics != nil {
		s.router.Use(opts.Metrics.Middleware)
	}
	s.router.Use(opts.Authenticator.Handler)
	s.router.Use(policy.Handler)

	authHandlers := NewAuthHandlers(opts.AuthService, opts.Metrics, opts.Logger)
	var limit func(http.Handler) http.Handler
	if opts.LoginLimiter != nil {
		limit = opts.LoginLimiter.Handler
	}
	authHandlers.RegisterRoutes(s.router, limit)

	productHandlers := NewProductHandlers(opts.Products, opts.Logger)
	productHandlers.RegisterRoutes(s.router)

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	s.handler = httputil.Chain(
		httputil.RecoveryMiddleware(opts.Logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(opts.Logger),
		httputil.MaxBytesMiddleware(maxBody),
		httputil.ContentTypeMiddleware,
	)(s.router)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the underlying mux router for extra route registration
func (s *Server) Router() *mux.Router {
	return s.router
}
