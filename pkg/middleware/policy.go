package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/auth"
	"github.com/inventoryhq/catalog/pkg/httputil"
)

// routeKey identifies a route by method and mux path template
type routeKey struct {
	method   string
	template string
}

// AccessPolicy maps routes to the role they require. Routes with no entry
// are open to any authenticated identity. Using the mux path template
// rather than the raw URL means one entry covers every ID.
type AccessPolicy struct {
	rules map[routeKey]auth.Role
}

// NewAccessPolicy creates an empty policy
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{rules: make(map[routeKey]auth.Role)}
}

// Require registers a role requirement for a method and path template.
// The template must match the route registration exactly, e.g.
// "/api/products/{id}".
func (p *AccessPolicy) Require(method, template string, role auth.Role) *AccessPolicy {
	p.rules[routeKey{method: method, template: template}] = role
	return p
}

// RequiredRole returns the role a request's route demands, if any
func (p *AccessPolicy) RequiredRole(r *http.Request) (auth.Role, bool) {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "", false
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return "", false
	}
	role, ok := p.rules[routeKey{method: r.Method, template: template}]
	return role, ok
}

// Handler wraps an HTTP handler with policy enforcement. It must run after
// the authenticator and inside the mux router so the route template is
// resolvable.
func (p *AccessPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, required := p.RequiredRole(r)
		if !required {
			next.ServeHTTP(w, r)
			return
		}

		authCtx := GetAuthContext(r)
		if authCtx == nil {
			httputil.WriteAppError(w, apperr.ErrAuthRequired)
			return
		}
		if !authCtx.HasRole(role) {
			httputil.WriteAppError(w, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
