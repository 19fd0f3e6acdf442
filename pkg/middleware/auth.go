package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/auth"
	"github.com/inventoryhq/catalog/pkg/contextkeys"
	"github.com/inventoryhq/catalog/pkg/httputil"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// Authenticator validates bearer tokens and loads the authenticated user.
// Requests to public paths pass through untouched; everything else must
// carry a valid token for an enabled user or is rejected with 403.
type Authenticator struct {
	codec       *auth.TokenCodec
	users       auth.UserStore
	metrics     *observability.Metrics
	logger      *observability.Logger
	publicPaths map[string]bool
}

// NewAuthenticator creates an authenticator. publicPaths lists exact
// request paths that never require a token (the register and login
// endpoints).
func NewAuthenticator(codec *auth.TokenCodec, users auth.UserStore, metrics *observability.Metrics, logger *observability.Logger, publicPaths []string) *Authenticator {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}
	return &Authenticator{
		codec:       codec,
		users:       users,
		metrics:     metrics,
		logger:      logger,
		publicPaths: public,
	}
}

// Handler wraps an HTTP handler with authentication
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			a.reject(w, r, apperr.ErrAuthRequired, "missing")
			return
		}

		// Format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			a.reject(w, r, apperr.ErrInvalidToken, "malformed_header")
			return
		}

		subject, err := a.codec.Validate(parts[1])
		if err != nil {
			outcome := "invalid"
			if errors.Is(err, apperr.ErrExpiredToken) {
				outcome = "expired"
			}
			a.reject(w, r, err, outcome)
			return
		}

		user, err := a.users.GetByUsername(r.Context(), subject)
		if err != nil {
			// A valid signature over a subject that no longer exists is
			// treated the same as a bad token.
			if errors.Is(err, auth.ErrUserNotFound) {
				a.reject(w, r, apperr.ErrInvalidToken, "unknown_subject")
				return
			}
			a.logger.WithError(err).Error("failed to load user for token")
			httputil.WriteAppError(w, apperr.ErrInternal)
			return
		}
		if !user.Enabled {
			a.reject(w, r, apperr.ErrInvalidToken, "disabled")
			return
		}

		if a.metrics != nil {
			a.metrics.TokenValidationsTotal.WithLabelValues("success").Inc()
		}

		authCtx := &auth.Context{User: user, Roles: user.Roles}
		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err error, outcome string) {
	if a.metrics != nil {
		a.metrics.TokenValidationsTotal.WithLabelValues(outcome).Inc()
	}
	a.logger.WithFields(map[string]interface{}{
		"path":    r.URL.Path,
		"outcome": outcome,
	}).Debug("request rejected by authenticator")
	httputil.WriteAppError(w, err)
}

// GetAuthContext extracts the auth context from a request, or nil when the
// request was not authenticated.
func GetAuthContext(r *http.Request) *auth.Context {
	ctx := r.Context().Value(contextkeys.AuthKey)
	if ctx == nil {
		return nil
	}
	authCtx, ok := ctx.(*auth.Context)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireRole creates middleware that rejects requests whose identity does
// not hold the given role.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
}
