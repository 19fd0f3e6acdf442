package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/auth"
	"github.com/inventoryhq/catalog/pkg/httputil"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// AuthHandlers serves the registration and login endpoints
type AuthHandlers struct {
	service *auth.Service
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewAuthHandlers creates the auth handlers
func NewAuthHandlers(service *auth.Service, metrics *observability.Metrics, logger *observability.Logger) *AuthHandlers {
	return &AuthHandlers{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers the auth routes on the router. limit wraps the
// credential endpoints with the login throttle; pass nil to disable.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router, limit func(http.Handler) http.Handler) {
	register := http.Handler(http.HandlerFunc(h.register))
	login := http.Handler(http.HandlerFunc(h.login))
	if limit != nil {
		register = limit(register)
		login = limit(login)
	}
	router.Handle("/api/auth/register", register).Methods("POST")
	router.Handle("/api/auth/login", login).Methods("POST")
}

// register handles POST /api/auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		h.countAuth("register", "invalid_body")
		return
	}
	if err := req.Validate(); err != nil {
		h.countAuth("register", "invalid_input")
		httputil.WriteAppError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if apperr.IsConflict(err) {
			h.countAuth("register", "conflict")
		} else {
			h.countAuth("register", "error")
			h.logger.WithError(err).Error("registration failed")
		}
		httputil.WriteAppError(w, err)
		return
	}

	h.countAuth("register", "success")
	httputil.WriteCreated(w, result)
}

// login handles POST /api/auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		h.countAuth("login", "invalid_body")
		return
	}
	if err := req.Validate(); err != nil {
		h.countAuth("login", "invalid_input")
		httputil.WriteAppError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.From(err) == apperr.ErrInvalidCredentials {
			h.countAuth("login", "invalid_credentials")
		} else {
			h.countAuth("login", "error")
			h.logger.WithError(err).Error("login failed")
		}
		httputil.WriteAppError(w, err)
		return
	}

	h.countAuth("login", "success")
	httputil.WriteSuccess(w, result)
}

func (h *AuthHandlers) countAuth(operation, outcome string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
