// Package api implements the HTTP surface: registration, login, and the
// role-gated product CRUD endpoints. Handlers validate input, delegate to
// services and stores, and translate domain errors through pkg/httputil
// into the standard coded error body.
package api
