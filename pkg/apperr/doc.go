// Package apperr defines the coded error taxonomy shared by all services
// and the single place where domain errors are mapped to HTTP statuses.
package apperr
