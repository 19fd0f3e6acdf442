// Package postgres implements the user and product stores on PostgreSQL
// via database/sql and lib/pq. Uniqueness invariants (username, email,
// product name) are enforced by unique constraints, not application
// locking; constraint violations are translated into the coded conflict
// errors from pkg/apperr.
package postgres
