// Package middleware provides the request-level security layers: bearer
// token authentication, role-based access policy, and Redis-backed login
// rate limiting. The authenticator stashes an *auth.Context in the request
// context under contextkeys.AuthKey; everything downstream reads it from
// there.
package middleware
