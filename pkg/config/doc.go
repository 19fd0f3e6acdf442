// Package config loads and validates service configuration from
// environment variables. Configuration is loaded once at process start
// and never mutated afterwards; the JWT signing key in particular lives
// only in the immutable Config passed to the token codec.
package config
