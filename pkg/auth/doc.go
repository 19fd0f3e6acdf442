// Package auth implements the authentication core: password hashing,
// stateless JWT issuance and validation, and the registration/login
// service. Authorization (role checks per route) lives in pkg/middleware;
// persistence lives in pkg/storage/postgres.
package auth
