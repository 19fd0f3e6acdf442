package auth

import (
	"context"
	"time"
)

// Role is a label granting access to a class of routes. Role checks are
// plain set membership: ADMIN does not implicitly include USER routes.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a registered identity. Immutable after registration
// except for the enabled flag, which operators may flip directly in the
// database.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose the hash
	Enabled      bool      `json:"enabled"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Context holds the authenticated identity for a single request. Created
// by the authenticator middleware at request start, discarded at request
// end, never persisted.
type Context struct {
	User  *User
	Roles []Role
}

// HasRole reports whether the request's identity holds the given role
func (c *Context) HasRole(role Role) bool {
	if c == nil || c.User == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserStore persists user records. Implementations must enforce username
// and email uniqueness at the storage layer (unique constraints), since a
// concurrent exists-check-then-insert is racy at the application level.
type UserStore interface {
	// Create inserts a new user and fills in its generated ID and
	// timestamps. Returns apperr.ErrUsernameTaken or apperr.ErrEmailTaken
	// on a uniqueness violation.
	Create(ctx context.Context, user *User) error

	// GetByUsername returns the user with the given username, or
	// ErrUserNotFound.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername reports whether a user with the username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
