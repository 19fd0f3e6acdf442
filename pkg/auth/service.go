package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// ErrUserNotFound is returned by UserStore implementations when no user
// matches the lookup. The service never exposes it to callers directly;
// login failures all collapse to invalid credentials.
var ErrUserNotFound = errors.New("user not found")

// Result is the outcome of a successful register or login: the issued
// token plus the echoed identity fields.
type Result struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service orchestrates registration and login. It holds no per-request
// state; all methods are safe for concurrent use.
type Service struct {
	store  UserStore
	hasher *Hasher
	codec  *TokenCodec
	logger *observability.Logger
}

// NewService constructs the authentication service
func NewService(store UserStore, hasher *Hasher, codec *TokenCodec, logger *observability.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		codec:  codec,
		logger: logger,
	}
}

// Register creates a new enabled user with the default USER role and
// returns a freshly issued token. Fails with apperr.ErrUsernameTaken when
// the username is in use. The duplicate-username race between the
// exists-check and the insert is closed by the store's unique constraint,
// which surfaces as the same conflict error.
func (s *Service) Register(ctx context.Context, username, password, email string) (*Result, error) {
	exists, err := s.store.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return nil, apperr.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
		Roles:        []Role{RoleUser},
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.WithField("username", user.Username).Info("user registered")

	return &Result{Token: token, Username: user.Username, Email: user.Email}, nil
}

// Login verifies credentials and returns a freshly issued token. Unknown
// username, disabled account, and wrong password are indistinguishable to
// the caller: all return apperr.ErrInvalidCredentials. The plaintext
// password is never logged.
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.Enabled {
		return nil, apperr.ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.WithField("username", user.Username).Info("user logged in")

	return &Result{Token: token, Username: user.Username, Email: user.Email}, nil
}
