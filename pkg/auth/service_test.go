package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/observability"
)

// fakeUserStore is an in-memory UserStore with the same uniqueness
// guarantees as the Postgres implementation.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*User), nextID: 1}
}

func (s *fakeUserStore) Create(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return apperr.ErrUsernameTaken
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.ErrEmailTaken
		}
	}
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.Username] = &clone
	return nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(store UserStore) *Service {
	return NewService(
		store,
		NewHasher(bcrypt.MinCost),
		NewTokenCodec(testSecret, time.Hour),
		observability.NewLogger(observability.ErrorLevel, io.Discard),
	)
}

func TestRegister(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.Register(ctx, "alice", "Secret123", "alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, "alice@x.com", result.Email)

	// The persisted user is enabled with the default role and a usable hash
	user, err := store.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, user.Enabled)
	assert.Equal(t, []Role{RoleUser}, user.Roles)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	// The issued token resolves back to the username
	subject, err := NewTokenCodec(testSecret, time.Hour).Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Secret123", "alice@x.com")
	require.NoError(t, err)

	// Same username always conflicts, regardless of the other fields
	_, err = svc.Register(ctx, "alice", "Other456", "other@x.com")
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Secret123", "alice@x.com")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "Secret123", "alice@x.com")
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Secret123", "alice@x.com")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		result, err := svc.Login(ctx, "alice", "Secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "alice@x.com", result.Email)

		subject, err := NewTokenCodec(testSecret, time.Hour).Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "WrongPass")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "Secret123")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("disabled user", func(t *testing.T) {
		store.mu.Lock()
		store.users["alice"].Enabled = false
		store.mu.Unlock()

		_, err := svc.Login(ctx, "alice", "Secret123")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

		store.mu.Lock()
		store.users["alice"].Enabled = true
		store.mu.Unlock()
	})
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Secret123", "alice@x.com")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody", "whatever")
	_, errWrongPass := svc.Login(ctx, "alice", "WrongPass")

	// Same error value either way: no username enumeration
	assert.Equal(t, errUnknown, errWrongPass)
}

func TestHasRole(t *testing.T) {
	user := &User{Roles: []Role{RoleUser}}
	assert.True(t, user.HasRole(RoleUser))
	assert.False(t, user.HasRole(RoleAdmin))

	// No hierarchy: ADMIN alone does not grant USER
	admin := &User{Roles: []Role{RoleAdmin}}
	assert.True(t, admin.HasRole(RoleAdmin))
	assert.False(t, admin.HasRole(RoleUser))

	authCtx := &Context{User: user, Roles: user.Roles}
	assert.True(t, authCtx.HasRole(RoleUser))
	assert.False(t, authCtx.HasRole(RoleAdmin))

	var nilCtx *Context
	assert.False(t, nilCtx.HasRole(RoleUser))
}
