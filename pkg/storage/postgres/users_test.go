package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/auth"
)

func newMockDB(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db), mock
}

func TestUserStoreCreate(t *testing.T) {
	store, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hashed", true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	user := &auth.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
		Enabled:      true,
		Roles:        []auth.Role{auth.RoleUser},
	}
	require.NoError(t, store.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, now, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreateUsernameConflict(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := store.Create(context.Background(), &auth.User{Username: "alice"})
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreateEmailConflict(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := store.Create(context.Background(), &auth.User{Username: "alice"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByUsername(t *testing.T) {
	store, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, password_hash, enabled, roles, created_at, updated_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "enabled", "roles", "created_at", "updated_at",
		}).AddRow(int64(7), "alice", "alice@example.com", "hashed", true, "{USER,ADMIN}", now, now))

	user, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, []auth.Role{auth.RoleUser, auth.RoleAdmin}, user.Roles)
	assert.True(t, user.Enabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByUsernameNotFound(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "enabled", "roles", "created_at", "updated_at",
		}))

	_, err := store.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreExists(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = store.ExistsByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "users_username_key"}
	assert.True(t, isUniqueViolation(err, "users_username_key"))
	assert.False(t, isUniqueViolation(err, "users_email_key"))
	assert.True(t, isUniqueViolation(err, ""))

	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, "users_username_key"))
	assert.False(t, isUniqueViolation(context.DeadlineExceeded, "users_username_key"))
}
