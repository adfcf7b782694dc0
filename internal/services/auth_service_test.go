package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/pkg/auth"
)

func newAuth(t *testing.T) (*AuthService, *database.Database, *miniredis.Miniredis) {
	store := newTestStore(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAuthService(store, auth.NewJWTManager("secret", time.Hour), rdb, nil), store, mr
}

func TestRegisterDefaultsAndDuplicates(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: " Alice@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "User", user.FullName)
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Email: "alice@example.com", Username: "other", Password: "password1"})
	require.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, RegisterInput{Email: "new@example.com", Username: "alice", Password: "password1"})
	require.ErrorIs(t, err, ErrUserExists)
}

type flakyUsers struct {
	UserStore
	createErr error
	persist   bool
	created   *models.User
}

func (f *flakyUsers) CreateUser(ctx context.Context, u *models.User) error {
	if f.persist {
		f.created = u
	}
	return f.createErr
}

func (f *flakyUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, nil
}

func (f *flakyUsers) UserExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestRegisterStructuredError(t *testing.T) {
	users := &flakyUsers{createErr: database.ErrTransient}
	svc := NewAuthService(users, auth.NewJWTManager("s", time.Hour), nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "pw"})
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.NotEqual(t, uuid.Nil, regErr.UserID)
	assert.ErrorIs(t, err, database.ErrTransient)
}

func TestRegisterRecoversCommittedUser(t *testing.T) {
	users := &flakyUsers{createErr: database.ErrTransient, persist: true}
	svc := NewAuthService(users, auth.NewJWTManager("s", time.Hour), nil, nil)

	user, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, users.created.ID, user.ID)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	svc, _, mr := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "bob", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := svc.Login(ctx, "BOB@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	id, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	require.NoError(t, svc.Logout(ctx, session.Token))
	assert.True(t, mr.Exists("blacklist:"+session.Token))

	_, err = svc.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.ErrorIs(t, svc.Logout(ctx, "garbage"), ErrInvalidToken)
}
