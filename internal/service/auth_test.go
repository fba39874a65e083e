package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
)

func TestAuthService_Register_Success(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Username: "  alice ",
		Email:    "a@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.True(t, strings.HasPrefix(user.ID, "user-"))
	assert.NotEqual(t, "pw123", user.PasswordHash)

	stored, err := env.store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "pw123"))
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  RegisterRequest
		msg  string
	}{
		{"same username", RegisterRequest{Username: "alice", Email: "other@x.com", Password: "pw"}, MsgUsernameTaken},
		{"username differs only in case", RegisterRequest{Username: "ALICE", Email: "other@x.com", Password: "pw"}, MsgUsernameTaken},
		{"same email", RegisterRequest{Username: "bob", Email: "a@x.com", Password: "pw"}, MsgEmailRegistered},
		{"email differs only in case", RegisterRequest{Username: "bob", Email: "A@X.COM", Password: "pw"}, MsgEmailRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req)
			require.ErrorIs(t, err, domainerrors.ErrConflict)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.msg, domainErr.Message)
		})
	}

	users, err := env.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty password", RegisterRequest{Username: "alice", Email: "a@x.com"}},
		{"blank username", RegisterRequest{Username: "   ", Email: "a@x.com", Password: "pw"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "not-an-email", Password: "pw"}},
		{"long username", RegisterRequest{Username: strings.Repeat("a", 251), Email: "a@x.com", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "alice", resp.User.Username)

	identity := env.sessions.Resolve(ctx, resp.Token)
	assert.Equal(t, resp.User.ID, identity.UserID)
	assert.Equal(t, resp.SessionID, identity.SessionID)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@x.com", Password: "pw123"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, MsgLoginFailed, domainErr.Message)
}

func TestAuthService_Login_UpgradesLegacyHash(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Entity:       domain.Entity{ID: "user-legacy"},
		Username:     "legacy",
		Email:        "legacy@x.com",
		PasswordHash: string(legacy),
	}
	user.InitTimestamps()
	require.NoError(t, env.store.CreateUser(ctx, user))

	_, err = env.auth.Login(ctx, LoginRequest{Email: "legacy@x.com", Password: "pw123"})
	require.NoError(t, err)

	stored, err := env.store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, auth.IsLegacyHash(stored.PasswordHash))
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "pw123"))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	identity := env.signUp(t, "alice")

	require.NoError(t, env.auth.Logout(ctx, identity))
	require.NoError(t, env.auth.Logout(ctx, identity))
	require.NoError(t, env.auth.Logout(ctx, domain.Anonymous()))

	_, err := env.store.GetSession(ctx, identity.SessionID)
	assert.Error(t, err)
}

func TestAuthService_Me(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Me(ctx, domain.Anonymous())
	require.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	identity := env.signUp(t, "alice")
	user, err := env.auth.Me(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestSessionService_Resolve(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	identity := env.signUp(t, "alice")
	assert.Equal(t, "alice", identity.Username)

	assert.False(t, env.sessions.Resolve(ctx, "").Authenticated())
	assert.False(t, env.sessions.Resolve(ctx, "v4.local.garbage").Authenticated())

	require.NoError(t, env.auth.Logout(ctx, identity))

	user, err := env.store.GetUser(ctx, identity.UserID)
	require.NoError(t, err)
	resp, err := env.sessions.CreateSession(ctx, user)
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteSession(ctx, resp.SessionID))

	assert.False(t, env.sessions.Resolve(ctx, resp.Token).Authenticated(), "revoked session must not resolve")
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	identity := env.signUp(t, "alice")
	user, err := env.store.GetUser(ctx, identity.UserID)
	require.NoError(t, err)

	expired := NewSessionService(env.store, env.sessions.tokens, -time.Minute, env.metrics, nil)
	resp, err := expired.CreateSession(ctx, user)
	require.NoError(t, err)
	assert.False(t, env.sessions.Resolve(ctx, resp.Token).Authenticated())

	n, err := env.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.store.GetSession(ctx, identity.SessionID)
	assert.NoError(t, err, "live session must survive cleanup")
}
