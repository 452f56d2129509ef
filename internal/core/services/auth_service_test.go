package services

import (
	"context"
	"testing"
	"time"

	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
	)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "steve", Email: "steve@test.local", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "steve", Email: "steve@test.local", Password: "diamond-pickaxe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "MEMBER", resp.User.Role)

	// duplicate username and duplicate email both collide
	_, err = svc.Register(ctx, &RegisterInput{
		Username: "steve", Email: "other@test.local", Password: "diamond-pickaxe",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = svc.Register(ctx, &RegisterInput{
		Username: "steve2", Email: "steve@test.local", Password: "diamond-pickaxe",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Login(ctx, &LoginInput{Username: "steve", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "diamond-pickaxe"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, &LoginInput{Username: "steve", Password: "diamond-pickaxe"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, claims.UserID)
	assert.Equal(t, "steve", claims.Username)
}

func TestAuthLoginBlockedAccounts(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "alex", Email: "alex@test.local", Password: "diamond-pickaxe",
	})
	require.NoError(t, err)

	user, err := svc.GetUserByID(ctx, resp.User.ID)
	require.NoError(t, err)

	until := time.Now().Add(time.Hour)
	user.BannedUntil = &until
	require.NoError(t, db.Save(user).Error)

	_, err = svc.Login(ctx, &LoginInput{Username: "alex", Password: "diamond-pickaxe"})
	assert.ErrorIs(t, err, ErrUserBanned)

	user.BannedUntil = nil
	user.IsActive = false
	require.NoError(t, db.Save(user).Error)

	_, err = svc.Login(ctx, &LoginInput{Username: "alex", Password: "diamond-pickaxe"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "steve", Email: "steve@test.local", Password: "diamond-pickaxe",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// the old token was rotated out and cannot be replayed
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthLogoutRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "steve", Email: "steve@test.local", Password: "diamond-pickaxe",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// logout-all kills every session at once
	a, err := svc.Login(ctx, &LoginInput{Username: "steve", Password: "diamond-pickaxe"})
	require.NoError(t, err)
	b, err := svc.Login(ctx, &LoginInput{Username: "steve", Password: "diamond-pickaxe"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, resp.User.ID))
	_, err = svc.RefreshToken(ctx, a.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.RefreshToken(ctx, b.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
