package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/config"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/storage/memstorage"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()

	cfg := &config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		Issuer:   "license-admin-api",
	}
	return NewAuthService(memstorage.NewUserRepository("s3cret"), cfg, zap.NewNop())
}

func TestLoginAndValidateToken(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	token, expiresAt, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ierr.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "ghost", "s3cret")
	require.ErrorIs(t, err, ierr.ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.ValidateToken("not.a.token")
	require.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthFixture(t)

	other := NewAuthService(memstorage.NewUserRepository("s3cret"), &config.JWTConfig{
		Secret:   "different-secret",
		TokenTTL: time.Hour,
		Issuer:   "license-admin-api",
	}, zap.NewNop())

	token, _, err := other.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ierr.ErrInvalidToken)
}
