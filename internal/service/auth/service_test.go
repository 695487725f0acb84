package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shearbook/booking-api/internal/config"
	"github.com/shearbook/booking-api/internal/model"
)

func testService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewService(config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenExpiryHours:  12,
		AdminEmail:        "owner@example.com",
		AdminPasswordHash: string(hash),
	})
}

func TestLoginAndValidate(t *testing.T) {
	svc := testService(t)

	resp, err := svc.Login(&model.LoginRequest{Email: "owner@example.com", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), resp.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := testService(t)

	_, err := svc.Login(&model.LoginRequest{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&model.LoginRequest{Email: "intruder@example.com", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	svc := testService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := testService(t)
	svc.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }

	resp, err := svc.Login(&model.LoginRequest{Email: "owner@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
