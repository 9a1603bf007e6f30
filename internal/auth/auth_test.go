package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	return NewAuthenticator(config.AdminConfig{
		Email:           "owner@example.com",
		PasswordHash:    hash,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		ExpirationHours: 12,
		Issuer:          "offerte",
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)
	require.True(t, VerifyPassword(hash, "s3cret"))
	require.False(t, VerifyPassword(hash, "S3cret"))
	require.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "owner@example.com", "correct horse battery staple", false},
		{"email is case insensitive", " Owner@Example.com ", "correct horse battery staple", false},
		{"wrong password", "owner@example.com", "wrong", true},
		{"wrong email", "intruder@example.com", "correct horse battery staple", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := a.Login(tt.email, tt.password)
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, token.Token)

			claims, err := a.Validate(token.Token)
			require.NoError(t, err)
			require.Equal(t, "owner@example.com", claims.Email)
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t)
	token, err := a.Login("owner@example.com", "correct horse battery staple")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := *a
		expired.now = func() time.Time { return time.Now().Add(13 * time.Hour) }
		_, err := expired.Validate(token.Token)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other := *a
		other.cfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
		_, err := other.Validate(token.Token)
		require.Error(t, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := *a
		other.cfg.Issuer = "someone-else"
		_, err := other.Validate(token.Token)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.Validate("not.a.token")
		require.Error(t, err)
	})
}
