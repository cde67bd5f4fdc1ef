package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("crm-sync", "admin")
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "crm-sync", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	_, err = manager.ParseToken(token + "tampered")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_RejectsOtherSecretAndExpired(t *testing.T) {
	token, err := NewJWTManager("other", time.Hour).GenerateToken("crm-sync", "user")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ParseToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "crm-sync",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ParseToken(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_RejectsUnexpectedAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "crm-sync"},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).ParseToken(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_GenerateValidation(t *testing.T) {
	_, err := NewJWTManager("", time.Hour).GenerateToken("user", "user")
	assert.Error(t, err)

	_, err = NewJWTManager("secret", time.Hour).GenerateToken("", "user")
	assert.Error(t, err)
}
