package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	signed, err := j.GenerateToken("abc", "manager", "user")
	require.NoError(t, err)

	claims, err := j.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.ID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "user", claims.Kind)
	assert.WithinDuration(t, time.Now().Add(time.Hour), time.Unix(claims.ExpiresAt, 0), 5*time.Second)
}

func TestValidateTokenRejects(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	other, err := NewJWT("other", time.Hour).GenerateToken("abc", "admin", "user")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaim{
		ID:             "abc",
		Role:           "admin",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	}).SignedString(j.key)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaim{ID: "abc", Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key": other,
		"expired":   expired,
		"none alg":  unsigned,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestNewJWTDefaultsTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewJWT("s", 0).ttl)
}
