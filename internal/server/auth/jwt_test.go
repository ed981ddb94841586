package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.RegisteredClaims, secret []byte) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	t.Parallel()
	secret := []byte("super-secret")

	tok, err := GenerateToken(123, secret, time.Hour)
	require.NoError(t, err)

	id, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
}

func TestGenerateToken_UniquePerCall(t *testing.T) {
	t.Parallel()
	secret := []byte("k")

	a, err := GenerateToken(1, secret, time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken(1, secret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGetUserIDFromToken_Rejects(t *testing.T) {
	t.Parallel()
	secret := []byte("k")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	expired, err := GenerateToken(1, secret, -time.Second)
	require.NoError(t, err)
	otherSecret, err := GenerateToken(2, []byte("other"), time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, common.ErrTokenExpired},
		{"wrong secret", otherSecret, common.ErrInvalidToken},
		{"malformed", "not.a.jwt", common.ErrInvalidToken},
		{"no subject", sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: future}, secret), common.ErrInvalidToken},
		{"non numeric subject", sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: Issuer, Subject: "ann", ExpiresAt: future}, secret), common.ErrInvalidToken},
		{"foreign issuer", sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "elsewhere", Subject: "5", ExpiresAt: future}, secret), common.ErrInvalidToken},
		{"no expiry", sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: Issuer, Subject: "5"}, secret), common.ErrInvalidToken},
		{"other alg", sign(t, jwt.SigningMethodHS512, jwt.RegisteredClaims{Issuer: Issuer, Subject: "5", ExpiresAt: future}, secret), common.ErrInvalidToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GetUserIDFromToken(tc.token, secret)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
