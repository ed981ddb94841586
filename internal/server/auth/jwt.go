// Package auth issues and checks access tokens and password hashes.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is written to and required in the "iss" claim.
const Issuer = "custdb"

var signingMethod = jwt.SigningMethodHS256

// GenerateToken signs an access token for userID. The user id travels in
// the "sub" claim; every token gets a fresh "jti".
func GenerateToken(userID int64, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secretKey)
}

// GetUserIDFromToken validates tokenString and returns its user id.
// Expired tokens yield common.ErrTokenExpired; any other failure yields
// common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, common.ErrTokenExpired
	}
	if err != nil {
		return 0, common.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}
