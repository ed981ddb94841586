// Package common defines shared constants and sentinel errors used across
// the server, the admin CLI and their storage layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorAlreadyVerified = errors.New("already verified")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
