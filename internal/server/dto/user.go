// Package dto holds the request and response shapes of the HTTP API.
// Each shape lists exactly its own fields; request shapes validate
// themselves and return validation.Errors on failure.
package dto

import (
	"time"

	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
)

// UserCreate is the registration payload. bcrypt ignores input past
// 72 bytes, so longer passwords are rejected instead of truncated.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

func (u UserCreate) Validate() error { return validation.Struct(u) }

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (u UserLogin) Validate() error { return validation.Struct(u) }

// UserResponse is the public view of a user. It has no password field.
type UserResponse struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func NewTokenResponse(access, refresh string) TokenResponse {
	return TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r RefreshRequest) Validate() error { return validation.Struct(r) }

type MessageResponse struct {
	Message string `json:"message"`
}
