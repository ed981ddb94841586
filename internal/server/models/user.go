// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash never leaves the server;
// it is excluded from JSON so a stray encode cannot leak it.
type User struct {
	ID           int64
	Email        string
	PasswordHash string `json:"-"`
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
