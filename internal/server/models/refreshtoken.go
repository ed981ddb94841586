package models

import "time"

// RefreshToken is an opaque, single-use credential exchanged for a new
// access token. Rows are rotated on every refresh.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
