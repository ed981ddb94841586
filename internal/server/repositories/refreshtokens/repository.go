// Package refreshtokens stores the refresh tokens issued at login and
// rotated on every refresh.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custdb/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid until now+validity.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) (*models.RefreshToken, error)

	// Find returns common.ErrorNotFound for unknown tokens. Expired rows are
	// still returned; callers check RefreshToken.Expired.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	DeleteByUser(ctx context.Context, userID int64) (int64, error)

	// DeleteExpired removes rows that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
