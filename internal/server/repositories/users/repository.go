// Package users declares and implements persistence for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/custdb/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills ID, IsVerified and CreatedAt from the
	// database. A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// MarkVerified flips is_verified to true. It reports false when the user
	// was already verified or does not exist.
	MarkVerified(ctx context.Context, id int64) (bool, error)
}
