// Package customers declares and implements persistence for customer records.
package customers

import (
	"context"

	"github.com/dmitrijs2005/custdb/internal/server/models"
)

// Repository defines CRUD over customers. Lookups of a missing id return
// common.ErrorNotFound.
type Repository interface {
	// Create inserts c and fills ID and CreatedAt. An empty status is stored
	// as models.DefaultCustomerStatus.
	Create(ctx context.Context, c *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error)
	// Update writes every mutable column of c and refreshes UpdatedAt.
	Update(ctx context.Context, c *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}
