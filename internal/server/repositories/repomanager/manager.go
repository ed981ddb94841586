package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/customers"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository code inside and outside of a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Customers(db dbx.DBTX) customers.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
