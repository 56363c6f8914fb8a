package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/listings"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Listings(db dbx.DBTX) listings.Repository
}
