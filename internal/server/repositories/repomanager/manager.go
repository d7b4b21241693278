package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/migrations"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/requests"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/slots"
)

// RepositoryManager vends repositories bound to a DBTX and carries the
// backend specifics the services must not know about.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Slots(db dbx.DBTX) slots.Repository
	Requests(db dbx.DBTX) requests.Repository
	// TxOptions are passed to every BeginTx.
	TxOptions() *sql.TxOptions
	// IsContention reports whether err is a lock or serialization failure
	// raised by the backend.
	IsContention(err error) bool
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up
