package repomanager

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/requests"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/slots"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. Transactions
// serialize on the database write lock taken at BEGIN IMMEDIATE.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Slots(db dbx.DBTX) slots.Repository {
	return slots.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Requests(db dbx.DBTX) requests.Repository {
	return requests.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) TxOptions() *sql.TxOptions {
	return nil
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, dbx.SQLite)
}

func (m *SQLiteRepositoryManager) IsContention(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
