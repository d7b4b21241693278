// Package repomanager provides RepositoryManager implementations for
// PostgreSQL and SQLite, wiring repository constructors, migrations (via
// goose) and contention detection.
package repomanager

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/requests"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/slots"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Slots returns a slots.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Slots(db dbx.DBTX) slots.Repository {
	return slots.NewPostgresRepository(db)
}

// Requests returns a requests.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Requests(db dbx.DBTX) requests.Repository {
	return requests.NewPostgresRepository(db)
}

// TxOptions selects READ COMMITTED: rows are locked with FOR UPDATE and
// re-read after the lock is granted, and writes are version-checked.
func (m *PostgresRepositoryManager) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, dbx.Postgres)
}

var pgContentionCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"57014": {}, // query_canceled (statement/lock timeout)
}

func (m *PostgresRepositoryManager) IsContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	_, ok := pgContentionCodes[pgErr.Code]
	return ok
}
