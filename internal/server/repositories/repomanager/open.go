package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/slotswap/internal/server/config"
)

// sqliteParams are appended to SQLite DSNs that do not mention them yet.
var sqliteParams = []struct{ marker, param string }{
	{"busy_timeout", "_pragma=busy_timeout(5000)"},
	{"journal_mode", "_pragma=journal_mode(WAL)"},
	{"_txlock", "_txlock=immediate"},
}

// SQLiteDSN adds the connection parameters the engine relies on: writers wait
// on a busy database and every transaction takes the write lock at BEGIN.
func SQLiteDSN(dsn string) string {
	var missing []string
	for _, p := range sqliteParams {
		if !strings.Contains(dsn, p.marker) {
			missing = append(missing, p.param)
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

// Open connects to the configured backend, checks the connection and returns
// the matching RepositoryManager.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		sqlDriver string
		m         RepositoryManager
	)
	switch driver {
	case config.DriverPostgres:
		sqlDriver, m = "pgx", NewPostgresRepositoryManager()
	case config.DriverSQLite:
		sqlDriver, m, dsn = "sqlite", NewSQLiteRepositoryManager(), SQLiteDSN(dsn)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, m, nil
}
