// Package migrations embeds the goose SQL migrations for every supported
// backend. Each dialect keeps its own directory.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

var dirs = map[string]string{
	dbx.Postgres.Name: "postgres",
	dbx.SQLite.Name:   "sqlite",
}

// NewProvider returns a goose provider over the embedded migrations of d.
func NewProvider(db *sql.DB, d dbx.Dialect) (*goose.Provider, error) {
	dir, ok := dirs[d.Name]
	if !ok {
		return nil, fmt.Errorf("no migrations for dialect %q", d.Name)
	}
	sub, err := fs.Sub(Migrations, dir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.Dialect(d.Name), db, sub)
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	p, err := NewProvider(db, d)
	if err != nil {
		return err
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", d.Name, err)
	}
	return nil
}
