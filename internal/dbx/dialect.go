package dbx

import (
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported backends.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect struct {
	// Name is the goose dialect name.
	Name string
	// Numbered placeholders ($1, $2, ...) instead of '?'.
	Numbered bool
	// LockClause is appended to row reads that must hold a write lock until
	// commit. Empty when the backend locks at transaction start instead.
	LockClause string
}

var (
	// Postgres locks rows explicitly with SELECT ... FOR UPDATE.
	Postgres = Dialect{Name: "postgres", Numbered: true, LockClause: " FOR UPDATE"}
	// SQLite takes the database write lock at BEGIN (the connection is opened
	// with _txlock=immediate), so row reads need no lock clause.
	SQLite = Dialect{Name: "sqlite3"}
)

// Rebind rewrites '?' placeholders into the dialect's form. Queries must not
// contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ForUpdate appends the lock clause to a single-row SELECT.
func (d Dialect) ForUpdate(query string) string {
	return query + d.LockClause
}
