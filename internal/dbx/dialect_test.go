package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	q := `UPDATE slots SET status = ?, version = version + 1 WHERE id = ? AND version = ?`

	assert.Equal(t,
		`UPDATE slots SET status = $1, version = version + 1 WHERE id = $2 AND version = $3`,
		Postgres.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}

func TestDialect_ForUpdate(t *testing.T) {
	q := `SELECT id FROM slots WHERE id = ?`

	assert.Equal(t, q+" FOR UPDATE", Postgres.ForUpdate(q))
	assert.Equal(t, q, SQLite.ForUpdate(q))
}
