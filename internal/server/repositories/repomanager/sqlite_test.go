package repomanager

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"a.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
		SQLiteDSN("a.db"))
	assert.Equal(t,
		"a.db?_txlock=deferred&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		SQLiteDSN("a.db?_txlock=deferred"))

	full := "a.db?_pragma=busy_timeout(1)&_pragma=journal_mode(DELETE)&_txlock=exclusive"
	assert.Equal(t, full, SQLiteDSN(full))
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()
	db, m, err := Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.IsType(t, &SQLiteRepositoryManager{}, m)
	require.NoError(t, m.RunMigrations(ctx, db))
	assert.Nil(t, m.TxOptions())

	now := time.Now().UTC().Truncate(time.Second)
	err = dbx.WithTx(ctx, db, m.TxOptions(), func(ctx context.Context, tx dbx.DBTX) error {
		return m.Slots(tx).Create(ctx, &models.Slot{
			ID: "s1", Title: "t", StartTime: now, EndTime: now.Add(time.Hour), OwnerID: "u",
			Status: models.SlotBusy, Version: 1, CreatedAt: now, UpdatedAt: now,
		})
	})
	require.NoError(t, err)

	list, err := m.Requests(db).List(ctx, models.RequestFilter{SlotID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteIsContention_BusyDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "busy.db")
	dsn := path + "?_pragma=busy_timeout(0)&_pragma=journal_mode(WAL)&_txlock=immediate"

	db, m, err := Open(ctx, config.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, m.RunMigrations(ctx, db))

	holder, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer holder.Rollback()

	_, err = db.BeginTx(ctx, nil)
	require.Error(t, err)
	assert.True(t, m.IsContention(err), "got %v", err)
	assert.False(t, m.IsContention(errors.New("plain")))
}
