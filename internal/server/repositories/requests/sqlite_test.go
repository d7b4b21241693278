package requests

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/migrations"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "requests.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, migrations.Up(context.Background(), db, dbx.SQLite))
	return NewSQLiteRepository(db)
}

func pending(id, requester, recipient, offered, desired string, at time.Time) *models.ExchangeRequest {
	return &models.ExchangeRequest{
		ID: id, RequesterID: requester, RecipientID: recipient,
		OfferedSlotID: offered, DesiredSlotID: desired,
		Status: models.RequestPending, CreatedAt: at,
	}
}

func TestSQLite_Lifecycle(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, pending("r1", "alice", "bob", "s1", "s2", at)))

	got, err := repo.GetForUpdate(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, got.Status)
	assert.Nil(t, got.RespondedAt)
	assert.True(t, at.Equal(got.CreatedAt))

	responded := at.Add(30 * time.Minute)
	done, err := repo.UpdateFields(ctx, "r1", models.RequestPatch{
		Status: models.RequestRejected, RespondedAt: &responded, ExpectStatus: models.RequestPending,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, done.Status)
	require.NotNil(t, done.RespondedAt)
	assert.True(t, responded.Equal(*done.RespondedAt))

	// a resolved request never moves again
	_, err = repo.UpdateFields(ctx, "r1", models.RequestPatch{
		Status: models.RequestAccepted, RespondedAt: &responded, ExpectStatus: models.RequestPending,
	})
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	_, err = repo.UpdateFields(ctx, "r9", models.RequestPatch{Status: models.RequestAccepted, ExpectStatus: models.RequestPending})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Get(ctx, "r9")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_SameSlotTwiceRejected(t *testing.T) {
	repo := newSQLiteRepo(t)
	err := repo.Create(context.Background(), pending("r1", "alice", "bob", "s1", "s1", time.Now().UTC()))
	assert.Error(t, err)
}

func TestSQLite_List(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, pending("r1", "alice", "bob", "s1", "s2", at)))
	require.NoError(t, repo.Create(ctx, pending("r2", "carol", "bob", "s3", "s4", at.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, pending("r3", "alice", "dave", "s5", "s6", at.Add(2*time.Minute))))

	incoming, err := repo.List(ctx, models.RequestFilter{RecipientID: "bob", Status: models.RequestPending, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, "r2", incoming[0].ID)
	assert.Equal(t, "r1", incoming[1].ID)

	outgoing, err := repo.List(ctx, models.RequestFilter{RequesterID: "alice", NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, outgoing, 2)
	assert.Equal(t, "r3", outgoing[0].ID)

	bySlot, err := repo.List(ctx, models.RequestFilter{SlotID: "s4"})
	require.NoError(t, err)
	require.Len(t, bySlot, 1)
	assert.Equal(t, "r2", bySlot[0].ID)
}
