package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/logging"
	"github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type recordingSink struct {
	mu       sync.Mutex
	receipts []Receipt
}

func (r *recordingSink) Enqueue(_ context.Context, rc Receipt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, rc)
}

func (r *recordingSink) all() []Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Receipt(nil), r.receipts...)
}

// -------- helpers --------

type testEnv struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	swaps *SwapService
	slots *SlotService
	sink  *recordingSink
	start time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, repos, err := repomanager.Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "swap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repos.RunMigrations(ctx, db))

	cfg := &config.Config{TxTimeout: 10 * time.Second}
	sink := &recordingSink{}
	env := &testEnv{
		db:    db,
		repos: repos,
		swaps: NewSwapService(db, repos, cfg, logging.Nop{}, sink),
		slots: NewSlotService(db, repos, cfg, logging.Nop{}),
		sink:  sink,
		start: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := newTickClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	env.swaps.now = clock.now
	env.slots.now = clock.now
	return env
}

// tickClock advances one second per reading so that creation order is
// always visible in timestamps.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickClock(start time.Time) *tickClock {
	return &tickClock{t: start}
}

func (c *tickClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// slot creates an OFFERED (or BUSY) slot through the service.
func (e *testEnv) slot(t *testing.T, owner string, status models.SlotStatus) *models.Slot {
	t.Helper()
	e.start = e.start.Add(time.Hour)
	s, err := e.slots.CreateSlot(context.Background(), owner, SlotInput{
		Title: owner + "'s slot", StartTime: e.start, EndTime: e.start.Add(30 * time.Minute), Status: status,
	})
	require.NoError(t, err)
	return s
}

func (e *testEnv) get(t *testing.T, id string) *models.Slot {
	t.Helper()
	s, err := e.repos.Slots(e.db).Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (e *testEnv) request(t *testing.T, id string) *models.ExchangeRequest {
	t.Helper()
	r, err := e.repos.Requests(e.db).Get(context.Background(), id)
	require.NoError(t, err)
	return r
}

// sameSlotDetails checks that a swap left everything but owner, status and
// bookkeeping untouched.
func sameSlotDetails(t *testing.T, want, got *models.Slot) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.True(t, want.StartTime.Equal(got.StartTime), "start time changed: %v -> %v", want.StartTime, got.StartTime)
	assert.True(t, want.EndTime.Equal(got.EndTime), "end time changed: %v -> %v", want.EndTime, got.EndTime)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at changed: %v -> %v", want.CreatedAt, got.CreatedAt)
}

// consistent fails the test if the lock invariant does not hold.
func (e *testEnv) consistent(t *testing.T) {
	t.Helper()
	v, err := e.swaps.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.Empty(t, v)
}
