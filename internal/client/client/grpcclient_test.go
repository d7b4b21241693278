package client

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/logging"
	"github.com/dmitrijs2005/slotswap/internal/server/auth"
	"github.com/dmitrijs2005/slotswap/internal/server/config"
	gs "github.com/dmitrijs2005/slotswap/internal/server/grpc"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slotswap/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const secret = "client-secret"

func startServer(t *testing.T) *bufconn.Listener {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	db, repos, err := repomanager.Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	require.NoError(t, repos.RunMigrations(ctx, db))

	cfg := &config.Config{TxTimeout: 5 * time.Second}
	srv := gs.NewGRPCServer("", logging.Nop{},
		services.NewSwapService(db, repos, cfg, logging.Nop{}, nil),
		services.NewSlotService(db, repos, cfg, logging.Nop{}),
		secret)

	lis := bufconn.Listen(1 << 20)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	t.Cleanup(func() {
		cancel()
		<-done
		db.Close()
	})
	return lis
}

func connect(t *testing.T, lis *bufconn.Listener, userID string) *GRPCClient {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(secret), time.Hour)
	require.NoError(t, err)

	c, err := NewGRPCClient("passthrough:///bufnet", token, 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGRPCClient_SwapRoundTrip(t *testing.T) {
	lis := startServer(t)
	alice, bob := connect(t, lis, "alice"), connect(t, lis, "bob")
	ctx := context.Background()
	start := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, alice.Ping(ctx))

	a, err := alice.CreateSlot(ctx, "standup", start, start.Add(30*time.Minute), models.SlotOffered)
	require.NoError(t, err)
	b, err := bob.CreateSlot(ctx, "review", start.Add(time.Hour), start.Add(2*time.Hour), models.SlotBusy)
	require.NoError(t, err)

	b, err = bob.SetSlotStatus(ctx, b.ID, models.SlotOffered)
	require.NoError(t, err)
	assert.Equal(t, models.SlotOffered, b.Status)

	market, err := alice.Marketplace(ctx)
	require.NoError(t, err)
	require.Len(t, market, 1)

	req, err := alice.Propose(ctx, a.ID, b.ID)
	require.NoError(t, err)

	incoming, err := bob.Incoming(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, req.ID, incoming[0].ID)
	require.NotNil(t, incoming[0].Offered)
	assert.Equal(t, "standup", incoming[0].Offered.Title)
	assert.Equal(t, "alice", incoming[0].Offered.OwnerID)

	rejected, err := bob.Respond(ctx, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)

	_, err = bob.Respond(ctx, req.ID, true)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "CONFLICT", remote.Kind)

	outgoing, err := alice.Outgoing(ctx)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	mine, err := alice.MySlots(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.SlotOffered, mine[0].Status)

	require.NoError(t, alice.DeleteSlot(ctx, a.ID))
}

func TestGRPCClient_BadToken(t *testing.T) {
	lis := startServer(t)

	c, err := NewGRPCClient("passthrough:///bufnet", "garbage", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.MySlots(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))

	assert.ErrorIs(t, mapError(status.Error(codes.Unavailable, "down")), ErrUnavailable)
	assert.ErrorIs(t, mapError(status.Error(codes.DeadlineExceeded, "slow")), ErrUnavailable)

	var remote *RemoteError
	require.ErrorAs(t, mapError(status.Error(codes.NotFound, "gone")), &remote)
	assert.Equal(t, "", remote.Kind)
	assert.Equal(t, "gone", remote.Error())
}
