// Package cli implements the interactive slotswap shell.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/client/client"
	"github.com/dmitrijs2005/slotswap/internal/client/config"
	"github.com/dmitrijs2005/slotswap/internal/server/auth"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

// SwapClient is the subset of client.GRPCClient the shell drives.
type SwapClient interface {
	Ping(ctx context.Context) error
	CreateSlot(ctx context.Context, title string, start, end time.Time, st models.SlotStatus) (*models.Slot, error)
	SetSlotStatus(ctx context.Context, slotID string, st models.SlotStatus) (*models.Slot, error)
	DeleteSlot(ctx context.Context, slotID string) error
	MySlots(ctx context.Context) ([]*models.Slot, error)
	Marketplace(ctx context.Context) ([]*models.Slot, error)
	Propose(ctx context.Context, offeredSlotID, desiredSlotID string) (*models.ExchangeRequest, error)
	Respond(ctx context.Context, requestID string, accept bool) (*models.ExchangeRequest, error)
	Incoming(ctx context.Context) ([]*models.RequestView, error)
	Outgoing(ctx context.Context) ([]*models.RequestView, error)
}

type App struct {
	userID string
	client SwapClient
	out    io.Writer
}

func NewApp(c *config.Config, out io.Writer) (*App, func() error, error) {
	token, err := auth.GenerateToken(c.UserID, []byte(c.SecretKey), c.TokenValidity)
	if err != nil {
		return nil, nil, err
	}

	gc, err := client.NewGRPCClient(c.ServerEndpointAddr, token, c.CallTimeout)
	if err != nil {
		return nil, nil, err
	}

	return &App{userID: c.UserID, client: gc, out: out}, gc.Close, nil
}
