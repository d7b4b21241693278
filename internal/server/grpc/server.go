package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/slotswap/internal/logging"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/services"
	"google.golang.org/grpc"
)

// SwapEngine is the part of services.SwapService the transport uses.
type SwapEngine interface {
	ProposeSwap(ctx context.Context, requesterID, offeredSlotID, desiredSlotID string) (*models.ExchangeRequest, error)
	RespondToSwap(ctx context.Context, responderID, requestID string, accept bool) (*models.ExchangeRequest, error)
	ListMarketplace(ctx context.Context, excludeOwnerID string) ([]*models.Slot, error)
	ListIncoming(ctx context.Context, userID string) ([]*models.RequestView, error)
	ListOutgoing(ctx context.Context, userID string) ([]*models.RequestView, error)
}

// SlotManager is the part of services.SlotService the transport uses.
type SlotManager interface {
	CreateSlot(ctx context.Context, ownerID string, in services.SlotInput) (*models.Slot, error)
	ListOwn(ctx context.Context, ownerID string) ([]*models.Slot, error)
	UpdateSlot(ctx context.Context, ownerID, slotID string, upd services.SlotUpdate) (*models.Slot, error)
	DeleteSlot(ctx context.Context, ownerID, slotID string) error
}

type GRPCServer struct {
	address   string
	swaps     SwapEngine
	slots     SlotManager
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, swaps SwapEngine, slots SlotManager, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		swaps:     swaps,
		slots:     slots,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterSlotSwapServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
