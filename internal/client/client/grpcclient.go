// Package client is the CLI's connection to the slotswap gRPC endpoint.
package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	gs "github.com/dmitrijs2005/slotswap/internal/server/grpc"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	conn        *grpc.ClientConn
	client      *gs.SlotSwapClient
	accessToken string
	timeout     time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(withAccessToken(ctx, c.accessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL and attaches accessToken to every
// call. opts are appended to the default dial options.
func NewGRPCClient(endpointURL, accessToken string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{accessToken: accessToken, timeout: timeout}

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dial...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = gs.NewSlotSwapClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}
	return &RemoteError{Kind: gs.KindFromStatus(err), Message: st.Message()}
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	_, err := c.client.Ping(ctx, &gs.PingRequest{})
	return mapError(err)
}

func (c *GRPCClient) CreateSlot(ctx context.Context, title string, start, end time.Time, st models.SlotStatus) (*models.Slot, error) {
	res, err := c.client.CreateSlot(ctx, &gs.CreateSlotRequest{
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Status:    string(st),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Slot, nil
}

func (c *GRPCClient) SetSlotStatus(ctx context.Context, slotID string, st models.SlotStatus) (*models.Slot, error) {
	s := string(st)
	res, err := c.client.UpdateSlot(ctx, &gs.UpdateSlotRequest{SlotID: slotID, Status: &s})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Slot, nil
}

func (c *GRPCClient) DeleteSlot(ctx context.Context, slotID string) error {
	_, err := c.client.DeleteSlot(ctx, &gs.DeleteSlotRequest{SlotID: slotID})
	return mapError(err)
}

func (c *GRPCClient) MySlots(ctx context.Context) ([]*models.Slot, error) {
	res, err := c.client.ListMySlots(ctx, &gs.ListSlotsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Slots, nil
}

func (c *GRPCClient) Marketplace(ctx context.Context) ([]*models.Slot, error) {
	res, err := c.client.ListMarketplace(ctx, &gs.ListSlotsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Slots, nil
}

func (c *GRPCClient) Propose(ctx context.Context, offeredSlotID, desiredSlotID string) (*models.ExchangeRequest, error) {
	res, err := c.client.ProposeSwap(ctx, &gs.ProposeSwapRequest{OfferedSlotID: offeredSlotID, DesiredSlotID: desiredSlotID})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Request, nil
}

func (c *GRPCClient) Respond(ctx context.Context, requestID string, accept bool) (*models.ExchangeRequest, error) {
	res, err := c.client.RespondToSwap(ctx, &gs.RespondToSwapRequest{RequestID: requestID, Accept: accept})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Request, nil
}

func (c *GRPCClient) Incoming(ctx context.Context) ([]*models.RequestView, error) {
	res, err := c.client.ListIncoming(ctx, &gs.ListRequestsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Requests, nil
}

func (c *GRPCClient) Outgoing(ctx context.Context) ([]*models.RequestView, error) {
	res, err := c.client.ListOutgoing(ctx, &gs.ListRequestsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Requests, nil
}
