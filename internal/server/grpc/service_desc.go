package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "slotswap.v1.SlotSwap"

// FullMethod returns the gRPC method path of a SlotSwap method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SlotSwapServer is the server API of the SlotSwap service.
type SlotSwapServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	CreateSlot(context.Context, *CreateSlotRequest) (*SlotResponse, error)
	ListMySlots(context.Context, *ListSlotsRequest) (*ListSlotsResponse, error)
	UpdateSlot(context.Context, *UpdateSlotRequest) (*SlotResponse, error)
	DeleteSlot(context.Context, *DeleteSlotRequest) (*DeleteSlotResponse, error)
	ListMarketplace(context.Context, *ListSlotsRequest) (*ListSlotsResponse, error)
	ProposeSwap(context.Context, *ProposeSwapRequest) (*ExchangeRequestResponse, error)
	RespondToSwap(context.Context, *RespondToSwapRequest) (*ExchangeRequestResponse, error)
	ListIncoming(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error)
	ListOutgoing(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error)
}

// unaryMethod adapts a typed server method to a grpc.MethodDesc.
func unaryMethod[Req, Resp any](name string, call func(SlotSwapServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SlotSwapServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SlotSwapServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SlotSwapServiceDesc describes the SlotSwap service for grpc.Server.
var SlotSwapServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SlotSwapServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Ping", SlotSwapServer.Ping),
		unaryMethod("CreateSlot", SlotSwapServer.CreateSlot),
		unaryMethod("ListMySlots", SlotSwapServer.ListMySlots),
		unaryMethod("UpdateSlot", SlotSwapServer.UpdateSlot),
		unaryMethod("DeleteSlot", SlotSwapServer.DeleteSlot),
		unaryMethod("ListMarketplace", SlotSwapServer.ListMarketplace),
		unaryMethod("ProposeSwap", SlotSwapServer.ProposeSwap),
		unaryMethod("RespondToSwap", SlotSwapServer.RespondToSwap),
		unaryMethod("ListIncoming", SlotSwapServer.ListIncoming),
		unaryMethod("ListOutgoing", SlotSwapServer.ListOutgoing),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterSlotSwapServer registers srv on s.
func RegisterSlotSwapServer(s grpc.ServiceRegistrar, srv SlotSwapServer) {
	s.RegisterService(&SlotSwapServiceDesc, srv)
}

// SlotSwapClient is a typed client for the SlotSwap service. Every call
// uses the JSON codec.
type SlotSwapClient struct {
	cc grpc.ClientConnInterface
}

func NewSlotSwapClient(cc grpc.ClientConnInterface) *SlotSwapClient {
	return &SlotSwapClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SlotSwapClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *SlotSwapClient) CreateSlot(ctx context.Context, in *CreateSlotRequest, opts ...grpc.CallOption) (*SlotResponse, error) {
	return invoke[SlotResponse](ctx, c.cc, "CreateSlot", in, opts)
}

func (c *SlotSwapClient) ListMySlots(ctx context.Context, in *ListSlotsRequest, opts ...grpc.CallOption) (*ListSlotsResponse, error) {
	return invoke[ListSlotsResponse](ctx, c.cc, "ListMySlots", in, opts)
}

func (c *SlotSwapClient) UpdateSlot(ctx context.Context, in *UpdateSlotRequest, opts ...grpc.CallOption) (*SlotResponse, error) {
	return invoke[SlotResponse](ctx, c.cc, "UpdateSlot", in, opts)
}

func (c *SlotSwapClient) DeleteSlot(ctx context.Context, in *DeleteSlotRequest, opts ...grpc.CallOption) (*DeleteSlotResponse, error) {
	return invoke[DeleteSlotResponse](ctx, c.cc, "DeleteSlot", in, opts)
}

func (c *SlotSwapClient) ListMarketplace(ctx context.Context, in *ListSlotsRequest, opts ...grpc.CallOption) (*ListSlotsResponse, error) {
	return invoke[ListSlotsResponse](ctx, c.cc, "ListMarketplace", in, opts)
}

func (c *SlotSwapClient) ProposeSwap(ctx context.Context, in *ProposeSwapRequest, opts ...grpc.CallOption) (*ExchangeRequestResponse, error) {
	return invoke[ExchangeRequestResponse](ctx, c.cc, "ProposeSwap", in, opts)
}

func (c *SlotSwapClient) RespondToSwap(ctx context.Context, in *RespondToSwapRequest, opts ...grpc.CallOption) (*ExchangeRequestResponse, error) {
	return invoke[ExchangeRequestResponse](ctx, c.cc, "RespondToSwap", in, opts)
}

func (c *SlotSwapClient) ListIncoming(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error) {
	return invoke[ListRequestsResponse](ctx, c.cc, "ListIncoming", in, opts)
}

func (c *SlotSwapClient) ListOutgoing(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error) {
	return invoke[ListRequestsResponse](ctx, c.cc, "ListOutgoing", in, opts)
}
