package grpc

import (
	"context"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/services"
)

// fail logs err at a level matching its kind and converts it to a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	switch common.KindOf(err) {
	case common.KindInternal:
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	case common.KindInconsistent:
		s.logger.Warn(ctx, "request hit an integrity fault", "method", method, "error", err)
	default:
		s.logger.Debug(ctx, "request rejected", "method", method, "error", err)
	}
	return statusError(err)
}

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateSlot(ctx context.Context, req *CreateSlotRequest) (*SlotResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slot, err := s.slots.CreateSlot(ctx, userID, services.SlotInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.SlotStatus(req.Status),
	})
	if err != nil {
		return nil, s.fail(ctx, "CreateSlot", err)
	}
	return &SlotResponse{Slot: slot}, nil
}

func (s *GRPCServer) ListMySlots(ctx context.Context, req *ListSlotsRequest) (*ListSlotsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.slots.ListOwn(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "ListMySlots", err)
	}
	return &ListSlotsResponse{Slots: res}, nil
}

func (s *GRPCServer) UpdateSlot(ctx context.Context, req *UpdateSlotRequest) (*SlotResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	upd := services.SlotUpdate{Title: req.Title, StartTime: req.StartTime, EndTime: req.EndTime}
	if req.Status != nil {
		st := models.SlotStatus(*req.Status)
		upd.Status = &st
	}

	slot, err := s.slots.UpdateSlot(ctx, userID, req.SlotID, upd)
	if err != nil {
		return nil, s.fail(ctx, "UpdateSlot", err)
	}
	return &SlotResponse{Slot: slot}, nil
}

func (s *GRPCServer) DeleteSlot(ctx context.Context, req *DeleteSlotRequest) (*DeleteSlotResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.slots.DeleteSlot(ctx, userID, req.SlotID); err != nil {
		return nil, s.fail(ctx, "DeleteSlot", err)
	}
	return &DeleteSlotResponse{}, nil
}

func (s *GRPCServer) ListMarketplace(ctx context.Context, req *ListSlotsRequest) (*ListSlotsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.swaps.ListMarketplace(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "ListMarketplace", err)
	}
	return &ListSlotsResponse{Slots: res}, nil
}

func (s *GRPCServer) ProposeSwap(ctx context.Context, req *ProposeSwapRequest) (*ExchangeRequestResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.swaps.ProposeSwap(ctx, userID, req.OfferedSlotID, req.DesiredSlotID)
	if err != nil {
		return nil, s.fail(ctx, "ProposeSwap", err)
	}
	return &ExchangeRequestResponse{Request: res}, nil
}

func (s *GRPCServer) RespondToSwap(ctx context.Context, req *RespondToSwapRequest) (*ExchangeRequestResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.swaps.RespondToSwap(ctx, userID, req.RequestID, req.Accept)
	if err != nil {
		return nil, s.fail(ctx, "RespondToSwap", err)
	}
	return &ExchangeRequestResponse{Request: res}, nil
}

func (s *GRPCServer) ListIncoming(ctx context.Context, req *ListRequestsRequest) (*ListRequestsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.swaps.ListIncoming(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "ListIncoming", err)
	}
	return &ListRequestsResponse{Requests: res}, nil
}

func (s *GRPCServer) ListOutgoing(ctx context.Context, req *ListRequestsRequest) (*ListRequestsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.swaps.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "ListOutgoing", err)
	}
	return &ListRequestsResponse{Requests: res}, nil
}
