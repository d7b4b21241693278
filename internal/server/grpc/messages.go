package grpc

import (
	"time"

	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type CreateSlotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// Status is BUSY (default) or OFFERED.
	Status string `json:"status,omitempty"`
}

// UpdateSlotRequest edits the fields that are present.
type UpdateSlotRequest struct {
	SlotID    string     `json:"slot_id"`
	Title     *string    `json:"title,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

type DeleteSlotRequest struct {
	SlotID string `json:"slot_id"`
}

type DeleteSlotResponse struct{}

type SlotResponse struct {
	Slot *models.Slot `json:"slot"`
}

type ListSlotsRequest struct{}

type ListSlotsResponse struct {
	Slots []*models.Slot `json:"slots"`
}

type ProposeSwapRequest struct {
	OfferedSlotID string `json:"offered_slot_id"`
	DesiredSlotID string `json:"desired_slot_id"`
}

type RespondToSwapRequest struct {
	RequestID string `json:"request_id"`
	Accept    bool   `json:"accept"`
}

type ExchangeRequestResponse struct {
	Request *models.ExchangeRequest `json:"request"`
}

type ListRequestsRequest struct{}

// ListRequestsResponse lists requests with the title and times of both
// slots so a recipient can judge an offer.
type ListRequestsResponse struct {
	Requests []*models.RequestView `json:"requests"`
}
