package models

import (
	"fmt"
	"time"
)

// RequestStatus is the closed set of exchange request states. ACCEPTED and
// REJECTED are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

func ParseRequestStatus(v string) (RequestStatus, error) {
	s := RequestStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown request status %q", v)
	}
	return s, nil
}

// ExchangeRequest is a proposal to trade OfferedSlotID (owned by the
// requester) for DesiredSlotID (owned by the recipient).
type ExchangeRequest struct {
	ID            string        `json:"id"`
	RequesterID   string        `json:"requester_id"`
	RecipientID   string        `json:"recipient_id"`
	OfferedSlotID string        `json:"offered_slot_id"`
	DesiredSlotID string        `json:"desired_slot_id"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	RespondedAt   *time.Time    `json:"responded_at,omitempty"`
}

// References reports whether the request points at slotID on either side.
func (r *ExchangeRequest) References(slotID string) bool {
	return r.OfferedSlotID == slotID || r.DesiredSlotID == slotID
}

// RequestPatch moves a request to Status. It only applies while the stored
// status equals ExpectStatus.
type RequestPatch struct {
	Status       RequestStatus
	RespondedAt  *time.Time
	ExpectStatus RequestStatus
}

// RequestFilter narrows a request listing. Zero fields do not filter.
// SlotID matches either side of the request.
type RequestFilter struct {
	RequesterID string
	RecipientID string
	SlotID      string
	Status      RequestStatus
	// NewestFirst orders by creation time descending; default is ascending.
	NewestFirst bool
}

// SlotSummary is what a party sees of a slot named in a request.
type SlotSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	OwnerID   string     `json:"owner_id"`
	Status    SlotStatus `json:"status"`
}

// Summary returns nil for a nil slot.
func (s *Slot) Summary() *SlotSummary {
	if s == nil {
		return nil
	}
	return &SlotSummary{
		ID:        s.ID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		OwnerID:   s.OwnerID,
		Status:    s.Status,
	}
}

// RequestView is a request listed together with its two slots. Offered or
// Desired is nil when that slot has been deleted since.
type RequestView struct {
	ExchangeRequest
	Offered *SlotSummary `json:"offered"`
	Desired *SlotSummary `json:"desired"`
}
