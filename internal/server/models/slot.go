// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"time"
)

// SlotStatus is the closed set of states a slot can be in.
type SlotStatus string

const (
	// SlotBusy: owned and not on offer.
	SlotBusy SlotStatus = "BUSY"
	// SlotOffered: the owner has put the slot up for swapping.
	SlotOffered SlotStatus = "OFFERED"
	// SlotLocked: reserved by exactly one pending exchange request.
	SlotLocked SlotStatus = "LOCKED"
)

// Valid reports whether s is one of the known statuses.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotBusy, SlotOffered, SlotLocked:
		return true
	}
	return false
}

// OwnerSettable reports whether an owner may move a slot into s directly.
func (s SlotStatus) OwnerSettable() bool {
	return s == SlotBusy || s == SlotOffered
}

// ParseSlotStatus converts a stored value into a SlotStatus.
func ParseSlotStatus(v string) (SlotStatus, error) {
	s := SlotStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown slot status %q", v)
	}
	return s, nil
}

// Slot is a claimable span of time with exactly one owner.
type Slot struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	OwnerID   string     `json:"owner_id"`
	Status    SlotStatus `json:"status"`
	// Version increases on every write and guards compare-and-swap updates.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotPatch lists the fields to change; nil fields are left alone. The update
// only applies while the stored version equals ExpectedVersion.
type SlotPatch struct {
	Title           *string
	StartTime       *time.Time
	EndTime         *time.Time
	OwnerID         *string
	Status          *SlotStatus
	ExpectedVersion int64
	UpdatedAt       time.Time
}

// Empty reports whether the patch changes nothing.
func (p SlotPatch) Empty() bool {
	return p.Title == nil && p.StartTime == nil && p.EndTime == nil && p.OwnerID == nil && p.Status == nil
}

// SlotFilter narrows a slot listing. Zero fields do not filter.
type SlotFilter struct {
	OwnerID        string
	ExcludeOwnerID string
	Status         SlotStatus
	IDs            []string
}
