package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

// Violation kinds reported by CheckConsistency.
const (
	ViolationLockedUnreferenced = "locked_slot_without_pending_request"
	ViolationMultiplePending    = "slot_in_multiple_pending_requests"
	ViolationMissingSlot        = "pending_request_missing_slot"
	ViolationUnlockedSlot       = "pending_request_unlocked_slot"
	ViolationOwnerMismatch      = "pending_request_owner_mismatch"
)

// Violation is one breach of the lock invariant: a slot is LOCKED exactly
// when one PENDING request references it.
type Violation struct {
	Kind      string
	SlotID    string
	RequestID string
}

// CheckConsistency scans LOCKED slots and PENDING requests in one
// transaction and reports every breach of the lock invariant. It never
// repairs anything.
func (s *SwapService) CheckConsistency(ctx context.Context) ([]Violation, error) {
	var out []Violation

	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		pending, err := s.repomanager.Requests(tx).List(ctx, models.RequestFilter{Status: models.RequestPending})
		if err != nil {
			return err
		}

		refs := make(map[string][]string)
		for _, r := range pending {
			refs[r.OfferedSlotID] = append(refs[r.OfferedSlotID], r.ID)
			refs[r.DesiredSlotID] = append(refs[r.DesiredSlotID], r.ID)
		}

		ids := make([]string, 0, len(refs))
		for id := range refs {
			ids = append(ids, id)
		}
		referenced, err := s.repomanager.Slots(tx).List(ctx, models.SlotFilter{IDs: ids})
		if err != nil {
			return err
		}
		byID := make(map[string]*models.Slot, len(referenced))
		for _, sl := range referenced {
			byID[sl.ID] = sl
		}

		for _, r := range pending {
			sides := []struct{ slotID, owner string }{
				{r.OfferedSlotID, r.RequesterID},
				{r.DesiredSlotID, r.RecipientID},
			}
			for _, side := range sides {
				sl, ok := byID[side.slotID]
				switch {
				case !ok:
					out = append(out, Violation{Kind: ViolationMissingSlot, SlotID: side.slotID, RequestID: r.ID})
				case sl.Status != models.SlotLocked:
					out = append(out, Violation{Kind: ViolationUnlockedSlot, SlotID: sl.ID, RequestID: r.ID})
				case sl.OwnerID != side.owner:
					out = append(out, Violation{Kind: ViolationOwnerMismatch, SlotID: sl.ID, RequestID: r.ID})
				}
			}
		}

		for id, reqIDs := range refs {
			if len(reqIDs) > 1 {
				for _, rid := range reqIDs {
					out = append(out, Violation{Kind: ViolationMultiplePending, SlotID: id, RequestID: rid})
				}
			}
		}

		locked, err := s.repomanager.Slots(tx).List(ctx, models.SlotFilter{Status: models.SlotLocked})
		if err != nil {
			return err
		}
		for _, sl := range locked {
			if len(refs[sl.ID]) == 0 {
				out = append(out, Violation{Kind: ViolationLockedUnreferenced, SlotID: sl.ID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortViolations(out)
	for _, v := range out {
		s.logger.Error(ctx, "lock invariant violated", "kind", v.Kind, "slot", v.SlotID, "request_id", v.RequestID)
	}
	return out, nil
}

func sortViolations(v []Violation) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Kind != v[j].Kind {
			return v[i].Kind < v[j].Kind
		}
		if v[i].SlotID != v[j].SlotID {
			return v[i].SlotID < v[j].SlotID
		}
		return v[i].RequestID < v[j].RequestID
	})
}
