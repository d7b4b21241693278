// Package slots stores slots behind a dbx.DBTX, so the same repository works
// on the pool and inside a transaction.
package slots

import (
	"context"

	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

// Repository abstracts slot persistence.
type Repository interface {
	// Create inserts a new slot. The caller fills every field.
	Create(ctx context.Context, slot *models.Slot) error
	// Get returns the slot or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Slot, error)
	// GetForUpdate is Get that holds a write lock on the row until the
	// surrounding transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id string) (*models.Slot, error)
	// UpdateFields applies patch if the stored version still equals
	// patch.ExpectedVersion and returns the new row. A stale version yields
	// common.ErrVersionConflict, a missing row common.ErrorNotFound.
	UpdateFields(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error)
	// Delete removes the slot under the same version check as UpdateFields.
	Delete(ctx context.Context, id string, expectedVersion int64) error
	// List returns the slots matching f ordered by start time, then id.
	List(ctx context.Context, f models.SlotFilter) ([]*models.Slot, error)
}
