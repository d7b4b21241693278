package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/logging"
	sc "github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SlotInput describes a new slot. An empty Status means BUSY.
type SlotInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Status    models.SlotStatus
}

// SlotUpdate is a partial edit; nil fields keep their value.
type SlotUpdate struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *models.SlotStatus
}

// SlotService lets owners manage their own slots. It never enters or
// leaves LOCKED; that is the swap engine's job.
type SlotService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tx          txRunner
	logger      logging.Logger
	now         func() time.Time
}

func NewSlotService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *SlotService {
	return &SlotService{
		db:          db,
		repomanager: repomanager,
		tx:          txRunner{db: db, repos: repomanager, timeout: config.TxTimeout},
		logger:      logger.With("module", "slot_service"),
		now:         utcNow,
	}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end time are required", common.ErrorInvalidRequest)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", common.ErrorInvalidRequest)
	}
	return nil
}

func validateOwnerStatus(st models.SlotStatus) error {
	if !st.OwnerSettable() {
		return fmt.Errorf("%w: status must be %s or %s", common.ErrorInvalidRequest, models.SlotBusy, models.SlotOffered)
	}
	return nil
}

// CreateSlot stores a new slot owned by ownerID.
func (s *SlotService) CreateSlot(ctx context.Context, ownerID string, in SlotInput) (*models.Slot, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorInvalidRequest)
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.SlotBusy
	}
	if err := validateOwnerStatus(status); err != nil {
		return nil, err
	}

	now := s.now()
	slot := &models.Slot{
		ID:        uuid.NewString(),
		Title:     title,
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		OwnerID:   ownerID,
		Status:    status,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Slots(tx).Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "slot created", "slot", slot.ID, "owner", ownerID, "status", slot.Status)
	return slot, nil
}

// ListOwn returns the slots of ownerID ordered by start time.
func (s *SlotService) ListOwn(ctx context.Context, ownerID string) ([]*models.Slot, error) {
	res, err := s.repomanager.Slots(s.db).List(ctx, models.SlotFilter{OwnerID: ownerID})
	if err != nil {
		return nil, s.tx.classify(err)
	}
	return res, nil
}

// ownedUnlocked loads a slot for writing and checks that ownerID may edit it.
func ownedUnlocked(ctx context.Context, tx dbx.DBTX, m repomanager.RepositoryManager, ownerID, slotID string) (*models.Slot, error) {
	locked, err := lockSlots(ctx, m.Slots(tx), slotID)
	if err != nil {
		return nil, err
	}
	slot := locked[slotID]
	if slot.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: slot %s is not yours", common.ErrorForbidden, slotID)
	}
	if slot.Status == models.SlotLocked {
		return nil, fmt.Errorf("%w: slot %s is locked by a pending swap", common.ErrorInvalidState, slotID)
	}
	return slot, nil
}

// UpdateSlot edits title, times or the BUSY/OFFERED status of an unlocked
// slot. An update that changes nothing returns the slot as stored.
func (s *SlotService) UpdateSlot(ctx context.Context, ownerID, slotID string, upd SlotUpdate) (*models.Slot, error) {
	var result *models.Slot

	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		slot, err := ownedUnlocked(ctx, tx, s.repomanager, ownerID, slotID)
		if err != nil {
			return err
		}

		patch := models.SlotPatch{ExpectedVersion: slot.Version, UpdatedAt: s.now()}
		if upd.Title != nil {
			title := strings.TrimSpace(*upd.Title)
			if title == "" {
				return fmt.Errorf("%w: title is required", common.ErrorInvalidRequest)
			}
			patch.Title = &title
		}
		if upd.Status != nil {
			if err := validateOwnerStatus(*upd.Status); err != nil {
				return err
			}
			patch.Status = upd.Status
		}
		start, end := slot.StartTime, slot.EndTime
		if upd.StartTime != nil {
			start = upd.StartTime.UTC()
			patch.StartTime = &start
		}
		if upd.EndTime != nil {
			end = upd.EndTime.UTC()
			patch.EndTime = &end
		}
		if err := validateRange(start, end); err != nil {
			return err
		}

		if patch.Empty() {
			result = slot
			return nil
		}
		result, err = s.repomanager.Slots(tx).UpdateFields(ctx, slot.ID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteSlot removes an unlocked slot. Requests that mention it are kept.
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID, slotID string) error {
	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		slot, err := ownedUnlocked(ctx, tx, s.repomanager, ownerID, slotID)
		if err != nil {
			return err
		}
		return s.repomanager.Slots(tx).Delete(ctx, slot.ID, slot.Version)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "slot deleted", "slot", slotID, "owner", ownerID)
	return nil
}
