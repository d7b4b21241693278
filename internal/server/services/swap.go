package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/logging"
	sc "github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SwapService is the swap transaction engine. It holds no mutable state and
// is safe for concurrent use.
type SwapService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tx          txRunner
	sink        ReceiptSink
	logger      logging.Logger
	now         func() time.Time
}

// NewSwapService constructs the engine. sink may be nil.
func NewSwapService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config,
	logger logging.Logger, sink ReceiptSink) *SwapService {
	return &SwapService{
		db:          db,
		repomanager: repomanager,
		tx:          txRunner{db: db, repos: repomanager, timeout: config.TxTimeout},
		sink:        sink,
		logger:      logger.With("module", "swap_service"),
		now:         utcNow,
	}
}

// ProposeSwap creates a PENDING request offering offeredSlotID (owned by
// requesterID) for desiredSlotID and locks both slots, all in one
// transaction. Preconditions are checked in order and the first violation is
// returned before anything is written.
func (s *SwapService) ProposeSwap(ctx context.Context, requesterID, offeredSlotID, desiredSlotID string) (*models.ExchangeRequest, error) {
	var created *models.ExchangeRequest

	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		slotRepo := s.repomanager.Slots(tx)

		locked, err := lockSlots(ctx, slotRepo, offeredSlotID, desiredSlotID)
		if err != nil {
			return err
		}
		offered, desired := locked[offeredSlotID], locked[desiredSlotID]

		if offered.OwnerID != requesterID {
			return fmt.Errorf("%w: slot %s is not yours", common.ErrorForbidden, offered.ID)
		}
		if offered.Status != models.SlotOffered || desired.Status != models.SlotOffered {
			return fmt.Errorf("%w: both slots must be %s (offered is %s, desired is %s)",
				common.ErrorInvalidState, models.SlotOffered, offered.Status, desired.Status)
		}
		if offeredSlotID == desiredSlotID {
			return fmt.Errorf("%w: cannot swap a slot for itself", common.ErrorInvalidRequest)
		}
		if desired.OwnerID == requesterID {
			return fmt.Errorf("%w: desired slot is already yours", common.ErrorInvalidRequest)
		}

		now := s.now()
		req := &models.ExchangeRequest{
			ID:            uuid.NewString(),
			RequesterID:   requesterID,
			RecipientID:   desired.OwnerID,
			OfferedSlotID: offered.ID,
			DesiredSlotID: desired.ID,
			Status:        models.RequestPending,
			CreatedAt:     now,
		}
		if err := s.repomanager.Requests(tx).Create(ctx, req); err != nil {
			return err
		}

		status := models.SlotLocked
		for _, sl := range []*models.Slot{offered, desired} {
			if _, err := slotRepo.UpdateFields(ctx, sl.ID, models.SlotPatch{
				Status: &status, ExpectedVersion: sl.Version, UpdatedAt: now,
			}); err != nil {
				return err
			}
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "swap proposed",
		"request_id", created.ID, "requester", created.RequesterID, "recipient", created.RecipientID,
		"offered_slot", created.OfferedSlotID, "desired_slot", created.DesiredSlotID)
	return created, nil
}

// RespondToSwap resolves a PENDING request. Accepting exchanges the owners
// of both slots and marks them BUSY; rejecting returns them to OFFERED.
// Either way no slot is left LOCKED and the request reaches a terminal
// status exactly once.
func (s *SwapService) RespondToSwap(ctx context.Context, responderID, requestID string, accept bool) (*models.ExchangeRequest, error) {
	var receipt Receipt

	err := s.tx.run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		reqRepo := s.repomanager.Requests(tx)
		slotRepo := s.repomanager.Slots(tx)

		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			if common.KindOf(err) == common.KindNotFound {
				return fmt.Errorf("%w: request %s", common.ErrorNotFound, requestID)
			}
			return err
		}
		if req.RecipientID != responderID {
			return fmt.Errorf("%w: only the recipient may respond", common.ErrorForbidden)
		}
		if req.Status != models.RequestPending {
			return fmt.Errorf("%w: request already %s", common.ErrorConflict, req.Status)
		}

		locked, err := lockSlots(ctx, slotRepo, req.OfferedSlotID, req.DesiredSlotID)
		if err != nil {
			if common.KindOf(err) == common.KindNotFound {
				s.logger.Error(ctx, "pending request references a missing slot",
					"request_id", req.ID, "offered_slot", req.OfferedSlotID, "desired_slot", req.DesiredSlotID, "error", err)
				return fmt.Errorf("%w: request %s references a missing slot", common.ErrorInconsistent, req.ID)
			}
			return err
		}
		offered, desired := locked[req.OfferedSlotID], locked[req.DesiredSlotID]

		now := s.now()
		if accept {
			offered, desired, err = s.exchange(ctx, slotRepo, req, offered, desired, now)
		} else {
			offered, desired, err = s.release(ctx, slotRepo, req, offered, desired, now)
		}
		if err != nil {
			return err
		}

		final := models.RequestRejected
		if accept {
			final = models.RequestAccepted
		}
		req, err = reqRepo.UpdateFields(ctx, req.ID, models.RequestPatch{
			Status: final, RespondedAt: &now, ExpectStatus: models.RequestPending,
		})
		if err != nil {
			return err
		}

		receipt = Receipt{Request: req, Offered: offered, Desired: desired}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "swap resolved", "request_id", receipt.Request.ID, "status", receipt.Request.Status)
	if s.sink != nil {
		s.sink.Enqueue(ctx, receipt)
	}
	return receipt.Request, nil
}

type slotUpdater interface {
	UpdateFields(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error)
}

// exchange transfers ownership. It refuses to move anything unless both
// slots are still LOCKED and owned by the two request parties.
func (s *SwapService) exchange(ctx context.Context, repo slotUpdater, req *models.ExchangeRequest,
	offered, desired *models.Slot, now time.Time) (*models.Slot, *models.Slot, error) {

	if offered.Status != models.SlotLocked || desired.Status != models.SlotLocked ||
		offered.OwnerID != req.RequesterID || desired.OwnerID != req.RecipientID {
		s.logger.Error(ctx, "pending request does not match its slots",
			"request_id", req.ID,
			"offered_slot", offered.ID, "offered_status", offered.Status, "offered_owner", offered.OwnerID,
			"desired_slot", desired.ID, "desired_status", desired.Status, "desired_owner", desired.OwnerID)
		return nil, nil, fmt.Errorf("%w: slots of request %s are not locked by it", common.ErrorInconsistent, req.ID)
	}

	busy := models.SlotBusy
	newOffered, err := repo.UpdateFields(ctx, offered.ID, models.SlotPatch{
		OwnerID: &req.RecipientID, Status: &busy, ExpectedVersion: offered.Version, UpdatedAt: now,
	})
	if err != nil {
		return nil, nil, err
	}
	newDesired, err := repo.UpdateFields(ctx, desired.ID, models.SlotPatch{
		OwnerID: &req.RequesterID, Status: &busy, ExpectedVersion: desired.Version, UpdatedAt: now,
	})
	if err != nil {
		return nil, nil, err
	}
	return newOffered, newDesired, nil
}

// release puts LOCKED slots back on offer. A slot that is not LOCKED any
// more is left as it is.
func (s *SwapService) release(ctx context.Context, repo slotUpdater, req *models.ExchangeRequest,
	offered, desired *models.Slot, now time.Time) (*models.Slot, *models.Slot, error) {

	out := make([]*models.Slot, 0, 2)
	status := models.SlotOffered
	for _, sl := range []*models.Slot{offered, desired} {
		if sl.Status != models.SlotLocked {
			s.logger.Warn(ctx, "rejected request references an unlocked slot",
				"request_id", req.ID, "slot", sl.ID, "status", sl.Status)
			out = append(out, sl)
			continue
		}
		updated, err := repo.UpdateFields(ctx, sl.ID, models.SlotPatch{
			Status: &status, ExpectedVersion: sl.Version, UpdatedAt: now,
		})
		if err != nil {
			return nil, nil, err
		}
		out = append(out, updated)
	}
	return out[0], out[1], nil
}

// ListMarketplace returns every OFFERED slot not owned by excludeOwnerID,
// ordered by start time. It reads the store on every call.
func (s *SwapService) ListMarketplace(ctx context.Context, excludeOwnerID string) ([]*models.Slot, error) {
	res, err := s.repomanager.Slots(s.db).List(ctx, models.SlotFilter{
		ExcludeOwnerID: excludeOwnerID,
		Status:         models.SlotOffered,
	})
	if err != nil {
		return nil, s.tx.classify(err)
	}
	return res, nil
}

// ListIncoming returns the PENDING requests addressed to userID, newest
// first, each with both of its slots.
func (s *SwapService) ListIncoming(ctx context.Context, userID string) ([]*models.RequestView, error) {
	return s.listRequests(ctx, models.RequestFilter{
		RecipientID: userID,
		Status:      models.RequestPending,
		NewestFirst: true,
	})
}

// ListOutgoing returns every request userID has made, newest first, each
// with both of its slots.
func (s *SwapService) ListOutgoing(ctx context.Context, userID string) ([]*models.RequestView, error) {
	return s.listRequests(ctx, models.RequestFilter{
		RequesterID: userID,
		NewestFirst: true,
	})
}

// listRequests loads the matching requests and then all slots they name in
// a single query. A slot deleted after the request was resolved shows up as
// a nil summary.
func (s *SwapService) listRequests(ctx context.Context, f models.RequestFilter) ([]*models.RequestView, error) {
	reqs, err := s.repomanager.Requests(s.db).List(ctx, f)
	if err != nil {
		return nil, s.tx.classify(err)
	}

	ids := make([]string, 0, 2*len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.OfferedSlotID, r.DesiredSlotID)
	}
	found, err := s.repomanager.Slots(s.db).List(ctx, models.SlotFilter{IDs: ids})
	if err != nil {
		return nil, s.tx.classify(err)
	}
	byID := make(map[string]*models.Slot, len(found))
	for _, sl := range found {
		byID[sl.ID] = sl
	}

	views := make([]*models.RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, &models.RequestView{
			ExchangeRequest: *r,
			Offered:         byID[r.OfferedSlotID].Summary(),
			Desired:         byID[r.DesiredSlotID].Summary(),
		})
	}
	return views, nil
}
