// Package services implements the slot swap engine and slot management on
// top of the repositories. Every mutating call runs in one transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/slots"
)

// txRunner runs units of work inside a bounded transaction and reports
// storage failures in the engine's error taxonomy.
type txRunner struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	timeout time.Duration
}

func (r txRunner) run(ctx context.Context, fn dbx.TxFunc) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.classify(dbx.WithTx(ctx, r.db, r.repos.TxOptions(), fn))
}

// classify keeps domain errors as they are, turns lost races into
// ErrorConflict and wraps everything else as an internal failure.
func (r txRunner) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrVersionConflict),
		r.repos.IsContention(err),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", common.ErrorConflict, err)
	case common.IsDomain(err):
		return err
	default:
		return fmt.Errorf("storage failure: %w", err)
	}
}

// lockSlots reads the given slots with row locks, always in ascending id
// order so that two transactions never wait on each other crosswise.
func lockSlots(ctx context.Context, repo slots.Repository, ids ...string) (map[string]*models.Slot, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	res := make(map[string]*models.Slot, len(sorted))
	for _, id := range sorted {
		if _, ok := res[id]; ok {
			continue
		}
		s, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, fmt.Errorf("%w: slot %s", common.ErrorNotFound, id)
			}
			return nil, err
		}
		res[id] = s
	}
	return res, nil
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
