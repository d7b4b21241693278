// Package requests stores exchange requests. Requests are never deleted.
package requests

import (
	"context"

	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

// Repository abstracts exchange request persistence.
type Repository interface {
	Create(ctx context.Context, req *models.ExchangeRequest) error
	// Get returns the request or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.ExchangeRequest, error)
	// GetForUpdate is Get holding a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.ExchangeRequest, error)
	// UpdateFields moves the request to patch.Status if its stored status is
	// still patch.ExpectStatus. Otherwise it returns common.ErrVersionConflict
	// (or common.ErrorNotFound when the row is gone).
	UpdateFields(ctx context.Context, id string, patch models.RequestPatch) (*models.ExchangeRequest, error)
	List(ctx context.Context, f models.RequestFilter) ([]*models.ExchangeRequest, error)
}
