package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

const requestColumns = `id, requester_id, recipient_id, offered_slot_id, desired_slot_id, status, created_at, responded_at`

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.Postgres)
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.SQLite)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.ExchangeRequest, error) {
	var (
		r         models.ExchangeRequest
		status    string
		responded sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.RequesterID, &r.RecipientID, &r.OfferedSlotID, &r.DesiredSlotID,
		&status, &r.CreatedAt, &responded); err != nil {
		return nil, err
	}
	st, err := models.ParseRequestStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt request %s: %w", r.ID, err)
	}
	r.Status = st
	r.CreatedAt = r.CreatedAt.UTC()
	if responded.Valid {
		t := responded.Time.UTC()
		r.RespondedAt = &t
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *SQLRepository) Create(ctx context.Context, req *models.ExchangeRequest) error {
	query := r.dialect.Rebind(
		`INSERT INTO exchange_requests (` + requestColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.RequesterID, req.RecipientID, req.OfferedSlotID, req.DesiredSlotID,
		string(req.Status), req.CreatedAt.UTC(), nullTime(req.RespondedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.ExchangeRequest, error) {
	return r.get(ctx, id, false)
}

func (r *SQLRepository) GetForUpdate(ctx context.Context, id string) (*models.ExchangeRequest, error) {
	return r.get(ctx, id, true)
}

func (r *SQLRepository) get(ctx context.Context, id string, lock bool) (*models.ExchangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM exchange_requests WHERE id = ?`
	if lock {
		query = r.dialect.ForUpdate(query)
	}

	req, err := scanRequest(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

func (r *SQLRepository) UpdateFields(ctx context.Context, id string, patch models.RequestPatch) (*models.ExchangeRequest, error) {
	query := r.dialect.Rebind(
		`UPDATE exchange_requests SET status = ?, responded_at = ?
		 WHERE id = ? AND status = ?
		 RETURNING ` + requestColumns)

	req, err := scanRequest(r.db.QueryRowContext(ctx, query,
		string(patch.Status), nullTime(patch.RespondedAt), id, string(patch.ExpectStatus)))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT 1 FROM exchange_requests WHERE id = ?`), id).Scan(&one)
	switch {
	case err == nil:
		return nil, common.ErrVersionConflict
	case errors.Is(err, sql.ErrNoRows):
		return nil, common.ErrorNotFound
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

func (r *SQLRepository) List(ctx context.Context, f models.RequestFilter) ([]*models.ExchangeRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.RequesterID != "" {
		where = append(where, "requester_id = ?")
		args = append(args, f.RequesterID)
	}
	if f.RecipientID != "" {
		where = append(where, "recipient_id = ?")
		args = append(args, f.RecipientID)
	}
	if f.SlotID != "" {
		where = append(where, "(offered_slot_id = ? OR desired_slot_id = ?)")
		args = append(args, f.SlotID, f.SlotID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + requestColumns + ` FROM exchange_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.NewestFirst {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at, id`
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select requests: %w", err)
	}
	defer rows.Close()

	result := []*models.ExchangeRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
