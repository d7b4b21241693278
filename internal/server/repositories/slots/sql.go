package slots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/dbx"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

const slotColumns = `id, title, start_time, end_time, owner_id, status, version, created_at, updated_at`

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository constructs a repository for the given dialect.
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

func scanSlot(row rowScanner) (*models.Slot, error) {
	var (
		s      models.Slot
		status string
	)
	if err := row.Scan(&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.OwnerID, &status,
		&s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := models.ParseSlotStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt slot %s: %w", s.ID, err)
	}
	s.Status = st
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func (r *SQLRepository) Create(ctx context.Context, slot *models.Slot) error {
	query := r.dialect.Rebind(
		`INSERT INTO slots (` + slotColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		slot.ID, slot.Title, slot.StartTime.UTC(), slot.EndTime.UTC(), slot.OwnerID, string(slot.Status),
		slot.Version, slot.CreatedAt.UTC(), slot.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Slot, error) {
	return r.get(ctx, id, false)
}

func (r *SQLRepository) GetForUpdate(ctx context.Context, id string) (*models.Slot, error) {
	return r.get(ctx, id, true)
}

func (r *SQLRepository) get(ctx context.Context, id string, lock bool) (*models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	if lock {
		query = r.dialect.ForUpdate(query)
	}

	s, err := scanSlot(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) UpdateFields(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 9)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, patch.StartTime.UTC())
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, patch.EndTime.UTC())
	}
	if patch.OwnerID != nil {
		sets = append(sets, "owner_id = ?")
		args = append(args, *patch.OwnerID)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	sets = append(sets, "version = version + 1", "updated_at = ?")
	args = append(args, patch.UpdatedAt.UTC(), id, patch.ExpectedVersion)

	query := r.dialect.Rebind(
		`UPDATE slots SET ` + strings.Join(sets, ", ") + `
		 WHERE id = ? AND version = ?
		 RETURNING ` + slotColumns)

	s, err := scanSlot(r.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nil, r.missOrConflict(ctx, id)
}

func (r *SQLRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	query := r.dialect.Rebind(`DELETE FROM slots WHERE id = ? AND version = ?`)

	res, err := r.db.ExecContext(ctx, query, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return r.missOrConflict(ctx, id)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// missOrConflict tells a missing row from a stale version after a guarded
// write touched nothing.
func (r *SQLRepository) missOrConflict(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT 1 FROM slots WHERE id = ?`), id).Scan(&one)
	switch {
	case err == nil:
		return common.ErrVersionConflict
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *SQLRepository) List(ctx context.Context, f models.SlotFilter) ([]*models.Slot, error) {
	var (
		where []string
		args  []any
	)
	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.ExcludeOwnerID != "" {
		where = append(where, "owner_id <> ?")
		args = append(args, f.ExcludeOwnerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []*models.Slot{}, nil
		}
		where = append(where, "id IN (?"+strings.Repeat(", ?", len(f.IDs)-1)+")")
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}

	query := `SELECT ` + slotColumns + ` FROM slots`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select slots: %w", err)
	}
	defer rows.Close()

	result := []*models.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
