package slots

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

var pgColumns = []string{"id", "title", "start_time", "end_time", "owner_id", "status", "version", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func slotRow(id, owner, status string, version int64) *sqlmock.Rows {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(pgColumns).
		AddRow(id, "standup", start, start.Add(time.Hour), owner, status, version, start, start)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+slots\s+\(id, title, .*\)\s+VALUES\s+\(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\)$`).
		WithArgs("s1", "standup", start, start.Add(time.Hour), "u1", "BUSY", int64(1), start, start).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Slot{
		ID: "s1", Title: "standup", StartTime: start, EndTime: start.Add(time.Hour),
		OwnerID: "u1", Status: models.SlotBusy, Version: 1, CreatedAt: start, UpdatedAt: start,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO slots`).WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), &models.Slot{ID: "s1", Status: models.SlotBusy})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT id, title, .* FROM slots WHERE id = \$1 FOR UPDATE$`).
		WithArgs("s1").
		WillReturnRows(slotRow("s1", "u1", "OFFERED", 4))

	s, err := repo.GetForUpdate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != models.SlotOffered || s.Version != 4 || s.OwnerID != "u1" {
		t.Fatalf("unexpected slot: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT .* FROM slots WHERE id = \$1$`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGet_CorruptStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM slots WHERE id = \$1`).
		WithArgs("s1").
		WillReturnRows(slotRow("s1", "u1", "SWAP_PENDING", 1))

	_, err := repo.Get(context.Background(), "s1")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected corrupt row error, got %v", err)
	}
}

func TestUpdateFields_CompareAndSwap(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	owner := "u2"
	status := models.SlotBusy
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^UPDATE slots SET owner_id = \$1, status = \$2, version = version \+ 1, updated_at = \$3\s+WHERE id = \$4 AND version = \$5\s+RETURNING id, title`).
		WithArgs("u2", "BUSY", now, "s1", int64(3)).
		WillReturnRows(slotRow("s1", "u2", "BUSY", 4))

	s, err := repo.UpdateFields(context.Background(), "s1", models.SlotPatch{
		OwnerID: &owner, Status: &status, ExpectedVersion: 3, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OwnerID != "u2" || s.Version != 4 {
		t.Fatalf("unexpected slot: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateFields_VersionConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	status := models.SlotLocked
	mock.ExpectQuery(`^UPDATE slots SET`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`^SELECT 1 FROM slots WHERE id = \$1$`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	_, err := repo.UpdateFields(context.Background(), "s1", models.SlotPatch{Status: &status, ExpectedVersion: 1})
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
}

func TestUpdateFields_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	status := models.SlotLocked
	mock.ExpectQuery(`^UPDATE slots SET`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`^SELECT 1 FROM slots`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateFields(context.Background(), "s1", models.SlotPatch{Status: &status, ExpectedVersion: 1})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM slots WHERE id = \$1 AND version = \$2$`).
		WithArgs("s1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM slots`).
		WithArgs("s1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT 1 FROM slots`).WillReturnError(sql.ErrNoRows)

	if err := repo.Delete(context.Background(), "s1", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), "s1", 2); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_Marketplace(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := slotRow("s1", "u2", "OFFERED", 1)
	mock.ExpectQuery(`(?s)^SELECT .* FROM slots WHERE owner_id <> \$1 AND status = \$2 ORDER BY start_time, id$`).
		WithArgs("u1", "OFFERED").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), models.SlotFilter{ExcludeOwnerID: "u1", Status: models.SlotOffered})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestList_IDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE id IN \(\$1, \$2\) ORDER BY`).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows(pgColumns))

	got, err := repo.List(context.Background(), models.SlotFilter{IDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}

	// an empty, non-nil id set matches nothing without a round trip
	got, err = repo.List(context.Background(), models.SlotFilter{IDs: []string{}})
	if err != nil || len(got) != 0 {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM slots`).WillReturnError(errors.New("boom"))

	if _, err := repo.List(context.Background(), models.SlotFilter{}); err == nil {
		t.Fatal("expected error")
	}
}
