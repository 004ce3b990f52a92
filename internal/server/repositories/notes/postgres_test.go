package notes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var noteColumns = []string{"id", "user_id", "title", "content", "summary", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func badUUID() error {
	return &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}
}

func TestList_OrdersByCreatedAtAndScopesOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*user_id,\s*title,\s*content,\s*summary,\s*created_at\s+FROM\s+notes\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s*$`

	now := time.Now()
	rows := sqlmock.NewRows(noteColumns).
		AddRow("n2", "u1", "Second", "b", "short", now).
		AddRow("n1", "u1", "First", "a", nil, now.Add(-time.Hour))
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "n2" || got[1].ID != "n1" {
		t.Fatalf("unexpected notes: %+v", got)
	}
	if got[0].Summary == nil || *got[0].Summary != "short" {
		t.Fatalf("summary not scanned: %+v", got[0])
	}
	if got[1].Summary != nil {
		t.Fatalf("NULL summary should stay nil, got %q", *got[1].Summary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(noteColumns))

	got, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`
	rows := sqlmock.NewRows(noteColumns).AddRow("n1", "u1", "Groceries", "milk, eggs, bread", "buy food", time.Now())
	mock.ExpectQuery(q).WithArgs("n1", "u1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Title != "Groceries" || got.UserID != "u1" {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no rows", err: sql.ErrNoRows},
		{name: "malformed id", err: badUUID()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(`SELECT`).WithArgs("unknown-id", "u1").WillReturnError(tt.err)

			_, err := repo.Get(context.Background(), "u1", "unknown-id")
			if !errors.Is(err, common.ErrorNotFound) {
				t.Fatalf("want common.ErrorNotFound, got %v", err)
			}
		})
	}
}

func TestCreate_ReturnsAssignedFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+notes\s*\(user_id,\s*title,\s*content,\s*summary\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := "dairy and bakery"
	mock.ExpectQuery(q).
		WithArgs("u1", "Groceries", "milk, eggs, bread", summary).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("n1", created))

	got, err := repo.Create(context.Background(), &models.Note{UserID: "u1", Title: "Groceries", Content: "milk, eggs, bread", Summary: &summary})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "n1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Note{UserID: "u1", Title: "t", Content: "c"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateSummary(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+notes\s+SET\s+summary\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s+RETURNING\s+id,.*created_at\s*$`
	rows := sqlmock.NewRows(noteColumns).AddRow("n1", "u1", "t", "c", "fresh", time.Now())
	mock.ExpectQuery(q).WithArgs("fresh", "n1", "u1").WillReturnRows(rows)

	got, err := repo.UpdateSummary(context.Background(), "u1", "n1", "fresh")
	if err != nil {
		t.Fatalf("UpdateSummary error: %v", err)
	}
	if got.Summary == nil || *got.Summary != "fresh" {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestUpdateSummary_OtherOwnerIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE`).WithArgs("s", "n1", "u2").WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateSummary(context.Background(), "u2", "n1", "s")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	q := `(?s)^\s*DELETE\s+FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	t.Run("missing row is not an error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("n1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.Delete(context.Background(), "u1", "n1"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	})

	t.Run("malformed id is a no-op", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("nope", "u1").WillReturnError(badUUID())

		if err := repo.Delete(context.Background(), "u1", "nope"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	})

	t.Run("db error propagates", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("n1", "u1").WillReturnError(errors.New("db down"))

		err := repo.Delete(context.Background(), "u1", "n1")
		if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
			t.Fatalf("expected wrapped db error, got %v", err)
		}
	})
}
