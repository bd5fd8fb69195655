package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func strptr(s string) *string { return &s }

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+tasks\s*\(user_id,\s*title,\s*description,\s*status\)`

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("t-1", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", "t1", strptr("desc"), models.TaskStatusPending).
		WillReturnRows(rows)

	task := &models.Task{UserID: "u-1", Title: "t1", Description: strptr("desc"), Status: models.TaskStatusPending}
	got, err := repo.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "t-1" || got.Status != models.TaskStatusPending {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGetByID_ScopedByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*title,\s*description,\s*status,\s*created_at\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	// Row exists for another owner; scoped query matches nothing.
	mock.ExpectQuery(q).
		WithArgs("t-1", "u-intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u-intruder", "t-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_NoFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*title,\s*description,\s*status,\s*created_at\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3\s*$`

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "status", "created_at"}).
		AddRow("t-2", "u-1", "newer", nil, "PENDING", time.Now()).
		AddRow("t-1", "u-1", "older", nil, "COMPLETED", time.Now().Add(-time.Hour))
	mock.ExpectQuery(q).
		WithArgs("u-1", 10, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u-1", ListFilter{Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestList_StatusAndSearchFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2\s+AND\s+title\s+LIKE\s+'%'\s*\|\|\s*\$3\s*\|\|\s*'%'\s+ESCAPE\s+'\\'\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$4\s+OFFSET\s+\$5\s*$`

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "status", "created_at"}).
		AddRow("t-3", "u-1", "groceries", nil, "PENDING", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", models.TaskStatusPending, "grocer", 5, 5).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u-1", ListFilter{
		Status: models.TaskStatusPending,
		Search: "grocer",
		Limit:  5,
		Offset: 5,
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "groceries" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestList_SearchMatchesMetacharactersLiterally(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)LIKE\s+'%'\s*\|\|\s*\$2\s*\|\|\s*'%'\s+ESCAPE\s+'\\'`

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "status", "created_at"}).
		AddRow("t-4", "u-1", "50% done_or_so", nil, "PENDING", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", `50\% done\_or\_so`, 10, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u-1", ListFilter{Search: "50% done_or_so", Limit: 10})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "50% done_or_so" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCount_WithStatusFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2\s*$`

	mock.ExpectQuery(q).
		WithArgs("u-1", models.TaskStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), "u-1", ListFilter{Status: models.TaskStatusCompleted})
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != 7 {
		t.Fatalf("want 7, got %d", total)
	}
}

func TestUpdate_NotFoundForOtherOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+tasks\s+SET\s+title\s*=\s*\$1,\s*description\s*=\s*\$2,\s*status\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4\s+AND\s+user_id\s*=\s*\$5`

	mock.ExpectQuery(q).
		WithArgs("t", nil, models.TaskStatusPending, "t-1", "u-other").
		WillReturnError(sql.ErrNoRows)

	task := &models.Task{ID: "t-1", UserID: "u-other", Title: "t", Status: models.TaskStatusPending}
	_, err := repo.Update(context.Background(), task)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1", "t-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("t-gone", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-1", "t-gone")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
