package runs

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mmrzaf/datacraft/internal/domain"
)

func newMockPostgres(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	repo := NewPostgresRepository("postgres://u@localhost/db")
	repo.db = db
	t.Cleanup(func() { _ = db.Close() })
	return repo, mock
}

func TestPostgresCreateUsesNumberedPlaceholders(t *testing.T) {
	repo, mock := newMockPostgres(t)

	args := make([]driver.Value, 14)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs (") + `.*VALUES \(\$1, \$2, .*\$14\)`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := &domain.Run{Source: "api", Status: domain.RunStatusRunning, StartedAt: time.Now()}
	if err := repo.Create(run); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectQuery(`SELECT .* FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresListFilters(t *testing.T) {
	repo, mock := newMockPostgres(t)
	cols := []string{"id", "source", "schema_hash", "config_hash", "seed", "locale", "count", "format",
		"output", "status", "started_at", "completed_at", "stats", "error"}
	mock.ExpectQuery(`SELECT .* FROM runs WHERE status = \$1 ORDER BY started_at DESC LIMIT \$2`).
		WithArgs("failed", 5).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"r1", "custom", "h1", "h2", int64(9), "en", 3, "json",
			nil, "failed", "2024-01-01T00:00:00.000000000Z", nil, nil, "boom",
		))

	runs, err := repo.List(5, "failed")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Error != "boom" || runs[0].Seed != 9 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
