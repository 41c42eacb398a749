package runs

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
)

func TestInitCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "runs.db")
	repo := NewSQLiteRepository(dbPath)

	if err := repo.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if repo.DB() == nil {
		t.Fatal("expected db handle to be initialized")
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
}

func TestInitIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		repo := NewSQLiteRepository(dbPath)
		if err := repo.Init(); err != nil {
			t.Fatalf("init %d failed: %v", i, err)
		}
		_ = repo.Close()
	}
}

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo := NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err := repo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCreateGetUpdate(t *testing.T) {
	repo := newTestRepo(t)
	started := time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)

	run := &domain.Run{
		Source:     "template:user",
		SchemaHash: "abc",
		ConfigHash: "def",
		Seed:       42,
		Locale:     "de",
		Count:      10,
		Format:     domain.FormatCSV,
		Status:     domain.RunStatusRunning,
		StartedAt:  started,
	}
	if err := repo.Create(run); err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("expected id to be assigned")
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "template:user" || got.Seed != 42 || got.Locale != "de" || got.Format != domain.FormatCSV {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("expected started_at %v, got %v", started, got.StartedAt)
	}
	if got.CompletedAt != nil {
		t.Fatal("expected no completed_at yet")
	}

	done := started.Add(2 * time.Second)
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &done
	run.Output = "out/users.csv"
	run.Stats = json.RawMessage(`{"records":10}`)
	if err := repo.Update(run); err != nil {
		t.Fatal(err)
	}

	got, err = repo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.RunStatusSuccess || got.Output != "out/users.csv" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Fatalf("expected completed_at %v, got %v", done, got.CompletedAt)
	}
	if string(got.Stats) != `{"records":10}` {
		t.Fatalf("unexpected stats %s", got.Stats)
	}
}

func TestGetAndUpdateMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Get("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := repo.Update(&domain.Run{ID: "nope", Status: domain.RunStatusFailed}); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListOrderingAndFilter(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	statuses := []domain.RunStatus{domain.RunStatusSuccess, domain.RunStatusFailed, domain.RunStatusSuccess}
	for i, st := range statuses {
		run := &domain.Run{
			Source:    "custom",
			Status:    st,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(run); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if !all[0].StartedAt.After(all[1].StartedAt) {
		t.Fatal("expected newest run first")
	}

	ok, err := repo.List(1, string(domain.RunStatusSuccess))
	if err != nil {
		t.Fatal(err)
	}
	if len(ok) != 1 || ok[0].Status != domain.RunStatusSuccess {
		t.Fatalf("unexpected filtered list: %+v", ok)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	if _, ok := Open("postgres://u@localhost/db").(*PostgresRepository); !ok {
		t.Fatal("expected postgres repository")
	}
	if _, ok := Open("./runs.sqlite").(*SQLiteRepository); !ok {
		t.Fatal("expected sqlite repository")
	}
}
