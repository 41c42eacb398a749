package runs

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmrzaf/datacraft/internal/domain"
)

// timestamps are stored as fixed-width UTC text so they sort as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, source, schema_hash, config_hash, seed, locale, count, format,
		output, status, started_at, completed_at, stats, error`

// store holds the SQL shared by both dialects; placeholder renders the
// n-th (1-based) bind parameter.
type store struct {
	db          *sql.DB
	placeholder func(n int) string
}

func (s *store) binds(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}

func (s *store) migrate(migrations []string) error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var cur int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&cur); err != nil {
		return err
	}
	for i, stmt := range migrations {
		v := i + 1
		if cur >= v {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", v, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations(version) VALUES (`+s.placeholder(1)+`)`, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) Create(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `INSERT INTO runs (` + runColumns + `) VALUES (` + s.binds(1, 14) + `)`
	_, err := s.db.Exec(query,
		run.ID, run.Source, run.SchemaHash, run.ConfigHash, run.Seed, run.Locale, run.Count, string(run.Format),
		nullString(run.Output), string(run.Status), formatTime(run.StartedAt), formatTimePtr(run.CompletedAt),
		nullString(string(run.Stats)), nullString(run.Error),
	)
	return err
}

func (s *store) Update(run *domain.Run) error {
	query := fmt.Sprintf(`UPDATE runs SET status = %s, completed_at = %s, output = %s, stats = %s, error = %s WHERE id = %s`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5), s.placeholder(6))
	res, err := s.db.Exec(query,
		string(run.Status), formatTimePtr(run.CompletedAt), nullString(run.Output),
		nullString(string(run.Stats)), nullString(run.Error), run.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

func (s *store) Get(id string) (*domain.Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = `+s.placeholder(1), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (s *store) List(limit int, status string) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`

	args := make([]interface{}, 0)
	if status != "" {
		args = append(args, status)
		query += " WHERE status = " + s.placeholder(len(args))
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT " + s.placeholder(len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var run domain.Run
	var format, status, startedAt string
	var output, completedAt, stats, errStr sql.NullString

	err := sc.Scan(
		&run.ID, &run.Source, &run.SchemaHash, &run.ConfigHash, &run.Seed, &run.Locale, &run.Count, &format,
		&output, &status, &startedAt, &completedAt, &stats, &errStr,
	)
	if err != nil {
		return nil, err
	}

	run.Format = domain.Format(format)
	run.Status = domain.RunStatus(status)
	run.Output = output.String
	run.Error = errStr.String
	run.StartedAt, _ = time.Parse(timeLayout, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(timeLayout, completedAt.String)
		run.CompletedAt = &t
	}
	if stats.Valid && stats.String != "" {
		run.Stats = []byte(stats.String)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
