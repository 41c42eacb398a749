package runs

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		schema_hash TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		seed BIGINT NOT NULL,
		locale TEXT NOT NULL,
		count INTEGER NOT NULL,
		format TEXT,
		output TEXT,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		stats TEXT,
		error TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
}

type PostgresRepository struct {
	store
	dsn string
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{
		dsn:   strings.TrimSpace(dsn),
		store: store{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }},
	}
}

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("runs db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db
	return r.migrate(postgresMigrations)
}

func (r *PostgresRepository) DB() *sql.DB { return r.db }
