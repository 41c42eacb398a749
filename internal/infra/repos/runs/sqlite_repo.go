package runs

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		schema_hash TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		seed INTEGER NOT NULL,
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

type SQLiteRepository struct {
	store
	dbPath string
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{
		dbPath: dbPath,
		store:  store{placeholder: func(int) string { return "?" }},
	}
}

func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	// a single writer avoids SQLITE_BUSY between the API's request goroutines
	db.SetMaxOpenConns(1)
	r.db = db
	return r.migrate(sqliteMigrations)
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }
