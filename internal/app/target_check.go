package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/exec"
	esTarget "github.com/mmrzaf/datacraft/internal/infra/targets/elasticsearch"
	pgTarget "github.com/mmrzaf/datacraft/internal/infra/targets/postgres"
	sqliteTarget "github.com/mmrzaf/datacraft/internal/infra/targets/sqlite"
	"github.com/mmrzaf/datacraft/internal/validation"
)

const checkTable = "datacraft_check"

// NewTarget builds the sink for a target config.
func NewTarget(t *domain.TargetConfig) (exec.Target, error) {
	switch t.Kind {
	case "postgres":
		return pgTarget.NewPostgresTarget(t.DSN, t.Schema), nil
	case "sqlite":
		return sqliteTarget.NewSQLiteTarget(t.DSN), nil
	case "elasticsearch":
		return esTarget.NewElasticsearchTarget(t.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
}

// CheckTarget connects to a sink and reports latency and server version.
// A failed check is returned together with the error.
func CheckTarget(ctx context.Context, t *domain.TargetConfig) (*domain.TargetCheck, error) {
	check := &domain.TargetCheck{
		Kind:      t.Kind,
		CheckedAt: time.Now().UTC(),
	}

	candidate := *t
	if candidate.Table == "" {
		candidate.Table = checkTable
	}
	val := validation.NewValidator(nil)
	if err := val.ValidateTarget(&candidate); err != nil {
		check.Error = err.Error()
		return check, err
	}

	start := time.Now()
	tgt, err := NewTarget(&candidate)
	if err != nil {
		check.Error = err.Error()
		return check, err
	}
	if err := tgt.Connect(ctx); err != nil {
		check.Error = err.Error()
		check.LatencyMS = time.Since(start).Milliseconds()
		return check, err
	}
	defer tgt.Close()

	check.OK = true
	check.LatencyMS = time.Since(start).Milliseconds()
	if ver, err := serverVersion(ctx, &candidate); err == nil {
		check.ServerVer = ver
	}
	return check, nil
}

func serverVersion(ctx context.Context, t *domain.TargetConfig) (string, error) {
	switch t.Kind {
	case "postgres":
		return queryServerVersion(ctx, "postgres", t.DSN, "SHOW server_version")
	case "sqlite":
		return queryServerVersion(ctx, "sqlite3", t.DSN, "SELECT sqlite_version()")
	case "elasticsearch":
		return esTarget.GetServerVersion(ctx, t.DSN)
	default:
		return "", fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
}

func queryServerVersion(ctx context.Context, driver, dsn, query string) (string, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var version string
	if err := db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}
