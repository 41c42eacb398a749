package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/mmrzaf/datacraft/internal/domain"
)

type PostgresTarget struct {
	dsn    string
	schema string
	db     *sql.DB
}

func NewPostgresTarget(dsn, schema string) *PostgresTarget {
	if schema == "" {
		schema = "public"
	}
	return &PostgresTarget{
		dsn:    dsn,
		schema: schema,
	}
}

// NewPostgresTargetWithDB wraps an already opened handle.
func NewPostgresTargetWithDB(db *sql.DB, schema string) *PostgresTarget {
	t := NewPostgresTarget("", schema)
	t.db = db
	return t
}

func (t *PostgresTarget) Connect(ctx context.Context) error {
	if t.db == nil {
		db, err := sql.Open("postgres", t.dsn)
		if err != nil {
			return err
		}
		t.db = db
	}
	return t.db.PingContext(ctx)
}

func (t *PostgresTarget) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func (t *PostgresTarget) CreateTableIfNotExists(ctx context.Context, table string, columns []domain.ColumnDef) error {
	var exists bool
	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2
	)`
	if err := t.db.QueryRowContext(ctx, query, t.schema, table).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	columnDefs := make([]string, len(columns))
	for i, col := range columns {
		columnDefs[i] = fmt.Sprintf("%s %s", quoteIdent(col.Name), mapColumnType(col.Type))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", t.qualified(table), strings.Join(columnDefs, ", "))
	_, err := t.db.ExecContext(ctx, createSQL)
	return err
}

func mapColumnType(colType domain.ColumnType) string {
	switch colType {
	case domain.ColumnTypeBigInt:
		return "BIGINT"
	case domain.ColumnTypeDouble:
		return "DOUBLE PRECISION"
	case domain.ColumnTypeBool:
		return "BOOLEAN"
	case domain.ColumnTypeJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func (t *PostgresTarget) TruncateTable(ctx context.Context, table string) error {
	_, err := t.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", t.qualified(table)))
	return err
}

func (t *PostgresTarget) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		quotedCols[i] = quoteIdent(col)
	}

	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		rowPlaceholders := make([]string, len(columns))
		for j := range columns {
			rowPlaceholders[j] = fmt.Sprintf("$%d", i*len(columns)+j+1)
			args = append(args, row[j])
		}
		placeholders[i] = "(" + strings.Join(rowPlaceholders, ", ") + ")"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		t.qualified(table), strings.Join(quotedCols, ", "), strings.Join(placeholders, ", "))

	_, err := t.db.ExecContext(ctx, insertSQL, args...)
	return err
}

func (t *PostgresTarget) qualified(table string) string {
	return quoteIdent(t.schema) + "." + quoteIdent(table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
