package exec

import (
	"context"
	"fmt"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
)

const DefaultBatchSize = 1000

type Target interface {
	Connect(ctx context.Context) error
	Close() error
	CreateTableIfNotExists(ctx context.Context, table string, columns []domain.ColumnDef) error
	TruncateTable(ctx context.Context, table string) error
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error
}

type LoadStats struct {
	Table           string  `json:"table"`
	RowsLoaded      int     `json:"rows_loaded"`
	Batches         int     `json:"batches"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Load writes records into table in batches, preparing the table according
// to mode first. Columns follow the first record, or the schema when there
// are no records.
func (e *Executor) Load(ctx context.Context, schema domain.DataSchema, records []domain.Record, target Target, table, mode string, batchSize int) (*LoadStats, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if mode == "" {
		mode = domain.TableModeCreate
	}

	if err := target.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer target.Close()

	startTime := time.Now()
	columns := InferColumns(records)
	if len(columns) == 0 {
		columns = SchemaColumns(schema)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to load into '%s'", table)
	}

	switch mode {
	case domain.TableModeCreate:
		if err := target.CreateTableIfNotExists(ctx, table, columns); err != nil {
			return nil, fmt.Errorf("failed to create table '%s': %w", table, err)
		}
	case domain.TableModeTruncate:
		if err := target.CreateTableIfNotExists(ctx, table, columns); err != nil {
			return nil, fmt.Errorf("failed to create table '%s': %w", table, err)
		}
		if err := target.TruncateTable(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to truncate table '%s': %w", table, err)
		}
	case domain.TableModeAppend:
	default:
		return nil, fmt.Errorf("unknown table mode: %s", mode)
	}

	columnNames := make([]string, len(columns))
	for i, col := range columns {
		columnNames[i] = col.Name
	}

	stats := &LoadStats{Table: table}
	batch := make([][]any, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := target.InsertBatch(ctx, table, columnNames, batch); err != nil {
			return fmt.Errorf("failed to insert batch into '%s': %w", table, err)
		}
		stats.RowsLoaded += len(batch)
		stats.Batches++
		batch = batch[:0]
		return nil
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]any, len(columns))
		for i, col := range columns {
			if v, ok := rec.Get(col.Name); ok {
				row[i] = columnValue(v)
			}
		}
		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	stats.DurationSeconds = time.Since(startTime).Seconds()
	e.logger.Infow("records loaded", map[string]any{
		"table":   table,
		"rows":    stats.RowsLoaded,
		"batches": stats.Batches,
		"mode":    mode,
	})
	return stats, nil
}

// InferColumns derives sink columns from the first record's fields.
func InferColumns(records []domain.Record) []domain.ColumnDef {
	if len(records) == 0 {
		return nil
	}
	fields := records[0].Fields()
	columns := make([]domain.ColumnDef, len(fields))
	for i, f := range fields {
		columns[i] = domain.ColumnDef{Name: f.Name, Type: columnType(f.Value)}
	}
	return columns
}

// SchemaColumns derives sink columns from field declarations, matching what
// InferColumns would report for generated values.
func SchemaColumns(schema domain.DataSchema) []domain.ColumnDef {
	columns := make([]domain.ColumnDef, len(schema))
	for i, f := range schema {
		columns[i] = domain.ColumnDef{Name: f.Name, Type: fieldColumnType(f.Schema.Normalize())}
	}
	return columns
}

func fieldColumnType(spec domain.FieldSchema) domain.ColumnType {
	if len(spec.Options) > 0 {
		return columnType(domain.Scalar(spec.Options[0]))
	}
	switch spec.Type {
	case domain.KindNumber:
		if spec.Float {
			return domain.ColumnTypeDouble
		}
		return domain.ColumnTypeBigInt
	case domain.KindBoolean:
		return domain.ColumnTypeBool
	case domain.KindAddress, domain.KindCompany, domain.KindCurrency:
		return domain.ColumnTypeJSON
	default:
		return domain.ColumnTypeText
	}
}

func columnType(v domain.Value) domain.ColumnType {
	if v.IsObject() {
		return domain.ColumnTypeJSON
	}
	switch v.Raw().(type) {
	case int, int64:
		return domain.ColumnTypeBigInt
	case float64:
		return domain.ColumnTypeDouble
	case bool:
		return domain.ColumnTypeBool
	default:
		return domain.ColumnTypeText
	}
}

// columnValue flattens a value for a driver: objects become their JSON text.
func columnValue(v domain.Value) any {
	if v.IsObject() {
		return v.String()
	}
	return v.Raw()
}
