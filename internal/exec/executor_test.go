package exec

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSchema(t *testing.T, raw string) domain.DataSchema {
	t.Helper()
	var s domain.DataSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func newTestExecutor(seed int64) *Executor {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewExecutor(registry.DefaultGeneratorRegistry(),
		WithSeed(seed),
		WithClock(func() time.Time { return fixed }),
	)
}

func TestGenerate_CountAndFields(t *testing.T) {
	schema := mustSchema(t, `{
		"id": {"type": "uuid"},
		"name": {"type": "string", "provider": "name"},
		"email": {"type": "email"},
		"address": {"type": "address"},
		"bio": {"type": "content", "format": "sentence"},
		"active": {"type": "boolean"}
	}`)
	e := newTestExecutor(1)

	for _, n := range []int{1, 7, 50} {
		records, err := e.Generate(schema, n)
		require.NoError(t, err)
		require.Len(t, records, n)
		for _, rec := range records {
			assert.Equal(t, schema.Names(), rec.Keys())
		}
	}
}

func TestGenerate_ZeroCount(t *testing.T) {
	e := newTestExecutor(1)
	records, err := e.Generate(mustSchema(t, `{"a": {"type": "string"}}`), 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGenerate_NegativeCount(t *testing.T) {
	e := newTestExecutor(1)
	_, err := e.Generate(mustSchema(t, `{"a": {"type": "string"}}`), -1)
	assert.Error(t, err)
}

func TestGenerate_StringLength(t *testing.T) {
	e := newTestExecutor(2)
	records, err := e.Generate(mustSchema(t, `{"code": {"type": "string", "length": 12}}`), 100)
	require.NoError(t, err)
	for _, rec := range records {
		v, _ := rec.Get("code")
		assert.Len(t, v.String(), 12)
	}
}

func TestGenerate_StringPattern(t *testing.T) {
	e := newTestExecutor(3)
	re := regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)
	records, err := e.Generate(mustSchema(t, `{"card": {"type": "string", "pattern": "####-####-####"}}`), 100)
	require.NoError(t, err)
	for _, rec := range records {
		v, _ := rec.Get("card")
		assert.Regexp(t, re, v.String())
	}
}

func TestGenerate_NumberRange(t *testing.T) {
	e := newTestExecutor(4)
	records, err := e.Generate(mustSchema(t, `{
		"age": {"type": "number", "min": 18, "max": 65},
		"price": {"type": "number", "float": true, "min": 1.5, "max": 2.5, "precision": 0.1},
		"legacy": {"type": "integer", "min": -3, "max": 3}
	}`), 200)
	require.NoError(t, err)
	for _, rec := range records {
		age, _ := rec.Get("age")
		a, ok := age.Raw().(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, a, int64(18))
		assert.LessOrEqual(t, a, int64(65))

		price, _ := rec.Get("price")
		p, ok := price.Raw().(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, p, 1.5)
		assert.LessOrEqual(t, p, 2.5)

		legacy, _ := rec.Get("legacy")
		l := legacy.Raw().(int64)
		assert.GreaterOrEqual(t, l, int64(-3))
		assert.LessOrEqual(t, l, int64(3))
	}
}

func TestGenerate_DateRange(t *testing.T) {
	e := newTestExecutor(5)
	records, err := e.Generate(mustSchema(t, `{"at": {"type": "date", "min": "1990-01-01", "max": "2030-12-31"}}`), 200)
	require.NoError(t, err)

	lo := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, rec := range records {
		v, _ := rec.Get("at")
		ts, err := time.Parse(time.RFC3339, v.String())
		require.NoError(t, err)
		assert.False(t, ts.Before(lo), ts)
		assert.False(t, ts.After(hi), ts)
	}
}

func TestGenerate_UnsupportedType(t *testing.T) {
	e := newTestExecutor(6)
	_, err := e.Generate(mustSchema(t, `{"v": {"type": "vector"}}`), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFieldType))
	assert.Contains(t, err.Error(), "vector")
}

func TestGenerate_InvalidContentFormat(t *testing.T) {
	e := newTestExecutor(6)
	_, err := e.Generate(mustSchema(t, `{"body": {"type": "content", "format": "haiku"}}`), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidContentFormat)

	_, err = e.Generate(mustSchema(t, `{"body": {"type": "content"}}`), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidContentFormat)
}

func TestGenerate_SeedReproducible(t *testing.T) {
	schema := mustSchema(t, `{
		"id": {"type": "uuid"},
		"code": {"type": "string", "pattern": "??-###"},
		"n": {"type": "number", "min": 0, "max": 1000000},
		"when": {"type": "date"},
		"tier": {"type": "string", "options": ["gold", "silver"], "weights": [1, 3]},
		"company": {"type": "company"},
		"color": {"type": "color"},
		"email": {"type": "email"},
		"phone": {"type": "phone"},
		"bio": {"type": "content", "format": "sentence"},
		"about": {"type": "content", "format": "paragraph"},
		"card": {"type": "creditCard"},
		"ip": {"type": "ip"},
		"site": {"type": "url"},
		"avatar": {"type": "image"},
		"handle": {"type": "string", "provider": "username"}
	}`)

	a, err := newTestExecutor(42).Generate(schema, 20)
	require.NoError(t, err)
	// other executors drawing in between must not shift a later same-seed run
	c, err := newTestExecutor(43).Generate(schema, 20)
	require.NoError(t, err)
	b, err := newTestExecutor(42).Generate(schema, 20)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	jc, _ := json.Marshal(c)
	assert.JSONEq(t, string(ja), string(jb))
	assert.NotEqual(t, string(ja), string(jc))
}

func TestGenerateField(t *testing.T) {
	e := newTestExecutor(7)
	v, err := e.GenerateField(domain.FieldSchema{Type: domain.KindCurrency})
	require.NoError(t, err)
	require.True(t, v.IsObject())
	for _, key := range []string{"code", "name", "symbol"} {
		_, ok := v.Member(key)
		assert.True(t, ok, key)
	}
}

func TestGenerateWithRelationships(t *testing.T) {
	users := mustSchema(t, `{"id": {"type": "uuid"}, "name": {"type": "string", "provider": "name"}}`)
	orders := mustSchema(t, `{"orderId": {"type": "uuid"}, "total": {"type": "number", "float": true}}`)

	e := newTestExecutor(8)
	rel, err := e.GenerateWithRelationships(users, orders, 3, 5)
	require.NoError(t, err)
	require.Len(t, rel.Users, 3)
	require.Len(t, rel.Orders, 5)

	ids := make(map[string]bool)
	for _, u := range rel.Users {
		id, ok := u.Get("id")
		require.True(t, ok)
		ids[id.String()] = true
	}
	for _, o := range rel.Orders {
		uid, ok := o.Get("userId")
		require.True(t, ok)
		assert.True(t, ids[uid.String()], uid.String())
		assert.Equal(t, []string{"orderId", "total", "userId"}, o.Keys())
	}
}

func TestGenerateWithRelationships_Errors(t *testing.T) {
	users := mustSchema(t, `{"id": {"type": "uuid"}}`)
	orders := mustSchema(t, `{"total": {"type": "number"}}`)
	e := newTestExecutor(9)

	_, err := e.GenerateWithRelationships(users, orders, 0, 2)
	assert.ErrorIs(t, err, domain.ErrNoUsers)

	rel, err := e.GenerateWithRelationships(users, orders, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rel.Orders)

	noID := mustSchema(t, `{"name": {"type": "string"}}`)
	_, err = e.GenerateWithRelationships(noID, orders, 2, 1)
	assert.ErrorIs(t, err, domain.ErrMissingUserID)
}

type memoryTarget struct {
	connected bool
	closed    bool
	created   []domain.ColumnDef
	truncated bool
	columns   []string
	rows      [][]any
	batches   int
}

func (m *memoryTarget) Connect(ctx context.Context) error {
	m.connected = true
	return nil
}

func (m *memoryTarget) Close() error {
	m.closed = true
	return nil
}

func (m *memoryTarget) CreateTableIfNotExists(ctx context.Context, table string, columns []domain.ColumnDef) error {
	m.created = columns
	return nil
}

func (m *memoryTarget) TruncateTable(ctx context.Context, table string) error {
	m.truncated = true
	m.rows = nil
	return nil
}

func (m *memoryTarget) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	m.columns = columns
	for _, r := range rows {
		m.rows = append(m.rows, append([]any(nil), r...))
	}
	m.batches++
	return nil
}

func TestLoad_BatchesAndColumns(t *testing.T) {
	e := newTestExecutor(10)
	schema := mustSchema(t, `{
		"id": {"type": "uuid"},
		"age": {"type": "number"},
		"score": {"type": "number", "float": true},
		"active": {"type": "boolean"},
		"address": {"type": "address"}
	}`)
	records, err := e.Generate(schema, 25)
	require.NoError(t, err)

	target := &memoryTarget{}
	stats, err := e.Load(context.Background(), schema, records, target, "people", domain.TableModeTruncate, 10)
	require.NoError(t, err)

	assert.True(t, target.connected)
	assert.True(t, target.closed)
	assert.True(t, target.truncated)
	assert.Equal(t, 25, stats.RowsLoaded)
	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, []string{"id", "age", "score", "active", "address"}, target.columns)
	assert.Equal(t, []domain.ColumnDef{
		{Name: "id", Type: domain.ColumnTypeText},
		{Name: "age", Type: domain.ColumnTypeBigInt},
		{Name: "score", Type: domain.ColumnTypeDouble},
		{Name: "active", Type: domain.ColumnTypeBool},
		{Name: "address", Type: domain.ColumnTypeJSON},
	}, target.created)

	addr, ok := target.rows[0][4].(string)
	require.True(t, ok)
	assert.Contains(t, addr, `"zipCode"`)
}

func TestLoad_UnknownMode(t *testing.T) {
	e := newTestExecutor(11)
	schema := mustSchema(t, `{"a": {"type": "string"}}`)
	_, err := e.Load(context.Background(), schema, nil, &memoryTarget{}, "t", "upsert", 0)
	assert.ErrorContains(t, err, "unknown table mode")
}

func TestLoad_NoRecordsUsesSchemaColumns(t *testing.T) {
	e := newTestExecutor(12)
	schema := mustSchema(t, `{
		"id": {"type": "uuid"},
		"age": {"type": "integer"},
		"score": {"type": "float"},
		"active": {"type": "boolean"},
		"tier": {"type": "string", "options": ["gold", "silver"]},
		"company": {"type": "company"}
	}`)
	records, err := e.Generate(schema, 0)
	require.NoError(t, err)

	target := &memoryTarget{}
	stats, err := e.Load(context.Background(), schema, records, target, "people", domain.TableModeCreate, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RowsLoaded)
	assert.Equal(t, 0, stats.Batches)
	assert.Equal(t, []domain.ColumnDef{
		{Name: "id", Type: domain.ColumnTypeText},
		{Name: "age", Type: domain.ColumnTypeBigInt},
		{Name: "score", Type: domain.ColumnTypeDouble},
		{Name: "active", Type: domain.ColumnTypeBool},
		{Name: "tier", Type: domain.ColumnTypeText},
		{Name: "company", Type: domain.ColumnTypeJSON},
	}, target.created)

	_, err = e.Load(context.Background(), nil, nil, &memoryTarget{}, "people", domain.TableModeCreate, 10)
	assert.Error(t, err)
}

func TestSchemaColumns_MatchInferredColumns(t *testing.T) {
	e := newTestExecutor(13)
	schema := mustSchema(t, `{
		"id": {"type": "uuid"},
		"n": {"type": "number", "min": 1, "max": 9},
		"price": {"type": "number", "float": true},
		"ok": {"type": "boolean"},
		"when": {"type": "date"},
		"addr": {"type": "address"},
		"cur": {"type": "currency"},
		"size": {"type": "number", "options": [1, 2, 3]}
	}`)
	records, err := e.Generate(schema, 1)
	require.NoError(t, err)
	assert.Equal(t, InferColumns(records), SchemaColumns(schema))
}
