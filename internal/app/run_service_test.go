package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/mmrzaf/datacraft/internal/logging"
	"github.com/mmrzaf/datacraft/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainSchema = `{"id":{"type":"uuid"},"age":{"type":"number","min":18,"max":60},"active":{"type":"boolean"}}`

func mustSchema(t *testing.T, raw string) domain.DataSchema {
	t.Helper()
	var schema domain.DataSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))
	return schema
}

func newService(t *testing.T, projectDir string) (*RunService, runs.Repository) {
	t.Helper()
	runRepo := runs.NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, runRepo.Init())
	t.Cleanup(func() { _ = runRepo.Close() })

	svc := NewRunService(templates.NewFileRepository(projectDir), runRepo, registry.DefaultGeneratorRegistry(), logging.Nop(), 10)
	return svc, runRepo
}

func seed(v int64) *int64 { return &v }

func TestGenerate_RecordsRunHistory(t *testing.T) {
	svc, runRepo := newService(t, t.TempDir())

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, plainSchema),
		Count:  4,
		Seed:   seed(42),
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 4)
	assert.True(t, strings.HasPrefix(res.Rendered, "[\n  {"))

	stored, err := runRepo.Get(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, stored.Status)
	assert.Equal(t, SourceCustom, stored.Source)
	assert.Equal(t, int64(42), stored.Seed)
	assert.Equal(t, "en", stored.Locale)
	assert.Equal(t, domain.FormatJSON, stored.Format)
	assert.NotEmpty(t, stored.SchemaHash)
	assert.NotNil(t, stored.CompletedAt)
}

func TestGenerate_SameSeedSameOutput(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	req := GenerateRequest{Schema: mustSchema(t, plainSchema), Count: 5, Seed: seed(7)}

	a, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Rendered, b.Rendered)
	assert.Equal(t, a.Run.ConfigHash, b.Run.ConfigHash)
	assert.NotEqual(t, a.Run.ID, b.Run.ID)
}

func TestGenerate_InvalidSchemaCreatesNoRun(t *testing.T) {
	svc, _ := newService(t, t.TempDir())

	_, err := svc.Generate(context.Background(), GenerateRequest{Schema: mustSchema(t, `{"x":{"type":"nope"}}`), Count: 1})
	require.ErrorIs(t, err, domain.ErrInvalidSchema)

	list, err := svc.ListRuns(10, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerate_WritesOutputFile(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "nested", "people.csv")

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, plainSchema),
		Count:  3,
		Format: domain.FormatCSV,
		Output: out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Rendered, string(data))
	assert.True(t, strings.HasPrefix(string(data), `"id","age","active"`))
	assert.Equal(t, out, res.Run.Output)
}

func TestGenerate_LoadsIntoSQLite(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "target.db")

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, plainSchema),
		Count:  25,
		Seed:   seed(3),
		Target: &domain.TargetConfig{Kind: "sqlite", DSN: dbPath, Table: "people"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Load)
	assert.Equal(t, 25, res.Load.RowsLoaded)
	assert.Equal(t, 3, res.Load.Batches)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n))
	assert.Equal(t, 25, n)
}

func TestGenerate_RejectsBadTarget(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	_, err := svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, plainSchema),
		Count:  1,
		Target: &domain.TargetConfig{Kind: "sqlite", DSN: "x.db", Table: "select"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, `{"order":{"type":"uuid"}}`),
		Count:  1,
		Target: &domain.TargetConfig{Kind: "sqlite", DSN: "x.db", Table: "people"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchema)
}

func TestGenerate_ZeroCountCreatesTable(t *testing.T) {
	svc, runRepo := newService(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "target.db")

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Schema: mustSchema(t, plainSchema),
		Count:  0,
		Seed:   seed(3),
		Target: &domain.TargetConfig{Kind: "sqlite", DSN: dbPath, Table: "people", Mode: domain.TableModeTruncate},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Load.RowsLoaded)

	stored, err := runRepo.Get(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, stored.Status)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Query(`SELECT id, age, active FROM people`)
	require.NoError(t, err)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Close())
}

func TestGenerateFromTemplate_UsesRCDefaults(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".datacraftrc"),
		[]byte(`{"defaultFormat":"csv","locale":"de","seed":11,"templates":{"people":"./templates/people.json"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, "templates", "people.json"), []byte(plainSchema), 0o644))

	svc, _ := newService(t, project)
	assert.Equal(t, []string{"people"}, svc.ListTemplates())

	res, err := svc.GenerateFromTemplate(context.Background(), "people", GenerateRequest{Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "template:people", res.Run.Source)
	assert.Equal(t, int64(11), res.Run.Seed)
	assert.Equal(t, "de", res.Run.Locale)
	assert.Equal(t, domain.FormatCSV, res.Run.Format)
	assert.Len(t, strings.Split(res.Rendered, "\n"), 3)

	_, err = svc.GenerateFromTemplate(context.Background(), "missing", GenerateRequest{Count: 1})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestGenerateUsers(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	res, err := svc.GenerateUsers(context.Background(), GenerateRequest{Count: 2, Seed: seed(1)})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	_, ok := res.Records[0].Get("email")
	assert.True(t, ok)
	assert.Equal(t, SourceUser, res.Run.Source)
}

func TestGeneratePreset(t *testing.T) {
	svc, runRepo := newService(t, t.TempDir())
	assert.Equal(t, []string{"address", "order", "product", "review", "transaction", "user"}, svc.ListPresets())

	res, err := svc.GeneratePreset(context.Background(), "review", GenerateRequest{Count: 20, Seed: seed(6)})
	require.NoError(t, err)
	require.Len(t, res.Records, 20)
	for _, rec := range res.Records {
		rating, ok := rec.Get("rating")
		require.True(t, ok)
		n, ok := rating.Raw().(int64)
		require.True(t, ok)
		assert.True(t, n >= 1 && n <= 5, n)
	}

	stored, err := runRepo.Get(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, "preset:review", stored.Source)

	_, err = svc.GeneratePreset(context.Background(), "spaceship", GenerateRequest{Count: 1})
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
}

func TestGenerateRelationships(t *testing.T) {
	svc, runRepo := newService(t, t.TempDir())
	outDir := t.TempDir()

	res, err := svc.GenerateRelationships(context.Background(), RelationshipsRequest{
		UserSchema:  mustSchema(t, `{"id":{"type":"uuid"}}`),
		OrderSchema: mustSchema(t, `{"orderId":{"type":"uuid"}}`),
		UserCount:   3,
		OrderCount:  5,
		Seed:        seed(9),
		OutputDir:   outDir,
	})
	require.NoError(t, err)
	require.Len(t, res.Relationships.Users, 3)
	require.Len(t, res.Relationships.Orders, 5)

	ids := map[any]bool{}
	for _, u := range res.Relationships.Users {
		v, _ := u.Get("id")
		ids[v.Raw()] = true
	}
	for _, o := range res.Relationships.Orders {
		v, ok := o.Get("userId")
		require.True(t, ok)
		assert.True(t, ids[v.Raw()])
	}

	for _, name := range []string{"users.json", "orders.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	stored, err := runRepo.Get(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Count)
}

func TestGenerateRelationships_NoUsersFailsRun(t *testing.T) {
	svc, _ := newService(t, t.TempDir())

	_, err := svc.GenerateRelationships(context.Background(), RelationshipsRequest{
		UserCount:  0,
		OrderCount: 2,
	})
	require.ErrorIs(t, err, domain.ErrNoUsers)

	failed, err := svc.ListRuns(10, string(domain.RunStatusFailed))
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error, "empty user set")
}

func TestGetRun_NotFound(t *testing.T) {
	svc, _ := newService(t, t.TempDir())
	_, err := svc.GetRun("nope")
	assert.ErrorIs(t, err, runs.ErrRunNotFound)
}
