package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/registry"
)

func decodeRaw(t *testing.T, s string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return raw
}

func TestValidateSchema(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want bool
	}{
		{"known types", decodeRaw(t, `{"name":{"type":"string"},"age":{"type":"number"},"email":{"type":"email"}}`), true},
		{"unknown type", decodeRaw(t, `{"name":{"type":"string"},"age":{"type":"bogus"}}`), false},
		{"legacy aliases", decodeRaw(t, `{"n":{"type":"integer"},"f":{"type":"float"}}`), true},
		{"missing type", decodeRaw(t, `{"name":{"length":3}}`), false},
		{"non-string type", decodeRaw(t, `{"name":{"type":7}}`), false},
		{"field not an object", decodeRaw(t, `{"name":"string"}`), false},
		{"array", decodeRaw(t, `[{"type":"string"}]`), false},
		{"string", "schema", false},
		{"nil", nil, false},
		{"typed schema", domain.DataSchema{{Name: "id", Schema: domain.FieldSchema{Type: domain.KindUUID}}}, true},
		{"typed bad schema", domain.DataSchema{{Name: "v", Schema: domain.FieldSchema{Type: "vector"}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateSchema(tc.raw); got != tc.want {
				t.Fatalf("ValidateSchema = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())

	var good domain.DataSchema
	if err := json.Unmarshal([]byte(`{
		"id": {"type": "uuid"},
		"age": {"type": "number", "min": 18, "max": 90},
		"bio": {"type": "content", "format": "paragraph"},
		"tier": {"type": "string", "options": ["a", "b"], "weights": [1, 2]}
	}`), &good); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(good); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}

	bad := map[string]domain.DataSchema{
		"empty":          {},
		"unknown type":   {{Name: "v", Schema: domain.FieldSchema{Type: "vector"}}},
		"missing type":   {{Name: "v", Schema: domain.FieldSchema{}}},
		"content format": {{Name: "c", Schema: domain.FieldSchema{Type: domain.KindContent}}},
		"inverted range": {{Name: "n", Schema: domain.FieldSchema{Type: domain.KindNumber, Min: 10.0, Max: 1.0}}},
		"duplicate": {
			{Name: "a", Schema: domain.FieldSchema{Type: domain.KindString}},
			{Name: "a", Schema: domain.FieldSchema{Type: domain.KindString}},
		},
	}
	for name, schema := range bad {
		err := v.Validate(schema)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, domain.ErrInvalidSchema) {
			t.Fatalf("%s: expected ErrInvalidSchema, got %v", name, err)
		}
	}
}

func TestValidateTarget(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())

	ok := []domain.TargetConfig{
		{Kind: "sqlite", DSN: "file:test.db", Table: "users"},
		{Kind: "postgres", DSN: "postgres://localhost/db", Schema: "public", Table: "users", Mode: "truncate"},
		{Kind: "elasticsearch", DSN: "http://localhost:9200", Table: "users-2024.01"},
	}
	for _, tc := range ok {
		if err := v.ValidateTarget(&tc); err != nil {
			t.Fatalf("expected valid target %+v, got %v", tc, err)
		}
	}

	bad := []domain.TargetConfig{
		{Kind: "", DSN: "x", Table: "t"},
		{Kind: "sqlite", DSN: "", Table: "t"},
		{Kind: "sqlite", DSN: "x", Table: ""},
		{Kind: "sqlite", DSN: "x", Table: "drop table"},
		{Kind: "sqlite", DSN: "x", Table: "t", Schema: "main"},
		{Kind: "postgres", DSN: "x", Table: "t", Mode: "upsert"},
		{Kind: "elasticsearch", DSN: "x", Table: "Upper"},
		{Kind: "mysql", DSN: "x", Table: "t"},
	}
	for _, tc := range bad {
		if err := v.ValidateTarget(&tc); !errors.Is(err, domain.ErrInvalidTarget) {
			t.Fatalf("expected ErrInvalidTarget for %+v, got %v", tc, err)
		}
	}
}
