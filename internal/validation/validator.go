package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/registry"
)

type Validator struct {
	genRegistry *registry.GeneratorRegistry
}

func NewValidator(genRegistry *registry.GeneratorRegistry) *Validator {
	return &Validator{genRegistry: genRegistry}
}

// identifier validation: allow simple SQL identifiers only (prevents injection via table/column names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

// ValidateSchema reports whether raw is a field mapping whose every entry
// declares a recognized type. It never fails with an error.
func ValidateSchema(raw any) bool {
	switch s := raw.(type) {
	case nil:
		return false
	case domain.DataSchema:
		if s == nil {
			return false
		}
		for _, f := range s {
			if !f.Schema.Normalize().Type.Known() {
				return false
			}
		}
		return true
	case *domain.DataSchema:
		if s == nil {
			return false
		}
		return ValidateSchema(*s)
	case map[string]domain.FieldSchema:
		if s == nil {
			return false
		}
		for _, fs := range s {
			if !fs.Normalize().Type.Known() {
				return false
			}
		}
		return true
	case map[string]any:
		if s == nil {
			return false
		}
		for _, v := range s {
			field, ok := v.(map[string]any)
			if !ok {
				return false
			}
			typeName, ok := field["type"].(string)
			if !ok || !domain.NormalizeKind(typeName).Known() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Validate returns the first problem found in schema, wrapped in
// ErrInvalidSchema with the field name.
func (v *Validator) Validate(schema domain.DataSchema) error {
	if len(schema) == 0 {
		return fmt.Errorf("%w: schema must have at least one field", domain.ErrInvalidSchema)
	}

	names := make(map[string]bool)
	for _, f := range schema {
		if err := v.validateField(f, names); err != nil {
			return fmt.Errorf("%w: field '%s': %w", domain.ErrInvalidSchema, f.Name, err)
		}
	}
	return nil
}

func (v *Validator) validateField(f domain.SchemaField, names map[string]bool) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("field name is required")
	}
	if names[f.Name] {
		return fmt.Errorf("duplicate field name: %s", f.Name)
	}
	names[f.Name] = true

	if f.Schema.Type == "" {
		return errors.New("type is required")
	}
	spec := f.Schema.Normalize()
	gen, err := v.genRegistry.Get(spec.Type)
	if err != nil {
		return err
	}
	if err := gen.Validate(spec); err != nil {
		return fmt.Errorf("generator validation failed: %w", err)
	}
	return nil
}

// ValidateColumns checks that every field name can be used as a sink column.
func ValidateColumns(names []string) error {
	for _, name := range names {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("%w: invalid column identifier: %s", domain.ErrInvalidSchema, name)
		}
	}
	return nil
}

// ValidateTarget checks a sink config. Failures wrap domain.ErrInvalidTarget.
func (v *Validator) ValidateTarget(t *domain.TargetConfig) error {
	if err := validateTarget(t); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTarget, err)
	}
	return nil
}

func validateTarget(t *domain.TargetConfig) error {
	if t.Kind == "" {
		return errors.New("target kind is required")
	}
	if t.DSN == "" {
		return errors.New("target dsn is required")
	}
	if t.Table == "" {
		return errors.New("target table is required")
	}
	if t.Mode != "" && !IsValidMode(t.Mode) {
		return fmt.Errorf("invalid mode: %s", t.Mode)
	}

	switch t.Kind {
	case "sqlite":
		if t.Schema != "" {
			return fmt.Errorf("%s targets must not set schema", t.Kind)
		}
		if !IsValidIdentifier(t.Table) {
			return fmt.Errorf("invalid target table identifier: %s", t.Table)
		}
	case "postgres":
		if t.Schema != "" && !IsValidIdentifier(t.Schema) {
			return fmt.Errorf("invalid target schema identifier: %s", t.Schema)
		}
		if !IsValidIdentifier(t.Table) {
			return fmt.Errorf("invalid target table identifier: %s", t.Table)
		}
	case "elasticsearch":
		if t.Schema != "" {
			return fmt.Errorf("%s targets must not set schema", t.Kind)
		}
		if !isValidIndexName(t.Table) {
			return fmt.Errorf("invalid elasticsearch index name: %s", t.Table)
		}
	default:
		return fmt.Errorf("unsupported target kind: %s", t.Kind)
	}

	return nil
}

var indexRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

func isValidIndexName(s string) bool {
	return len(s) <= 255 && indexRe.MatchString(s)
}

func IsValidMode(mode string) bool {
	switch mode {
	case domain.TableModeCreate, domain.TableModeTruncate, domain.TableModeAppend:
		return true
	default:
		return false
	}
}
