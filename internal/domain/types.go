package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type FieldKind string

const (
	KindString     FieldKind = "string"
	KindNumber     FieldKind = "number"
	KindBoolean    FieldKind = "boolean"
	KindDate       FieldKind = "date"
	KindEmail      FieldKind = "email"
	KindPhone      FieldKind = "phone"
	KindAddress    FieldKind = "address"
	KindContent    FieldKind = "content"
	KindCreditCard FieldKind = "creditCard"
	KindCompany    FieldKind = "company"
	KindIP         FieldKind = "ip"
	KindURL        FieldKind = "url"
	KindCurrency   FieldKind = "currency"
	KindColor      FieldKind = "color"
	KindUUID       FieldKind = "uuid"
	KindImage      FieldKind = "image"

	// legacy aliases, normalized to KindNumber
	kindInteger FieldKind = "integer"
	kindFloat   FieldKind = "float"
)

// AllFieldKinds is the closed set of recognized field types.
var AllFieldKinds = []FieldKind{
	KindString, KindNumber, KindBoolean, KindDate, KindEmail, KindPhone,
	KindAddress, KindContent, KindCreditCard, KindCompany, KindIP, KindURL,
	KindCurrency, KindColor, KindUUID, KindImage,
}

func (k FieldKind) Known() bool {
	for _, kind := range AllFieldKinds {
		if kind == k {
			return true
		}
	}
	return false
}

const (
	ContentSentence  = "sentence"
	ContentParagraph = "paragraph"
)

type FieldSchema struct {
	Type      FieldKind `json:"type" yaml:"type"`
	Pattern   string    `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Length    int       `json:"length,omitempty" yaml:"length,omitempty"`
	Min       any       `json:"min,omitempty" yaml:"min,omitempty"`
	Max       any       `json:"max,omitempty" yaml:"max,omitempty"`
	Float     bool      `json:"float,omitempty" yaml:"float,omitempty"`
	Precision float64   `json:"precision,omitempty" yaml:"precision,omitempty"`
	Format    string    `json:"format,omitempty" yaml:"format,omitempty"`
	Provider  string    `json:"provider,omitempty" yaml:"provider,omitempty"`
	Options   []any     `json:"options,omitempty" yaml:"options,omitempty"`
	Weights   []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// Normalize maps the legacy integer/float types onto number.
func (f FieldSchema) Normalize() FieldSchema {
	switch f.Type {
	case kindInteger:
		f.Type = KindNumber
	case kindFloat:
		f.Type = KindNumber
		f.Float = true
	}
	return f
}

// NormalizeKind maps a raw type name to its canonical kind.
func NormalizeKind(name string) FieldKind {
	return FieldSchema{Type: FieldKind(name)}.Normalize().Type
}

type SchemaField struct {
	Name   string
	Schema FieldSchema
}

// DataSchema is an ordered field list. Decoding keeps document order.
type DataSchema []SchemaField

func (s DataSchema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

func (s DataSchema) Field(name string) (FieldSchema, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return FieldSchema{}, false
}

func (s *DataSchema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: schema must be an object", ErrInvalidSchema)
	}

	out := make(DataSchema, 0)
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		if seen[name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, name)
		}
		seen[name] = true

		var fs FieldSchema
		if err := dec.Decode(&fs); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, name, err)
		}
		out = append(out, SchemaField{Name: name, Schema: fs})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s DataSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *DataSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: schema must be a mapping", ErrInvalidSchema)
	}
	out := make(DataSchema, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if seen[name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, name)
		}
		seen[name] = true

		var fs FieldSchema
		if err := node.Content[i+1].Decode(&fs); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, name, err)
		}
		out = append(out, SchemaField{Name: name, Schema: fs})
	}
	*s = out
	return nil
}

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
)

// ConfigSchema is the project-local .datacraftrc document.
type ConfigSchema struct {
	Locale        string            `json:"locale" yaml:"locale"`
	DefaultFormat Format            `json:"defaultFormat" yaml:"defaultFormat"`
	OutputDir     string            `json:"outputDir" yaml:"outputDir"`
	Templates     map[string]string `json:"templates" yaml:"templates"`
	Seed          *int64            `json:"seed,omitempty" yaml:"seed,omitempty"`
}

type ColumnType string

const (
	ColumnTypeBigInt ColumnType = "bigint"
	ColumnTypeDouble ColumnType = "double"
	ColumnTypeText   ColumnType = "text"
	ColumnTypeBool   ColumnType = "bool"
	ColumnTypeJSON   ColumnType = "json"
)

type ColumnDef struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

type TargetConfig struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind   string `json:"kind" yaml:"kind"`
	DSN    string `json:"dsn" yaml:"dsn"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table  string `json:"table" yaml:"table"`
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

type TargetCheck struct {
	Kind      string    `json:"kind"`
	OK        bool      `json:"ok"`
	LatencyMS int64     `json:"latency_ms"`
	ServerVer string    `json:"server_version,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type Run struct {
	ID          string          `json:"id" yaml:"id"`
	Source      string          `json:"source" yaml:"source"`
	SchemaHash  string          `json:"schema_hash" yaml:"schema_hash"`
	ConfigHash  string          `json:"config_hash" yaml:"config_hash"`
	Seed        int64           `json:"seed" yaml:"seed"`
	Locale      string          `json:"locale" yaml:"locale"`
	Count       int             `json:"count" yaml:"count"`
	Format      Format          `json:"format" yaml:"format"`
	Output      string          `json:"output,omitempty" yaml:"output,omitempty"`
	Status      RunStatus       `json:"status" yaml:"status"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

const (
	TableModeCreate   = "create"
	TableModeTruncate = "truncate"
	TableModeAppend   = "append"
)

var (
	ErrInvalidSchema        = errors.New("invalid schema")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrInvalidContentFormat = errors.New("invalid content format")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateFileMissing  = errors.New("template file missing")
	ErrTemplateParse        = errors.New("template parse error")
	ErrConfigParse          = errors.New("config parse error")
	ErrInvalidTarget        = errors.New("invalid target")
	ErrUnknownPreset        = errors.New("unknown preset")
	ErrConfigExists         = errors.New("configuration file already exists")
	ErrNoUsers              = errors.New("cannot pick a user from an empty user set")
	ErrMissingUserID        = errors.New("user record has no id field")
)
