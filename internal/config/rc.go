package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/export"
)

const RCFileName = ".datacraftrc"

type RCStatus int

const (
	RCNotFound RCStatus = iota
	RCFound
	RCInvalid
)

func (s RCStatus) String() string {
	switch s {
	case RCFound:
		return "found"
	case RCInvalid:
		return "invalid"
	default:
		return "not_found"
	}
}

// RCResult separates a missing rc file from a malformed one. Config is set
// only when Status is RCFound.
type RCResult struct {
	Status RCStatus
	Config *domain.ConfigSchema
	Path   string
	Err    error
}

// Dir is the directory template paths resolve against.
func (r RCResult) Dir() string {
	return filepath.Dir(r.Path)
}

// LoadRC reads dir/.datacraftrc. Absence is not an error.
func LoadRC(dir string) RCResult {
	path := filepath.Join(dir, RCFileName)
	res := RCResult{Path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Status = RCNotFound
		return res
	}
	if err != nil {
		res.Status = RCInvalid
		res.Err = fmt.Errorf("%w: %v", domain.ErrConfigParse, err)
		return res
	}

	var cfg domain.ConfigSchema
	if err := json.Unmarshal(data, &cfg); err != nil {
		res.Status = RCInvalid
		res.Err = fmt.Errorf("%w: %s: %v", domain.ErrConfigParse, path, err)
		return res
	}
	applyRCDefaults(&cfg)
	format, err := export.ParseFormat(string(cfg.DefaultFormat))
	if err != nil {
		res.Status = RCInvalid
		res.Err = fmt.Errorf("%w: %s: defaultFormat: %w", domain.ErrConfigParse, path, err)
		return res
	}
	cfg.DefaultFormat = format

	res.Status = RCFound
	res.Config = &cfg
	return res
}

func applyRCDefaults(cfg *domain.ConfigSchema) {
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = domain.FormatJSON
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.Templates == nil {
		cfg.Templates = map[string]string{}
	}
}

// DefaultRC is the document written by InitProject.
func DefaultRC() domain.ConfigSchema {
	return domain.ConfigSchema{
		Locale:        "en",
		DefaultFormat: domain.FormatJSON,
		OutputDir:     "./output",
		Templates: map[string]string{
			"user":    "./templates/user.json",
			"product": "./templates/product.json",
		},
	}
}

const userTemplate = `{
  "id": {"type": "uuid"},
  "firstName": {"type": "string", "provider": "firstName"},
  "lastName": {"type": "string", "provider": "lastName"},
  "email": {"type": "email"},
  "phone": {"type": "phone"},
  "address": {"type": "address"},
  "createdAt": {"type": "date", "min": "2020-01-01"}
}
`

const productTemplate = `{
  "id": {"type": "uuid"},
  "name": {"type": "string", "provider": "word"},
  "sku": {"type": "string", "pattern": "???-#####"},
  "price": {"type": "number", "float": true, "min": 1, "max": 500, "precision": 0.01},
  "stock": {"type": "number", "min": 0, "max": 1000},
  "description": {"type": "content", "format": "paragraph"},
  "color": {"type": "color"},
  "image": {"type": "image"}
}
`

const orderTemplate = `{
  "orderId": {"type": "uuid"},
  "total": {"type": "number", "float": true, "min": 5, "max": 900, "precision": 0.01},
  "currency": {"type": "currency"},
  "placedAt": {"type": "date", "min": "-90d"}
}
`

// DefaultUserSchema is the schema behind generate:user and the default user
// side of relationship generation.
func DefaultUserSchema() domain.DataSchema {
	return mustSchema(userTemplate)
}

// DefaultOrderSchema is the default order side of relationship generation.
func DefaultOrderSchema() domain.DataSchema {
	return mustSchema(orderTemplate)
}

func mustSchema(doc string) domain.DataSchema {
	var schema domain.DataSchema
	if err := json.Unmarshal([]byte(doc), &schema); err != nil {
		panic(fmt.Sprintf("config: built-in schema: %v", err))
	}
	return schema
}

// InitProject writes a default .datacraftrc and sample templates into dir.
// An existing rc file is never overwritten.
func InitProject(dir string) ([]string, error) {
	rcPath := filepath.Join(dir, RCFileName)
	if _, err := os.Stat(rcPath); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigExists, rcPath)
	}

	rc, err := json.MarshalIndent(DefaultRC(), "", "  ")
	if err != nil {
		return nil, err
	}

	files := []struct {
		path    string
		content []byte
	}{
		{rcPath, append(rc, '\n')},
		{filepath.Join(dir, "templates", "user.json"), []byte(userTemplate)},
		{filepath.Join(dir, "templates", "product.json"), []byte(productTemplate)},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && f.path != rcPath {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(f.path, f.content, 0o644); err != nil {
			return written, err
		}
		written = append(written, f.path)
	}
	return written, nil
}
