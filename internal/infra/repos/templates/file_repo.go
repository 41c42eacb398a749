package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/domain"
	"gopkg.in/yaml.v3"
)

type Repository interface {
	List() []string
	Get(name string) (domain.DataSchema, error)
	GetByPath(path string) (domain.DataSchema, error)
}

// FileRepository resolves template names through the project's rc file.
type FileRepository struct {
	mu      sync.RWMutex
	baseDir string
	rc      config.RCResult
}

func NewFileRepository(baseDir string) *FileRepository {
	r := &FileRepository{baseDir: baseDir}
	r.Reload()
	return r
}

// Reload re-reads the rc file and returns the new result.
func (r *FileRepository) Reload() config.RCResult {
	rc := config.LoadRC(r.baseDir)
	r.mu.Lock()
	r.rc = rc
	r.mu.Unlock()
	return rc
}

func (r *FileRepository) RC() config.RCResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rc
}

func (r *FileRepository) BaseDir() string { return r.baseDir }

// List returns the sorted template names, empty when there is no usable rc.
func (r *FileRepository) List() []string {
	rc := r.RC()
	if rc.Status != config.RCFound {
		return []string{}
	}
	names := make([]string, 0, len(rc.Config.Templates))
	for name := range rc.Config.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *FileRepository) Get(name string) (domain.DataSchema, error) {
	rc := r.RC()
	switch rc.Status {
	case config.RCNotFound:
		return nil, fmt.Errorf("%w: %s (no %s)", domain.ErrTemplateNotFound, name, config.RCFileName)
	case config.RCInvalid:
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTemplateNotFound, name, rc.Err)
	}

	rel, ok := rc.Config.Templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	return r.GetByPath(rel)
}

// GetByPath loads a schema file relative to the base dir. Paths may not
// escape it.
func (r *FileRepository) GetByPath(path string) (domain.DataSchema, error) {
	full, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	schema, err := LoadSchemaFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateFileMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTemplateParse, path, err)
	}
	return schema, nil
}

func (r *FileRepository) resolve(path string) (string, error) {
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("template path escapes project dir: %s", path)
	}
	return target, nil
}

// LoadSchemaFile reads a DataSchema from JSON, or YAML when the extension
// is .yaml or .yml.
func LoadSchemaFile(path string) (domain.DataSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var schema domain.DataSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &schema)
	default:
		err = json.Unmarshal(data, &schema)
	}
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: empty schema document", domain.ErrInvalidSchema)
	}
	return schema, nil
}
