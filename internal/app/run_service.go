package app

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/exec"
	"github.com/mmrzaf/datacraft/internal/export"
	"github.com/mmrzaf/datacraft/internal/hashing"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/mmrzaf/datacraft/internal/logging"
	"github.com/mmrzaf/datacraft/internal/metrics"
	"github.com/mmrzaf/datacraft/internal/registry"
	"github.com/mmrzaf/datacraft/internal/validation"
)

const (
	SourceUser          = "user"
	SourceCustom        = "custom"
	SourceRelationships = "relationships"
	sourceTemplate      = "template:"
	sourcePreset        = "preset:"
)

// GenerateRequest describes one generation. Zero values fall back to the rc
// file, then to built-in defaults.
type GenerateRequest struct {
	Schema domain.DataSchema
	Count  int
	Locale string
	Seed   *int64
	Format domain.Format
	// Output is a file path; empty keeps the result in memory only.
	Output string
	Target *domain.TargetConfig
	Source string
}

type GenerateResult struct {
	Run      *domain.Run
	Records  []domain.Record
	Rendered string
	Load     *exec.LoadStats
}

type RelationshipsRequest struct {
	UserSchema  domain.DataSchema
	OrderSchema domain.DataSchema
	UserCount   int
	OrderCount  int
	Locale      string
	Seed        *int64
	Format      domain.Format
	// OutputDir receives users.<format> and orders.<format>.
	OutputDir string
}

type RelationshipsResult struct {
	Run           *domain.Run
	Relationships *exec.Relationships
	Users         string
	Orders        string
}

// RunService ties the generator, exporter, template lookup, sinks and run
// history together. Every call builds its own Executor.
type RunService struct {
	templateRepo *templates.FileRepository
	runRepo      runs.Repository
	genRegistry  *registry.GeneratorRegistry
	validator    *validation.Validator
	logger       *logging.Logger
	batchSize    int
}

// NewRunService wires the service. runRepo may be nil to skip history.
func NewRunService(
	templateRepo *templates.FileRepository,
	runRepo runs.Repository,
	genRegistry *registry.GeneratorRegistry,
	logger *logging.Logger,
	batchSize int,
) *RunService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RunService{
		templateRepo: templateRepo,
		runRepo:      runRepo,
		genRegistry:  genRegistry,
		validator:    validation.NewValidator(genRegistry),
		logger:       logger.WithComponent("run_service"),
		batchSize:    batchSize,
	}
}

func (s *RunService) ValidateSchema(schema domain.DataSchema) error {
	return s.validator.Validate(schema)
}

func (s *RunService) ListTemplates() []string {
	if s.templateRepo == nil {
		return []string{}
	}
	return s.templateRepo.List()
}

func (s *RunService) ListPresets() []string {
	return config.PresetNames()
}

// RC exposes the rc file currently loaded by the template repository.
func (s *RunService) RC() config.RCResult {
	if s.templateRepo == nil {
		return config.RCResult{Status: config.RCNotFound}
	}
	return s.templateRepo.RC()
}

// GenerateUsers generates records from the built-in user schema.
func (s *RunService) GenerateUsers(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	req.Schema = config.DefaultUserSchema()
	req.Source = SourceUser
	return s.Generate(ctx, req)
}

// GenerateFromTemplate resolves name through the rc file and generates
// req.Count records from it.
func (s *RunService) GenerateFromTemplate(ctx context.Context, name string, req GenerateRequest) (*GenerateResult, error) {
	if s.templateRepo == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	schema, err := s.templateRepo.Get(name)
	if err != nil {
		return nil, err
	}
	req.Schema = schema
	req.Source = sourceTemplate + name
	return s.Generate(ctx, req)
}

// GeneratePreset generates req.Count records from a built-in preset schema.
func (s *RunService) GeneratePreset(ctx context.Context, name string, req GenerateRequest) (*GenerateResult, error) {
	schema, err := config.Preset(name)
	if err != nil {
		return nil, err
	}
	req.Schema = schema
	req.Source = sourcePreset + name
	return s.Generate(ctx, req)
}

func (s *RunService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Source == "" {
		req.Source = SourceCustom
	}
	if err := s.validator.Validate(req.Schema); err != nil {
		return nil, err
	}
	if req.Count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", req.Count)
	}
	if req.Target != nil {
		if err := s.validator.ValidateTarget(req.Target); err != nil {
			return nil, err
		}
		if err := validation.ValidateColumns(req.Schema.Names()); err != nil {
			return nil, fmt.Errorf("schema cannot be loaded into a table: %w", err)
		}
	}

	format, err := s.resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}
	seed := s.resolveSeed(req.Seed)
	locale := s.resolveLocale(req.Locale)

	params := hashing.RunParams{Count: req.Count, Seed: seed, Locale: locale, Format: format, Target: req.Target}
	run, err := s.startRun(req.Source, req.Schema, params, outputLabel(req.Output, req.Target))
	if err != nil {
		return nil, err
	}

	executor := exec.NewExecutor(s.genRegistry, exec.WithSeed(seed), exec.WithLocale(locale), exec.WithLogger(s.logger))
	result := &GenerateResult{Run: run}

	result.Records, err = executor.Generate(req.Schema, req.Count)
	if err != nil {
		return nil, s.failRun(run, err)
	}
	result.Rendered, err = export.Export(result.Records, format)
	if err != nil {
		return nil, s.failRun(run, err)
	}
	if req.Output != "" {
		if err := export.WriteFile(req.Output, result.Records, format); err != nil {
			return nil, s.failRun(run, err)
		}
	}
	if req.Target != nil {
		result.Load, err = s.load(ctx, executor, req.Schema, result.Records, req.Target)
		if err != nil {
			return nil, s.failRun(run, err)
		}
	}

	s.finishRun(run, len(result.Records), result.Load)
	return result, nil
}

func (s *RunService) GenerateRelationships(ctx context.Context, req RelationshipsRequest) (*RelationshipsResult, error) {
	if req.UserSchema == nil {
		req.UserSchema = config.DefaultUserSchema()
	}
	if req.OrderSchema == nil {
		req.OrderSchema = config.DefaultOrderSchema()
	}
	if err := s.validator.Validate(req.UserSchema); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	if err := s.validator.Validate(req.OrderSchema); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}

	format, err := s.resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}
	seed := s.resolveSeed(req.Seed)
	locale := s.resolveLocale(req.Locale)

	combined := append(append(domain.DataSchema{}, req.UserSchema...), req.OrderSchema...)
	params := hashing.RunParams{Count: req.UserCount, OrderCount: req.OrderCount, Seed: seed, Locale: locale, Format: format}
	run, err := s.startRun(SourceRelationships, combined, params, req.OutputDir)
	if err != nil {
		return nil, err
	}

	executor := exec.NewExecutor(s.genRegistry, exec.WithSeed(seed), exec.WithLocale(locale), exec.WithLogger(s.logger))
	rel, err := executor.GenerateWithRelationships(req.UserSchema, req.OrderSchema, req.UserCount, req.OrderCount)
	if err != nil {
		return nil, s.failRun(run, err)
	}

	result := &RelationshipsResult{Run: run, Relationships: rel}
	if result.Users, err = export.Export(rel.Users, format); err != nil {
		return nil, s.failRun(run, err)
	}
	if result.Orders, err = export.Export(rel.Orders, format); err != nil {
		return nil, s.failRun(run, err)
	}
	if req.OutputDir != "" {
		for name, records := range map[string][]domain.Record{"users": rel.Users, "orders": rel.Orders} {
			path := filepath.Join(req.OutputDir, name+"."+string(format))
			if err := export.WriteFile(path, records, format); err != nil {
				return nil, s.failRun(run, err)
			}
		}
	}

	s.finishRun(run, len(rel.Users)+len(rel.Orders), nil)
	return result, nil
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("%w: %s", runs.ErrRunNotFound, id)
	}
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return []*domain.Run{}, nil
	}
	return s.runRepo.List(limit, status)
}

func (s *RunService) load(ctx context.Context, executor *exec.Executor, schema domain.DataSchema, records []domain.Record, cfg *domain.TargetConfig) (*exec.LoadStats, error) {
	target, err := NewTarget(cfg)
	if err != nil {
		return nil, err
	}
	stats, err := executor.Load(ctx, schema, records, target, cfg.Table, cfg.Mode, s.batchSize)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLoad(cfg.Kind, stats.RowsLoaded)
	return stats, nil
}

func (s *RunService) resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	if rc := s.RC(); rc.Status == config.RCFound && rc.Config.Seed != nil {
		return *rc.Config.Seed
	}
	return generateSeed()
}

func (s *RunService) resolveLocale(locale string) string {
	if locale != "" {
		return locale
	}
	if rc := s.RC(); rc.Status == config.RCFound {
		return rc.Config.Locale
	}
	return "en"
}

func (s *RunService) resolveFormat(format domain.Format) (domain.Format, error) {
	if format == "" {
		if rc := s.RC(); rc.Status == config.RCFound {
			format = rc.Config.DefaultFormat
		} else {
			format = domain.FormatJSON
		}
	}
	return export.ParseFormat(string(format))
}

func (s *RunService) startRun(source string, schema domain.DataSchema, params hashing.RunParams, output string) (*domain.Run, error) {
	schemaHash, err := hashing.HashSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to hash schema: %w", err)
	}
	configHash, err := hashing.HashRunConfig(schemaHash, params)
	if err != nil {
		return nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	run := &domain.Run{
		Source:     source,
		SchemaHash: schemaHash,
		ConfigHash: configHash,
		Seed:       params.Seed,
		Locale:     params.Locale,
		Count:      params.Count + params.OrderCount,
		Format:     params.Format,
		Output:     output,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(run); err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	s.logger.Infow("run started", map[string]any{
		"run_id": run.ID,
		"source": source,
		"seed":   params.Seed,
		"locale": params.Locale,
		"count":  run.Count,
	})
	return run, nil
}

func (s *RunService) finishRun(run *domain.Run, records int, load *exec.LoadStats) {
	now := time.Now().UTC()
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now

	stats := map[string]any{"records": records}
	if load != nil {
		stats["load"] = load
	}
	if b, err := json.Marshal(stats); err == nil {
		run.Stats = b
	}
	s.updateRun(run)

	elapsed := now.Sub(run.StartedAt)
	metrics.ObserveRun(run.Source, string(run.Status), records, elapsed)
	s.logger.Infow("run completed", map[string]any{
		"run_id":   run.ID,
		"records":  records,
		"duration": elapsed.Seconds(),
	})
}

// failRun marks the run failed and hands back err for the caller to return.
func (s *RunService) failRun(run *domain.Run, err error) error {
	now := time.Now().UTC()
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	run.CompletedAt = &now
	s.updateRun(run)

	metrics.ObserveRun(run.Source, string(run.Status), 0, now.Sub(run.StartedAt))
	s.logger.Errorw("run failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	return err
}

func (s *RunService) updateRun(run *domain.Run) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

func outputLabel(path string, target *domain.TargetConfig) string {
	if target != nil {
		return fmt.Sprintf("%s:%s/%s", target.Kind, RedactDSN(target.DSN), target.Table)
	}
	return path
}

func generateSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
