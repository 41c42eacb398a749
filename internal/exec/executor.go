package exec

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/generators"
	"github.com/mmrzaf/datacraft/internal/logging"
	"github.com/mmrzaf/datacraft/internal/registry"
)

// Executor turns schemas into records. It owns its random source and is not
// safe for concurrent use; build one per request.
type Executor struct {
	genRegistry *registry.GeneratorRegistry
	seed        int64
	rng         *rand.Rand
	locale      *generators.Locale
	now         func() time.Time
	logger      *logging.Logger
}

type Option func(*Executor)

func WithSeed(seed int64) Option {
	return func(e *Executor) { e.seed = seed }
}

func WithLocale(tag string) Option {
	return func(e *Executor) { e.locale = generators.ResolveLocale(tag) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

func NewExecutor(genRegistry *registry.GeneratorRegistry, opts ...Option) *Executor {
	e := &Executor{
		genRegistry: genRegistry,
		seed:        time.Now().UnixNano(),
		locale:      generators.ResolveLocale(generators.DefaultLocale),
		now:         time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	return e
}

func (e *Executor) Seed() int64 { return e.seed }

func (e *Executor) Locale() string { return e.locale.Code }

// Relationships pairs a user set with orders that reference it by userId.
type Relationships struct {
	Users  []domain.Record `json:"users"`
	Orders []domain.Record `json:"orders"`
}

type boundField struct {
	name string
	spec domain.FieldSchema
	gen  generators.Generator
}

// GenerateField produces a single value for one field schema.
func (e *Executor) GenerateField(field domain.FieldSchema) (domain.Value, error) {
	bf, err := e.bind("", field)
	if err != nil {
		return domain.Value{}, err
	}
	unlock := e.lockFaker()
	defer unlock()
	return e.generateValue(bf)
}

// Generate builds count records, each holding every schema field in schema
// order. A failing field aborts the call with no records.
func (e *Executor) Generate(schema domain.DataSchema, count int) ([]domain.Record, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", count)
	}
	fields, err := e.bindSchema(schema)
	if err != nil {
		return nil, err
	}

	unlock := e.lockFaker()
	defer unlock()

	start := time.Now()
	records, err := e.generate(fields, count)
	if err != nil {
		return nil, err
	}
	e.logger.Debugw("records generated", map[string]any{
		"count":       count,
		"fields":      len(fields),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return records, nil
}

// GenerateWithRelationships generates userCount users, then orderCount
// orders whose userId is the id of a uniformly drawn user.
func (e *Executor) GenerateWithRelationships(userSchema, orderSchema domain.DataSchema, userCount, orderCount int) (*Relationships, error) {
	if userCount < 0 || orderCount < 0 {
		return nil, fmt.Errorf("counts must be >= 0, got users=%d orders=%d", userCount, orderCount)
	}
	if orderCount > 0 && userCount == 0 {
		return nil, domain.ErrNoUsers
	}
	userFields, err := e.bindSchema(userSchema)
	if err != nil {
		return nil, fmt.Errorf("user schema: %w", err)
	}
	orderFields, err := e.bindSchema(orderSchema)
	if err != nil {
		return nil, fmt.Errorf("order schema: %w", err)
	}

	unlock := e.lockFaker()
	defer unlock()

	users, err := e.generate(userFields, userCount)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}

	orders := make([]domain.Record, 0, orderCount)
	for i := 0; i < orderCount; i++ {
		user := users[e.rng.Intn(len(users))]
		id, ok := user.Get("id")
		if !ok {
			return nil, domain.ErrMissingUserID
		}
		order, err := e.generateRecord(orderFields)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		order.Set("userId", id)
		orders = append(orders, order)
	}

	e.logger.Debugw("relationships generated", map[string]any{
		"users":  userCount,
		"orders": orderCount,
	})
	return &Relationships{Users: users, Orders: orders}, nil
}

func (e *Executor) generate(fields []boundField, count int) ([]domain.Record, error) {
	records := make([]domain.Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := e.generateRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Executor) generateRecord(fields []boundField) (domain.Record, error) {
	rec := domain.NewRecord()
	for _, f := range fields {
		val, err := e.generateValue(f)
		if err != nil {
			return domain.Record{}, fmt.Errorf("field '%s': %w", f.name, err)
		}
		rec.Set(f.name, val)
	}
	return rec, nil
}

func (e *Executor) generateValue(f boundField) (domain.Value, error) {
	ctx := generators.GeneratorContext{
		Field:  f.spec,
		Locale: e.locale,
		Now:    e.now(),
	}
	return f.gen.Generate(e.rng, ctx)
}

func (e *Executor) bindSchema(schema domain.DataSchema) ([]boundField, error) {
	fields := make([]boundField, 0, len(schema))
	for _, f := range schema {
		bf, err := e.bind(f.Name, f.Schema)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.Name, err)
		}
		fields = append(fields, bf)
	}
	return fields, nil
}

func (e *Executor) bind(name string, field domain.FieldSchema) (boundField, error) {
	spec := field.Normalize()
	gen, err := e.genRegistry.Get(spec.Type)
	if err != nil {
		return boundField{}, err
	}
	if err := gen.Validate(spec); err != nil {
		return boundField{}, err
	}
	return boundField{name: name, spec: spec, gen: gen}, nil
}

// lockFaker reseeds faker from this executor's source so faker-backed kinds
// follow the executor seed.
func (e *Executor) lockFaker() func() {
	return generators.LockFaker(e.rng.Int63())
}
