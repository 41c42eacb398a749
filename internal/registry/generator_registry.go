package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/generators"
)

type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[domain.FieldKind]generators.Generator
}

func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{
		generators: make(map[domain.FieldKind]generators.Generator),
	}
}

func (r *GeneratorRegistry) Register(kind domain.FieldKind, gen generators.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[kind] = gen
}

// Get resolves a generator by kind after normalizing legacy aliases.
func (r *GeneratorRegistry) Get(kind domain.FieldKind) (generators.Generator, error) {
	kind = domain.NormalizeKind(string(kind))
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFieldType, kind)
	}
	return gen, nil
}

func (r *GeneratorRegistry) List() []domain.FieldKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.FieldKind, 0, len(r.generators))
	for kind := range r.generators {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func DefaultGeneratorRegistry() *GeneratorRegistry {
	r := NewGeneratorRegistry()
	r.Register(domain.KindString, &generators.StringGenerator{})
	r.Register(domain.KindNumber, &generators.NumberGenerator{})
	r.Register(domain.KindBoolean, &generators.BooleanGenerator{})
	r.Register(domain.KindDate, &generators.DateGenerator{})
	r.Register(domain.KindEmail, &generators.FakerEmailGenerator{})
	r.Register(domain.KindPhone, &generators.FakerPhoneGenerator{})
	r.Register(domain.KindAddress, &generators.AddressGenerator{})
	r.Register(domain.KindContent, &generators.ContentGenerator{})
	r.Register(domain.KindCreditCard, &generators.CreditCardGenerator{})
	r.Register(domain.KindCompany, &generators.CompanyGenerator{})
	r.Register(domain.KindIP, &generators.FakerIPGenerator{})
	r.Register(domain.KindURL, &generators.FakerURLGenerator{})
	r.Register(domain.KindCurrency, &generators.CurrencyGenerator{})
	r.Register(domain.KindColor, &generators.ColorGenerator{})
	r.Register(domain.KindUUID, &generators.UUID4Generator{})
	r.Register(domain.KindImage, &generators.ImageGenerator{})
	return r
}
