package generators

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/datacraft/internal/domain"
)

// String providers recognized by the string kind.
const (
	ProviderName      = "name"
	ProviderFirstName = "firstName"
	ProviderLastName  = "lastName"
	ProviderUsername  = "username"
	ProviderWord      = "word"
	ProviderStreet    = "street"
	ProviderCity      = "city"
	ProviderCountry   = "country"
)

type StringGenerator struct{}

func (g *StringGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	spec := ctx.Field
	switch {
	case spec.Options != nil:
		v, err := pickOption(rng, spec)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Scalar(fmt.Sprint(v)), nil
	case spec.Pattern != "":
		return domain.Scalar(ReplaceSymbols(rng, spec.Pattern)), nil
	case spec.Length > 0:
		return domain.Scalar(randomAlpha(rng, spec.Length)), nil
	case spec.Provider != "":
		s, err := fromProvider(rng, ctx.Locale, spec.Provider)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Scalar(s), nil
	default:
		return domain.Scalar(randomAlpha(rng, defaultStringLength)), nil
	}
}

func (g *StringGenerator) Validate(spec domain.FieldSchema) error {
	if spec.Length < 0 {
		return fmt.Errorf("length must be >= 0, got %d", spec.Length)
	}
	if spec.Provider != "" && !isStringProvider(spec.Provider) {
		return fmt.Errorf("unknown string provider: %s", spec.Provider)
	}
	return validateOptions(spec)
}

// ReplaceSymbols substitutes '#' with a digit, '?' with an uppercase letter
// and '*' with either. Every other rune is copied.
func ReplaceSymbols(rng *rand.Rand, pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, r := range pattern {
		switch r {
		case '#':
			b.WriteByte(digits[rng.Intn(len(digits))])
		case '?':
			b.WriteByte(upperLetters[rng.Intn(len(upperLetters))])
		case '*':
			const mixed = digits + upperLetters
			b.WriteByte(mixed[rng.Intn(len(mixed))])
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isStringProvider(p string) bool {
	switch p {
	case ProviderName, ProviderFirstName, ProviderLastName, ProviderUsername, ProviderWord,
		ProviderStreet, ProviderCity, ProviderCountry:
		return true
	default:
		return false
	}
}

func fromProvider(rng *rand.Rand, loc *Locale, provider string) (string, error) {
	switch provider {
	case ProviderName:
		return pick(rng, loc.FirstNames) + " " + pick(rng, loc.LastNames), nil
	case ProviderFirstName:
		return pick(rng, loc.FirstNames), nil
	case ProviderLastName:
		return pick(rng, loc.LastNames), nil
	case ProviderUsername:
		return faker.Username(), nil
	case ProviderWord:
		return faker.Word(), nil
	case ProviderStreet:
		return loc.Street(rng), nil
	case ProviderCity:
		return pick(rng, loc.Cities), nil
	case ProviderCountry:
		return pick(rng, loc.Countries), nil
	default:
		return "", fmt.Errorf("unknown string provider: %s", provider)
	}
}
