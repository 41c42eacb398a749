package generators

import (
	"math/rand"
	"sync"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/datacraft/internal/domain"
)

// faker keeps its random source in package state; fakerMu serializes every
// executor that reseeds and then draws from it.
var fakerMu sync.Mutex

// LockFaker reseeds faker from seed and holds it until the returned func is
// called. Faker-backed values are reproducible only inside such a section.
func LockFaker(seed int64) (unlock func()) {
	fakerMu.Lock()
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
	faker.SetCryptoSource(rand.New(rand.NewSource(seed ^ 0x5deece66d)))
	return fakerMu.Unlock
}

type FakerEmailGenerator struct{}

func (g *FakerEmailGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(faker.Email()), nil
}

func (g *FakerEmailGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type FakerPhoneGenerator struct{}

func (g *FakerPhoneGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(faker.Phonenumber()), nil
}

func (g *FakerPhoneGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type ContentGenerator struct{}

func (g *ContentGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	switch ctx.Field.Format {
	case domain.ContentSentence:
		return domain.Scalar(faker.Sentence()), nil
	case domain.ContentParagraph:
		return domain.Scalar(faker.Paragraph()), nil
	default:
		return domain.Value{}, domain.ErrInvalidContentFormat
	}
}

func (g *ContentGenerator) Validate(spec domain.FieldSchema) error {
	switch spec.Format {
	case domain.ContentSentence, domain.ContentParagraph:
		return nil
	default:
		return domain.ErrInvalidContentFormat
	}
}

type cardScheme struct {
	length   int
	prefixes []string
}

// faker's CCNumber remembers the first card type it picks for the rest of
// the process, so card numbers are drawn from the executor rng instead.
var cardSchemes = []cardScheme{
	{16, []string{"4539", "4556", "4916", "4532", "4929", "4485", "4716"}},
	{16, []string{"51", "52", "53", "54", "55"}},
	{15, []string{"34", "37"}},
	{16, []string{"6011"}},
	{16, []string{"3528", "3538", "3548", "3558", "3568", "3578", "3588"}},
	{14, []string{"36", "38", "39"}},
}

type CreditCardGenerator struct{}

func (g *CreditCardGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(CardNumber(rng)), nil
}

func (g *CreditCardGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

// CardNumber returns a Luhn-valid number for a randomly chosen card scheme.
func CardNumber(rng *rand.Rand) string {
	scheme := cardSchemes[rng.Intn(len(cardSchemes))]
	digits := []byte(scheme.prefixes[rng.Intn(len(scheme.prefixes))])
	for len(digits) < scheme.length-1 {
		digits = append(digits, byte('0'+rng.Intn(10)))
	}
	return string(append(digits, luhnDigit(digits)))
}

// luhnDigit computes the check digit to append to payload.
func luhnDigit(payload []byte) byte {
	sum := 0
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		// payload digits are doubled starting from the rightmost one
		if (len(payload)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}

type FakerIPGenerator struct{}

func (g *FakerIPGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(faker.IPv4()), nil
}

func (g *FakerIPGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type FakerURLGenerator struct{}

func (g *FakerURLGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(faker.URL()), nil
}

func (g *FakerURLGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}
