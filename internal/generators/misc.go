package generators

import (
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/datacraft/internal/domain"
)

type BooleanGenerator struct{}

func (g *BooleanGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(rng.Intn(2) == 1), nil
}

func (g *BooleanGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type ColorGenerator struct{}

func (g *ColorGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	return domain.Scalar(fmt.Sprintf("#%06x", rng.Intn(1<<24))), nil
}

func (g *ColorGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

var imageSizes = [][2]int{{640, 480}, {800, 600}, {1024, 768}, {1280, 720}, {300, 300}}

type ImageGenerator struct{}

func (g *ImageGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	size := imageSizes[rng.Intn(len(imageSizes))]
	return domain.Scalar(fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", faker.Word(), size[0], size[1])), nil
}

func (g *ImageGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type CurrencyGenerator struct{}

type currencyInfo struct {
	code, name, symbol string
}

var currencies = []currencyInfo{
	{"USD", "US Dollar", "$"},
	{"EUR", "Euro", "€"},
	{"GBP", "Pound Sterling", "£"},
	{"JPY", "Yen", "¥"},
	{"CHF", "Swiss Franc", "CHF"},
	{"CAD", "Canadian Dollar", "$"},
	{"AUD", "Australian Dollar", "$"},
	{"CNY", "Yuan Renminbi", "¥"},
	{"INR", "Indian Rupee", "₹"},
	{"BRL", "Brazilian Real", "R$"},
	{"MXN", "Mexican Peso", "$"},
	{"SEK", "Swedish Krona", "kr"},
	{"NOK", "Norwegian Krone", "kr"},
	{"PLN", "Zloty", "zł"},
	{"TRY", "Turkish Lira", "₺"},
}

func (g *CurrencyGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	c := currencies[rng.Intn(len(currencies))]
	return domain.Object(
		domain.StringField("code", c.code),
		domain.StringField("name", c.name),
		domain.StringField("symbol", c.symbol),
	), nil
}

func (g *CurrencyGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type AddressGenerator struct{}

func (g *AddressGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	loc := ctx.Locale
	return domain.Object(
		domain.StringField("street", loc.Street(rng)),
		domain.StringField("city", pick(rng, loc.Cities)),
		domain.StringField("country", pick(rng, loc.Countries)),
		domain.StringField("zipCode", ReplaceSymbols(rng, loc.ZipPattern)),
	), nil
}

func (g *AddressGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}

type CompanyGenerator struct{}

var (
	catchAdjectives = []string{
		"Adaptive", "Balanced", "Centralized", "Configurable", "Cross-platform",
		"Customer-focused", "Decentralized", "Distributed", "Enhanced", "Ergonomic",
		"Expanded", "Front-line", "Integrated", "Innovative", "Multi-layered",
		"Optimized", "Proactive", "Profound", "Reactive", "Robust", "Seamless",
		"Streamlined", "Synergized", "Universal", "User-friendly", "Virtual",
	}
	catchDescriptors = []string{
		"24/7", "asymmetric", "bandwidth-monitored", "clear-thinking", "content-based",
		"dynamic", "executive", "fault-tolerant", "global", "heuristic", "holistic",
		"interactive", "logistical", "mission-critical", "modular", "real-time",
		"scalable", "static", "tertiary", "zero-defect",
	}
	catchNouns = []string{
		"ability", "algorithm", "alliance", "architecture", "capability", "database",
		"framework", "hierarchy", "infrastructure", "initiative", "interface",
		"methodology", "middleware", "paradigm", "policy", "protocol", "solution",
		"strategy", "throughput", "workforce",
	}
	bsVerbs = []string{
		"aggregate", "architect", "benchmark", "deliver", "disintermediate", "drive",
		"e-enable", "embrace", "empower", "engage", "enhance", "facilitate",
		"grow", "harness", "incubate", "leverage", "monetize", "optimize",
		"orchestrate", "reinvent", "scale", "streamline", "synergize", "transform",
	}
	bsAdjectives = []string{
		"B2B", "back-end", "best-of-breed", "bleeding-edge", "cross-media", "customized",
		"dynamic", "end-to-end", "enterprise", "extensible", "frictionless", "global",
		"granular", "intuitive", "killer", "mission-critical", "next-generation",
		"real-time", "robust", "scalable", "seamless", "strategic", "vertical",
	}
	bsNouns = []string{
		"action-items", "applications", "bandwidth", "channels", "communities",
		"content", "deliverables", "e-markets", "experiences", "functionalities",
		"infrastructures", "interfaces", "markets", "metrics", "models", "networks",
		"paradigms", "platforms", "solutions", "supply-chains", "synergies",
		"systems", "technologies", "users", "web-readiness",
	}
)

func (g *CompanyGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	loc := ctx.Locale
	name := pick(rng, loc.LastNames) + " " + pick(rng, loc.CompanySuffixes)
	if rng.Intn(3) == 0 {
		name = pick(rng, loc.LastNames) + " & " + pick(rng, loc.LastNames)
	}
	catchPhrase := pick(rng, catchAdjectives) + " " + pick(rng, catchDescriptors) + " " + pick(rng, catchNouns)
	bs := pick(rng, bsVerbs) + " " + pick(rng, bsAdjectives) + " " + pick(rng, bsNouns)
	return domain.Object(
		domain.StringField("name", name),
		domain.StringField("catchPhrase", catchPhrase),
		domain.StringField("bs", bs),
	), nil
}

func (g *CompanyGenerator) Validate(spec domain.FieldSchema) error {
	return nil
}
