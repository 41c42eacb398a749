package generators

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
)

// Generator produces one value for a field of its kind. Implementations draw
// all randomness from rng so a seeded executor reproduces its output.
type Generator interface {
	Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error)
	Validate(spec domain.FieldSchema) error
}

type GeneratorContext struct {
	Field  domain.FieldSchema
	Locale *Locale
	Now    time.Time
}

const (
	defaultStringLength = 10
	lowerLetters        = "abcdefghijklmnopqrstuvwxyz"
	upperLetters        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits              = "0123456789"
)

func randomAlpha(rng *rand.Rand, n int) string {
	const letters = upperLetters + lowerLetters
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	case json.Number:
		i, err := val.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
