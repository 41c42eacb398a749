package generators

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mmrzaf/datacraft/internal/domain"
)

const (
	defaultNumberMin = 0
	defaultNumberMax = 100
	defaultPrecision = 0.01
)

type NumberGenerator struct{}

func (g *NumberGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	spec := ctx.Field
	if spec.Options != nil {
		v, err := pickOption(rng, spec)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Scalar(v), nil
	}

	if spec.Float {
		min, max, err := floatBounds(spec)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Scalar(uniformFloat(rng, min, max, precisionOf(spec))), nil
	}

	min, max, err := intBounds(spec)
	if err != nil {
		return domain.Value{}, err
	}
	return domain.Scalar(min + rng.Int63n(max-min+1)), nil
}

func (g *NumberGenerator) Validate(spec domain.FieldSchema) error {
	if err := validateOptions(spec); err != nil {
		return err
	}
	if spec.Precision < 0 {
		return fmt.Errorf("precision must be positive, got %v", spec.Precision)
	}
	if spec.Float {
		_, _, err := floatBounds(spec)
		return err
	}
	_, _, err := intBounds(spec)
	return err
}

func floatBounds(spec domain.FieldSchema) (float64, float64, error) {
	min, max := float64(defaultNumberMin), float64(defaultNumberMax)
	if spec.Min != nil {
		v, ok := toFloat64(spec.Min)
		if !ok {
			return 0, 0, fmt.Errorf("'min' must be a number, got %v", spec.Min)
		}
		min = v
	}
	if spec.Max != nil {
		v, ok := toFloat64(spec.Max)
		if !ok {
			return 0, 0, fmt.Errorf("'max' must be a number, got %v", spec.Max)
		}
		max = v
	}
	if max < min {
		return 0, 0, fmt.Errorf("max (%v) must be >= min (%v)", max, min)
	}
	return min, max, nil
}

// intBounds rounds fractional bounds inward, so min 0.5 and max 2.5 draw
// from [1,2].
func intBounds(spec domain.FieldSchema) (int64, int64, error) {
	min, max := int64(defaultNumberMin), int64(defaultNumberMax)
	rawMin, rawMax := interface{}(min), interface{}(max)
	if spec.Min != nil {
		rawMin = spec.Min
		v, ok := intBound(spec.Min, math.Ceil)
		if !ok {
			return 0, 0, fmt.Errorf("'min' must be a number, got %v", spec.Min)
		}
		min = v
	}
	if spec.Max != nil {
		rawMax = spec.Max
		v, ok := intBound(spec.Max, math.Floor)
		if !ok {
			return 0, 0, fmt.Errorf("'max' must be a number, got %v", spec.Max)
		}
		max = v
	}
	if max < min {
		return 0, 0, fmt.Errorf("no integer between min (%v) and max (%v)", rawMin, rawMax)
	}
	if max-min == math.MaxInt64 || max-min < 0 {
		return 0, 0, errors.New("integer range too large")
	}
	return min, max, nil
}

func intBound(raw interface{}, round func(float64) float64) (int64, bool) {
	switch raw.(type) {
	case int, int64:
		return toInt64(raw)
	}
	f, ok := toFloat64(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = round(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func precisionOf(spec domain.FieldSchema) float64 {
	if spec.Precision > 0 {
		return spec.Precision
	}
	return defaultPrecision
}

// uniformFloat draws from [min,max] and snaps to a multiple of precision,
// staying inside the range.
func uniformFloat(rng *rand.Rand, min, max, precision float64) float64 {
	v := min + rng.Float64()*(max-min)
	snapped := snapTo(math.Round(v/precision)*precision, precision)
	if snapped < min {
		snapped = snapTo(math.Ceil(min/precision)*precision, precision)
	}
	if snapped > max {
		snapped = snapTo(math.Floor(max/precision)*precision, precision)
	}
	if snapped < min || snapped > max {
		return v
	}
	return snapped
}

// snapTo trims binary noise such as 0.30000000000000004 left by the
// multiplication.
func snapTo(v, precision float64) float64 {
	d := decimals(precision)
	if d < 0 {
		return v
	}
	pow := math.Pow(10, float64(d))
	return math.Round(v*pow) / pow
}

// decimals returns the number of fractional digits in precision, or -1 if it
// has none worth rounding to.
func decimals(precision float64) int {
	for d := 0; d <= 12; d++ {
		scaled := precision * math.Pow(10, float64(d))
		if math.Abs(scaled-math.Round(scaled)) < 1e-9 {
			return d
		}
	}
	return -1
}
