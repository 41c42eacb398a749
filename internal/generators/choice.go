package generators

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mmrzaf/datacraft/internal/domain"
)

// validateOptions checks the options/weights pair shared by string and
// number fields.
func validateOptions(spec domain.FieldSchema) error {
	if spec.Options == nil {
		if spec.Weights != nil {
			return errors.New("'weights' requires 'options'")
		}
		return nil
	}
	if len(spec.Options) == 0 {
		return errors.New("'options' cannot be empty")
	}
	if spec.Weights == nil {
		return nil
	}
	if len(spec.Weights) != len(spec.Options) {
		return errors.New("'weights' and 'options' must have the same length")
	}
	total := 0.0
	for _, w := range spec.Weights {
		if w < 0 {
			return fmt.Errorf("negative weight: %v", w)
		}
		total += w
	}
	if total == 0 {
		return errors.New("total weight is zero")
	}
	return nil
}

func pickOption(rng *rand.Rand, spec domain.FieldSchema) (interface{}, error) {
	if err := validateOptions(spec); err != nil {
		return nil, err
	}
	values := spec.Options
	if spec.Weights == nil {
		return values[rng.Intn(len(values))], nil
	}

	totalWeight := 0.0
	for _, w := range spec.Weights {
		totalWeight += w
	}

	r := rng.Float64() * totalWeight
	cumWeight := 0.0
	for i, w := range spec.Weights {
		cumWeight += w
		if r < cumWeight {
			return values[i], nil
		}
	}

	return values[len(values)-1], nil
}
