package generators

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/mmrzaf/datacraft/internal/domain"
)

type UUID4Generator struct{}

func (g *UUID4Generator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	u, err := NewUUID(rng)
	if err != nil {
		return domain.Value{}, err
	}
	return domain.Scalar(u), nil
}

func (g *UUID4Generator) Validate(spec domain.FieldSchema) error {
	return nil
}

// NewUUID builds a version 4 UUID from rng bytes.
func NewUUID(rng *rand.Rand) (string, error) {
	uuidBytes := make([]byte, 16)
	rng.Read(uuidBytes)
	uuidBytes[6] = (uuidBytes[6] & 0x0f) | 0x40
	uuidBytes[8] = (uuidBytes[8] & 0x3f) | 0x80
	u, err := uuid.FromBytes(uuidBytes)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
