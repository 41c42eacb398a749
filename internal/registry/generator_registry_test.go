package registry

import (
	"errors"
	"testing"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCoversEveryKind(t *testing.T) {
	r := DefaultGeneratorRegistry()
	for _, kind := range domain.AllFieldKinds {
		gen, err := r.Get(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, gen, kind)
	}
	assert.Len(t, r.List(), len(domain.AllFieldKinds))
}

func TestRegistryNormalizesLegacyKinds(t *testing.T) {
	r := DefaultGeneratorRegistry()
	for _, name := range []string{"integer", "float"} {
		_, err := r.Get(domain.FieldKind(name))
		assert.NoError(t, err, name)
	}
}

func TestRegistryUnknownKind(t *testing.T) {
	r := DefaultGeneratorRegistry()
	_, err := r.Get("hologram")
	if !errors.Is(err, domain.ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}
