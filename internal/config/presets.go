package config

import (
	"fmt"
	"sort"

	"github.com/mmrzaf/datacraft/internal/domain"
)

// Built-in record shapes available without any project setup. The user
// preset is the same schema generate:user uses.
var presets = map[string]string{
	"user": userTemplate,
	"product": `{
  "id": {"type": "uuid"},
  "name": {"type": "string", "provider": "word"},
  "price": {"type": "number", "float": true, "min": 1, "max": 1000, "precision": 0.01},
  "category": {"type": "string", "options": ["Books", "Electronics", "Garden", "Grocery", "Health", "Home", "Music", "Outdoors", "Sports", "Toys"]}
}`,
	"address": `{
  "id": {"type": "uuid"},
  "street": {"type": "string", "provider": "street"},
  "city": {"type": "string", "provider": "city"},
  "country": {"type": "string", "provider": "country"}
}`,
	"transaction": `{
  "id": {"type": "uuid"},
  "userId": {"type": "uuid"},
  "productId": {"type": "uuid"},
  "amount": {"type": "number", "float": true, "min": 0, "max": 1000, "precision": 0.01},
  "date": {"type": "date", "min": "-365d"}
}`,
	"review": `{
  "id": {"type": "uuid"},
  "userId": {"type": "uuid"},
  "productId": {"type": "uuid"},
  "rating": {"type": "number", "min": 1, "max": 5},
  "comment": {"type": "content", "format": "sentence"},
  "date": {"type": "date", "min": "-365d"}
}`,
	"order": `{
  "id": {"type": "uuid"},
  "userId": {"type": "uuid"},
  "totalAmount": {"type": "number", "float": true, "min": 0, "max": 1000, "precision": 0.01},
  "orderDate": {"type": "date", "min": "-365d"},
  "deliveryDate": {"type": "date", "min": "+1d", "max": "+30d"}
}`,
}

// PresetNames returns the built-in preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the schema of a built-in preset.
func Preset(name string) (domain.DataSchema, error) {
	doc, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, name)
	}
	return mustSchema(doc), nil
}
