package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/mmrzaf/datacraft/internal/domain"
)

// HashSchema fingerprints a schema. Field order is significant since it
// fixes output order; option maps inside a field are not.
func HashSchema(schema domain.DataSchema) (string, error) {
	data, err := json.Marshal(canonicalizeSchema(schema))
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeSchema(schema domain.DataSchema) []map[string]interface{} {
	fields := make([]map[string]interface{}, len(schema))
	for i, f := range schema {
		spec := f.Schema.Normalize()
		field := map[string]interface{}{
			"name": f.Name,
			"type": spec.Type,
		}
		if spec.Pattern != "" {
			field["pattern"] = spec.Pattern
		}
		if spec.Length != 0 {
			field["length"] = spec.Length
		}
		if spec.Min != nil {
			field["min"] = canonicalizeValue(spec.Min)
		}
		if spec.Max != nil {
			field["max"] = canonicalizeValue(spec.Max)
		}
		if spec.Float {
			field["float"] = true
		}
		if spec.Precision != 0 {
			field["precision"] = spec.Precision
		}
		if spec.Format != "" {
			field["format"] = spec.Format
		}
		if spec.Provider != "" {
			field["provider"] = spec.Provider
		}
		if spec.Options != nil {
			opts := make([]interface{}, len(spec.Options))
			for j, o := range spec.Options {
				opts[j] = canonicalizeValue(o)
			}
			field["options"] = opts
		}
		if spec.Weights != nil {
			field["weights"] = spec.Weights
		}
		fields[i] = field
	}
	return fields
}

func canonicalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return canonicalizeParams(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return val
	}
}

func canonicalizeParams(params map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		result[k] = canonicalizeValue(params[k])
	}
	return result
}
