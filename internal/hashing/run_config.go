package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/datacraft/internal/domain"
)

// RunParams is everything besides the schema that shapes a run's output.
type RunParams struct {
	Count      int
	OrderCount int
	Seed       int64
	Locale     string
	Format     domain.Format
	Target     *domain.TargetConfig
}

type runConfigHashPayload struct {
	SchemaHash   string        `json:"schema_hash"`
	Count        int           `json:"count"`
	OrderCount   int           `json:"order_count,omitempty"`
	Seed         int64         `json:"seed"`
	Locale       string        `json:"locale"`
	Format       domain.Format `json:"format,omitempty"`
	TargetKind   string        `json:"target_kind,omitempty"`
	TargetSchema string        `json:"target_schema,omitempty"`
	TargetTable  string        `json:"target_table,omitempty"`
	Mode         string        `json:"mode,omitempty"`
}

// HashRunConfig fingerprints a run. Target DSNs are left out so credentials
// never influence or leak through the hash.
func HashRunConfig(schemaHash string, p RunParams) (string, error) {
	payload := runConfigHashPayload{
		SchemaHash: schemaHash,
		Count:      p.Count,
		OrderCount: p.OrderCount,
		Seed:       p.Seed,
		Locale:     p.Locale,
		Format:     p.Format,
	}
	if p.Target != nil {
		payload.TargetKind = p.Target.Kind
		payload.TargetSchema = p.Target.Schema
		payload.TargetTable = p.Target.Table
		payload.Mode = p.Target.Mode
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
