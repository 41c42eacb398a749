package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmrzaf/datacraft/internal/domain"
)

const (
	rootElement   = "data"
	recordElement = "record"
	indent        = "  "
)

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (domain.Format, error) {
	f := domain.Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case domain.FormatJSON, domain.FormatCSV, domain.FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, s)
	}
}

// Export serializes records as JSON, CSV or XML text.
func Export(records []domain.Record, format domain.Format) (string, error) {
	switch format {
	case domain.FormatJSON:
		return toJSON(records)
	case domain.FormatCSV:
		return toCSV(records), nil
	case domain.FormatXML:
		return toXML(records)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// WriteFile exports records and writes the text to path, creating parent
// directories as needed.
func WriteFile(path string, records []domain.Record, format domain.Format) error {
	out, err := Export(records, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func toJSON(records []domain.Record) (string, error) {
	if records == nil {
		records = []domain.Record{}
	}
	b, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// toCSV takes its header from the first record. Strings and nested objects
// are quoted; numbers and booleans are written bare.
func toCSV(records []domain.Record) string {
	if len(records) == 0 {
		return ""
	}
	headers := records[0].Keys()

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(h))
	}
	for _, rec := range records {
		b.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			v, ok := rec.Get(h)
			if !ok {
				continue
			}
			b.WriteString(csvCell(v))
		}
	}
	return b.String()
}

func csvCell(v domain.Value) string {
	if v.IsObject() {
		return quote(v.String())
	}
	switch v.Raw().(type) {
	case nil:
		return ""
	case int, int64, float64, bool:
		return v.String()
	default:
		return quote(v.String())
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func toXML(records []domain.Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)

	root := xml.StartElement{Name: xml.Name{Local: rootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return "", err
	}
	for _, rec := range records {
		start := xml.StartElement{Name: xml.Name{Local: recordElement}}
		if err := enc.EncodeToken(start); err != nil {
			return "", err
		}
		for _, f := range rec.Fields() {
			if err := encodeValue(enc, f.Name, f.Value); err != nil {
				return "", err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return "", err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeValue(enc *xml.Encoder, name string, v domain.Value) error {
	start := xml.StartElement{Name: xml.Name{Local: elementName(name)}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if v.IsObject() {
		for _, f := range v.Fields() {
			if err := encodeValue(enc, f.Name, f.Value); err != nil {
				return err
			}
		}
	} else if err := enc.EncodeToken(xml.CharData(v.String())); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// elementName replaces characters that cannot appear in an XML name.
func elementName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r > 0x7f
		if i == 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')) {
			b.WriteByte('_')
		}
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
