// Package export serializes saved calculations to files and reads them back.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/mortgage-calculator/internal/storage"
)

// ErrMalformedImport is returned when an imported document is not a saved
// calculation.
var ErrMalformedImport = errors.New("malformed import")

var whitespace = regexp.MustCompile(`\s+`)

// Export encodes a calculation as indented JSON.
func Export(calc storage.SavedCalculation) ([]byte, error) {
	data, err := json.MarshalIndent(calc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export calculation %s: %w", calc.ID, err)
	}
	return data, nil
}

// ExportYAML encodes a calculation as YAML.
func ExportYAML(calc storage.SavedCalculation) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(calc); err != nil {
		return nil, fmt.Errorf("export calculation %s: %w", calc.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the download name for a calculation: runs of whitespace
// become underscores and ".json" is appended.
func FileName(name string) string {
	return whitespace.ReplaceAllString(name, "_") + ".json"
}

// Import decodes a document produced by Export.
func Import(data []byte) (storage.SavedCalculation, error) {
	var doc struct {
		storage.SavedCalculation
		Values *json.RawMessage `json:"values"`
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return storage.SavedCalculation{}, fmt.Errorf("%w: empty document", ErrMalformedImport)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return storage.SavedCalculation{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if doc.Values == nil || string(*doc.Values) == "null" {
		return storage.SavedCalculation{}, fmt.Errorf("%w: missing values", ErrMalformedImport)
	}

	calc := doc.SavedCalculation
	if err := json.Unmarshal(*doc.Values, &calc.Values); err != nil {
		return storage.SavedCalculation{}, fmt.Errorf("%w: values: %v", ErrMalformedImport, err)
	}
	return calc, nil
}
