package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-analyzer/internal/schemas"
)

// File is the on-disk representation of a taxonomy.
type File struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// LoadFile reads a JSON or YAML taxonomy file, validates it against the
// taxonomy schema and builds the Taxonomy. An empty path returns Default().
func LoadFile(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}

	return Parse(data, filepath.Ext(path))
}

// Parse decodes taxonomy content. ext selects the decoder (".yaml"/".yml" for
// YAML, anything else for JSON).
func Parse(data []byte, ext string) (*Taxonomy, error) {
	jsonData := data
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse taxonomy YAML: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert taxonomy YAML: %w", err)
		}
		jsonData = converted
	}

	if err := schemas.Validate(schemas.Taxonomy, jsonData); err != nil {
		return nil, fmt.Errorf("taxonomy file does not match schema: %w", err)
	}

	var f File
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy JSON: %w", err)
	}

	return New(f.Categories)
}
