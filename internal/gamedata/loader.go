package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// LoadCaseFile reads an authored case from disk. Files ending in .json are
// decoded as JSON; anything else is treated as YAML.
// Defaults are applied and the result is validated.
func LoadCaseFile(path string) (CaseDef, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return CaseDef{}, fmt.Errorf("read case file %s: %w", path, err)
	}
	return ParseCase(content, filepath.Ext(path))
}

// ParseCase decodes case content in the format named by ext (".json", ".yaml", ".yml").
func ParseCase(content []byte, ext string) (CaseDef, error) {
	var def CaseDef
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(content, &def); err != nil {
			return CaseDef{}, fmt.Errorf("parse case json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(content, &def); err != nil {
			return CaseDef{}, fmt.Errorf("parse case yaml: %w", err)
		}
	}

	def.ApplyDefaults()
	if err := def.Validate(); err != nil {
		return CaseDef{}, err
	}
	return def, nil
}
