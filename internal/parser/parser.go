// Package parser loads request definition files. Definitions are YAML or
// JSON; the core pipeline receives them fully typed and never
// re-validates shape.
package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"reqchain/internal/types"
)

// Parse reads a definition file and returns its requests. A file may hold
// a single definition or a list.
func Parse(filePath string) ([]types.RequestDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))

	var defs []types.RequestDefinition
	if ext == ".json" {
		defs, err = parseJSON(data)
	} else {
		defs, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	for i := range defs {
		applyDefaults(&defs[i])
		if err := validate(&defs[i]); err != nil {
			return nil, fmt.Errorf("%s: request %d: %w", filepath.Base(filePath), i+1, err)
		}
	}
	return defs, nil
}

func parseJSON(data []byte) ([]types.RequestDefinition, error) {
	var defs []types.RequestDefinition
	if err := json.Unmarshal(data, &defs); err == nil {
		return defs, nil
	}

	var def types.RequestDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return []types.RequestDefinition{def}, nil
}

func parseYAML(data []byte) ([]types.RequestDefinition, error) {
	var defs []types.RequestDefinition
	if err := yaml.Unmarshal(data, &defs); err == nil {
		if len(defs) > 0 || strings.TrimSpace(string(data)) == "[]" {
			return defs, nil
		}
	}

	var def types.RequestDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return []types.RequestDefinition{def}, nil
}

func applyDefaults(def *types.RequestDefinition) {
	if def.Kind == "" {
		def.Kind = "http"
	}
	if def.Schema == "" {
		def.Schema = "v1"
	}
	if def.Method == "" {
		def.Method = "GET"
	}
	def.Method = strings.ToUpper(def.Method)
	if def.Body != "" && def.BodyFormat == "" {
		def.BodyFormat = types.BodyRaw
	}
}

func validate(def *types.RequestDefinition) error {
	if def.URL == "" {
		return fmt.Errorf("missing url")
	}
	if def.Kind != "http" {
		return fmt.Errorf("unknown kind %q", def.Kind)
	}
	switch def.BodyFormat {
	case "", types.BodyJSON, types.BodyForm, types.BodyGraphQL, types.BodyRaw, types.BodyMultipart:
	default:
		return fmt.Errorf("unknown body format %q", def.BodyFormat)
	}
	if def.Auth != nil {
		switch def.Auth.Kind {
		case "", types.AuthNone, types.AuthBearer, types.AuthBasic, types.AuthAPIKey:
		default:
			return fmt.Errorf("unknown auth kind %q", def.Auth.Kind)
		}
	}
	return nil
}

// DefinitionFiles lists the definition files of a directory in lexical
// order; this order is the batch execution order, which is what makes
// chaining across files deterministic.
func DefinitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	// os.ReadDir already sorts by name; keep the slice as-is.
	return files, nil
}
