package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchema indicates the config file violates the structural schema.
var ErrSchema = errors.New("config schema violation")

// configSchema is the structural schema for the config file. Types and
// enums are enforced here before unmarshalling; value ranges and
// cross-field rules stay in Validate. Environment overrides bypass this
// check and are caught by Validate instead.
const configSchema = `{
  "type": "object",
  "properties": {
    "languages":  {"type": "array", "items": {"type": "string"}},
    "tokenizers": {"type": "array", "items": {"type": "string"}},
    "pipeline": {
      "type": "object",
      "properties": {
        "batch_size":  {"type": "integer"},
        "workers":     {"type": "integer"},
        "resume":      {"type": "boolean"},
        "sample_size": {"type": "integer"},
        "sample_seed": {"type": "integer"}
      }
    },
    "store": {
      "type": "object",
      "properties": {
        "path":  {"type": "string"},
        "reset": {"type": "boolean"}
      }
    },
    "corpus": {
      "type": "object",
      "properties": {
        "corpora": {"type": "object", "additionalProperties": {"type": "string"}},
        "vocabs":  {"type": "object", "additionalProperties": {"type": "string"}}
      }
    },
    "tokenizer": {
      "type": "object",
      "properties": {
        "dict_path": {"type": "string"},
        "encoding":  {"type": "string"}
      }
    },
    "logging": {
      "type": "object",
      "properties": {
        "level":  {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "format": {"type": "string", "enum": ["text", "json"]}
      }
    },
    "metrics": {
      "type": "object",
      "properties": {
        "enabled":       {"type": "boolean"},
        "listen":        {"type": "string"},
        "otlp_endpoint": {"type": "string"}
      }
    }
  }
}`

// validateFileSchema checks the config file contents against configSchema.
func validateFileSchema(path string) error {
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf("read config: %w", readErr)
	}

	var doc map[string]any

	yamlErr := yaml.Unmarshal(raw, &doc)
	if yamlErr != nil {
		return fmt.Errorf("parse config: %w", yamlErr)
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(details, "; "))
}
