package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// fileSchema is the JSON Schema for the project file. Validated before
// unmarshaling so typos in option names fail loudly instead of being
// silently dropped.
const fileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "wiretap project file",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "tracking": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "maxLoggedEvents": {"type": "integer", "minimum": 0},
        "includeUrls": {"type": "array", "items": {"type": "string"}},
        "excludeUrls": {"type": "array", "items": {"type": "string"}},
        "logRequestBody": {"type": "boolean"},
        "logResponseBody": {"type": "boolean"},
        "groupByEndpoint": {"type": "boolean"},
        "useColors": {"type": "boolean"},
        "logLevel": {"type": "string", "enum": ["debug", "info", "warn", "warning", "error"]},
        "logToConsole": {"type": "boolean"},
        "redactKeys": {"type": "array", "items": {"type": "string"}},
        "classifyGraphQL": {"type": "boolean"},
        "logFilter": {"type": "string"},
        "maxBodyBytes": {"type": "integer", "minimum": 0}
      }
    },
    "captures": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "method": {"type": "string"},
          "url": {"type": "string"},
          "regex": {"type": "boolean"},
          "note": {"type": "string"},
          "file": {"type": "string"},
          "files": {"type": "string"}
        },
        "oneOf": [
          {"required": ["url"]},
          {"required": ["file"]},
          {"required": ["files"]}
        ]
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledFileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("wiretap.schema.json", strings.NewReader(fileSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("wiretap.schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidateBytes checks raw YAML or JSON project file content against the
// schema. The value is round-tripped through JSON so YAML-native types
// validate consistently.
func ValidateBytes(data []byte) error {
	schema, err := compiledFileSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if doc == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to normalize config: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(jsonBytes, &normalized); err != nil {
		return fmt.Errorf("failed to normalize config: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("config schema violation: %s", strings.Join(flattenSchemaErrors(ve), "; "))
		}
		return fmt.Errorf("config schema violation: %w", err)
	}
	return nil
}

// flattenSchemaErrors walks the cause tree and collects leaf messages with
// their instance locations.
func flattenSchemaErrors(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, err.Message)}
	}
	var msgs []string
	for _, cause := range err.Causes {
		msgs = append(msgs, flattenSchemaErrors(cause)...)
	}
	return msgs
}
