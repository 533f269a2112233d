package aggregator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator wraps JSON Schema compilation and validation for
// LLM-produced payloads.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator creates a validator from a JSON schema definition.
func NewSchemaValidator(schemaMap map[string]any) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SchemaValidator{schema: schema}, nil
}

// Validate validates a decoded JSON value against the compiled schema.
func (v *SchemaValidator) Validate(value any) error {
	if err := v.schema.Validate(value); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("field %q: %s", ve.InstanceLocation, ve.Message)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// scenarioBundleSchema pins the shape the scenario generator must
// return before it is accepted as a response payload.
func scenarioBundleSchema() map[string]any {
	scenario := map[string]any{
		"type":     "object",
		"required": []any{"id", "title", "bias", "probability", "condition", "action", "invalidation", "keyLevels"},
		"properties": map[string]any{
			"id":           map[string]any{"type": "string"},
			"title":        map[string]any{"type": "string"},
			"bias":         map[string]any{"enum": []any{"LONG", "SHORT", "NEUTRAL"}},
			"probability":  map[string]any{"type": "number", "minimum": 1, "maximum": 100},
			"condition":    map[string]any{"type": "string"},
			"action":       map[string]any{"type": "string"},
			"invalidation": map[string]any{"type": "string"},
			"keyLevels": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}

	asset := map[string]any{
		"type":     "object",
		"required": []any{"currentPrice", "change24h", "scenarios"},
		"properties": map[string]any{
			"currentPrice": map[string]any{"type": "number"},
			"change24h":    map[string]any{"type": "number"},
			"scenarios": map[string]any{
				"type":  "array",
				"items": scenario,
			},
		},
	}

	return map[string]any{
		"type":     "object",
		"required": []any{"btc", "gold", "generatedAt"},
		"properties": map[string]any{
			"btc":         asset,
			"gold":        asset,
			"generatedAt": map[string]any{"type": "string"},
		},
	}
}
