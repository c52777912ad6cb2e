package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// flowDefinitionSchema is the structural gate for flow registration bodies.
// It runs before struct binding so malformed payloads fail with a precise
// message instead of a half-populated definition.
func flowDefinitionSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"id", "name", "actions"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"name":        map[string]any{"type": "string", "minLength": 3},
			"description": map[string]any{"type": "string"},
			"enabled":     map[string]any{"type": "boolean"},
			"trigger": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event":    map[string]any{"type": "string"},
					"type":     map[string]any{"type": "string"},
					"schedule": map[string]any{"type": "string"},
				},
			},
			"conditions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"field", "operator"},
					"properties": map[string]any{
						"field":    map[string]any{"type": "string", "minLength": 1},
						"operator": map[string]any{"type": "string", "minLength": 1},
					},
				},
			},
			"actions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"type"},
					"properties": map[string]any{
						"type":          map[string]any{"type": "string", "minLength": 1},
						"params":        map[string]any{"type": "object"},
						"delay_minutes": map[string]any{"type": "integer", "minimum": 0},
					},
				},
			},
		},
	}
}

func validateFlowBody(body map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(flowDefinitionSchema())
	dataLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(details, "; "))
	}

	return nil
}
