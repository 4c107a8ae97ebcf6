package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JaimeStill/waybill/internal/extraction"
)

const schemaURL = "shipment_record.json"

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}

// RecordSchema returns the strict JSON schema of a reconciliation response:
// every record field, nullable, plus items and evidence.
func RecordSchema() map[string]any {
	props := make(map[string]any, len(extraction.TextFields)+5)
	required := make([]string, 0, len(extraction.TextFields)+5)

	for _, f := range extraction.TextFields {
		props[f.Name] = nullable("string")
		required = append(required, f.Name)
	}

	props["total_net_kg"] = nullable("number")
	props["total_pkgs"] = nullable("integer")
	props["total_gross_kg"] = nullable("number")

	props["items"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required": []string{
				"product_name", "net_weight", "gross_weight",
				"package_count", "packaging_description", "pallet_count",
			},
			"properties": map[string]any{
				"product_name":          map[string]any{"type": "string"},
				"net_weight":            nullable("number"),
				"gross_weight":          nullable("number"),
				"package_count":         nullable("integer"),
				"packaging_description": map[string]any{"type": "string"},
				"pallet_count":          nullable("integer"),
			},
		},
	}

	props["evidence"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"field", "value", "snippet"},
			"properties": map[string]any{
				"field":   map[string]any{"type": "string"},
				"value":   map[string]any{"type": "string"},
				"snippet": map[string]any{"type": "string"},
			},
		},
	}

	required = append(required, "total_net_kg", "total_pkgs", "total_gross_kg", "items", "evidence")

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             required,
		"properties":           props,
	}
}

// compileSchema compiles RecordSchema for response validation.
func compileSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(RecordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
