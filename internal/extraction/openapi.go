package extraction

import "github.com/JaimeStill/waybill/pkg/openapi"

// Schemas returns the OpenAPI component schemas of Record and its parts.
func Schemas() map[string]*openapi.Schema {
	record := &openapi.Schema{
		Type:       "object",
		Properties: make(map[string]*openapi.Schema, len(TextFields)+7),
	}
	for _, f := range TextFields {
		record.Properties[f.Name] = &openapi.Schema{Type: "string"}
	}

	record.Properties["total_net_kg"] = &openapi.Schema{Type: "number", Description: "Total net weight in kg, null when absent"}
	record.Properties["total_pkgs"] = &openapi.Schema{Type: "integer", Description: "Total package count, null when absent"}
	record.Properties["total_gross_kg"] = &openapi.Schema{Type: "number", Description: "Total gross weight in kg, null when absent"}
	record.Properties["items"] = &openapi.Schema{Type: "array", Items: openapi.SchemaRef("LineItem")}
	record.Properties["confidence"] = &openapi.Schema{Type: "integer", Description: "Completeness score 0-100"}
	record.Properties["warnings"] = &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}
	record.Properties["evidence"] = &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Evidence")}

	return map[string]*openapi.Schema{
		"Record": record,
		"LineItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"product_name":          {Type: "string"},
				"net_weight":            {Type: "number"},
				"gross_weight":          {Type: "number"},
				"package_count":         {Type: "integer"},
				"packaging_description": {Type: "string"},
				"pallet_count":          {Type: "integer"},
			},
		},
		"Evidence": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"field":   {Type: "string"},
				"value":   {Type: "string"},
				"snippet": {Type: "string"},
			},
		},
	}
}
