package intake

import (
	"maps"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/openapi"
)

type spec struct {
	Upload *openapi.Operation
}

// Spec documents the upload endpoint.
var Spec = spec{
	Upload: &openapi.Operation{
		Summary:     "Upload a shipment PDF",
		Description: "Recovers text, extracts the record, scores it and opens or refreshes the draft for the document fingerprint.",
		RequestBody: openapi.RequestBodyMultipart("file", "Shipment PDF"),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Processed document", "UploadResult"),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			415: openapi.ResponseRef("UnsupportedMediaType"),
			422: openapi.ResponseRef("Unprocessable"),
			504: openapi.ResponseRef("Timeout"),
		},
	},
}

// Schemas returns the component schemas the upload operation references.
func (spec) Schemas() map[string]*openapi.Schema {
	schemas := extraction.Schemas()

	props := maps.Clone(schemas["Record"].Properties)
	maps.Copy(props, map[string]*openapi.Schema{
		"draft_id":    {Type: "string", Format: "uuid"},
		"version_no":  {Type: "integer"},
		"status":      {Type: "string"},
		"fingerprint": {Type: "string"},
		"source":      {Type: "string", Enum: []any{"embedded-text", "layout-text", "ocr-text"}},
		"page_count":  {Type: "integer"},
		"cached":      {Type: "boolean"},
		"reconciled":  {Type: "boolean"},
	})
	schemas["UploadResult"] = &openapi.Schema{Type: "object", Properties: props}

	return schemas
}
