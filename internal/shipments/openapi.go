package shipments

import (
	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/openapi"
)

type spec struct {
	List   *openapi.Operation
	Export *openapi.Operation
	Find   *openapi.Operation
	Search *openapi.Operation
	Delete *openapi.Operation
}

func filterParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("shipment_no", "string", "Exact shipment number", false),
		openapi.QueryParam("order_no", "string", "Exact order number", false),
		openapi.QueryParam("customer_no", "string", "Exact customer number", false),
		openapi.QueryParam("fingerprint", "string", "Exact document fingerprint", false),
		openapi.QueryParam("carrier_name", "string", "Carrier name contains", false),
		openapi.QueryParam("shipper_name", "string", "Shipper name contains", false),
		openapi.QueryParam("consignee_name", "string", "Consignee name contains", false),
		openapi.QueryParam("min_confidence", "integer", "Minimum confidence score", false),
		openapi.QueryParam("created_from", "string", "Created at or after (RFC 3339 or date)", false),
		openapi.QueryParam("created_to", "string", "Created at or before (RFC 3339 or date)", false),
	}
}

func pageParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Search across numbers and party names", false),
		openapi.QueryParam("sort", "string", "Sort fields", false),
	}
}

// Spec documents the shipment endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary:    "List shipments",
		Parameters: append(pageParams(), filterParams()...),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated shipments", "ShipmentPage"),
		},
	},
	Export: &openapi.Operation{
		Summary: "Export shipments",
		Parameters: append(
			[]*openapi.Parameter{openapi.EnumQueryParam("format", "Export format", FormatCSV, FormatCSV, FormatXLSX)},
			filterParams()...,
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseFile(
				"Shipments as CSV, or an XLSX workbook with Shipments and Items sheets",
				"text/csv",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a shipment with its items",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Shipment ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Shipment", "Shipment"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search shipments",
		RequestBody: openapi.RequestBodyJSON("ShipmentSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated shipments", "ShipmentPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a shipment and its items",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Shipment ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Shipment deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Schemas returns the component schemas the shipment operations reference.
func (spec) Schemas() map[string]*openapi.Schema {
	schemas := extraction.Schemas()

	shipment := &openapi.Schema{
		Type:       "object",
		Properties: make(map[string]*openapi.Schema),
	}
	for name, prop := range schemas["Record"].Properties {
		shipment.Properties[name] = prop
	}
	shipment.Properties["id"] = &openapi.Schema{Type: "string", Format: "uuid"}
	shipment.Properties["draft_id"] = &openapi.Schema{Type: "string", Format: "uuid"}
	shipment.Properties["fingerprint"] = &openapi.Schema{Type: "string"}
	shipment.Properties["created_at"] = &openapi.Schema{Type: "string", Format: "date-time"}
	schemas["Shipment"] = shipment

	schemas["ShipmentPage"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Shipment")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}

	search := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"page":      {Type: "integer"},
			"page_size": {Type: "integer"},
			"search":    {Type: "string"},
			"sort":      {Type: "string"},
		},
	}
	for _, p := range filterParams() {
		prop := &openapi.Schema{Type: p.Schema.Type, Description: p.Description}
		if p.Name == "created_from" || p.Name == "created_to" {
			prop.Format = "date-time"
		}
		search.Properties[p.Name] = prop
	}
	schemas["ShipmentSearch"] = search

	return schemas
}
