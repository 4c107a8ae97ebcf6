package drafts

import (
	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/openapi"
)

type spec struct {
	List    *openapi.Operation
	Find    *openapi.Operation
	Save    *openapi.Operation
	Comment *openapi.Operation
	Freeze  *openapi.Operation
}

// Spec documents the draft endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary: "List drafts",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Fingerprint search", false),
			openapi.QueryParam("sort", "string", "Sort fields", false),
			openapi.EnumQueryParam("status", "Lifecycle state", "", string(StatusDraft), string(StatusFrozen)),
			openapi.QueryParam("fingerprint", "string", "Exact document fingerprint", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated drafts", "DraftPage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a draft with its comments",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Draft ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Draft detail", "DraftDetail"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Save: &openapi.Operation{
		Summary:     "Replace the record of an open draft",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Draft ID")},
		RequestBody: openapi.RequestBodyJSON("Record", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Saved draft", "Draft"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Comment: &openapi.Operation{
		Summary:     "Add a reviewer comment",
		Description: "Comments are advisory and accepted in either lifecycle state.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Draft ID")},
		RequestBody: openapi.RequestBodyJSON("CommentCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created comment", "Comment"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Freeze: &openapi.Operation{
		Summary:    "Freeze a draft into a shipment",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Draft ID")},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created shipment", "FreezeResult"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

// Schemas returns the component schemas the draft operations reference.
func (spec) Schemas() map[string]*openapi.Schema {
	schemas := extraction.Schemas()

	schemas["Draft"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":          {Type: "string", Format: "uuid"},
			"fingerprint": {Type: "string", Description: "Lowercase hex SHA-256 of the upload"},
			"version_no":  {Type: "integer"},
			"status":      {Type: "string", Enum: []any{string(StatusDraft), string(StatusFrozen)}},
			"data":        openapi.SchemaRef("Record"),
			"shipment_id": {Type: "string", Format: "uuid", Description: "Set once frozen"},
			"created_at":  {Type: "string", Format: "date-time"},
			"updated_at":  {Type: "string", Format: "date-time"},
		},
	}
	schemas["DraftPage"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Draft")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
	schemas["Comment"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"draft_id":   {Type: "string", Format: "uuid"},
			"field_name": {Type: "string"},
			"message":    {Type: "string"},
			"author":     {Type: "string"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	}
	schemas["CommentCommand"] = &openapi.Schema{
		Type:     "object",
		Required: []string{"field_name", "message"},
		Properties: map[string]*openapi.Schema{
			"field_name": {Type: "string"},
			"message":    {Type: "string"},
			"author":     {Type: "string", Description: "Defaults to the caller identity, then " + AnonymousAuthor},
		},
	}
	schemas["DraftDetail"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"draft":    openapi.SchemaRef("Draft"),
			"comments": {Type: "array", Items: openapi.SchemaRef("Comment")},
		},
	}
	schemas["FreezeResult"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"draft_id":    {Type: "string", Format: "uuid"},
			"shipment_id": {Type: "string", Format: "uuid"},
		},
	}

	return schemas
}
